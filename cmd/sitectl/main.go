package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/supreme-majesty/sitectl/pkg/adapters/linux"
	"github.com/supreme-majesty/sitectl/pkg/config"
	"github.com/supreme-majesty/sitectl/pkg/events"
	"github.com/supreme-majesty/sitectl/pkg/logging"
	"github.com/supreme-majesty/sitectl/pkg/prompt"
	"github.com/supreme-majesty/sitectl/pkg/sites"
	"github.com/supreme-majesty/sitectl/pkg/ui"
)

var Version = "dev"

var (
	configPath string
	assumeYes  bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "sitectl",
	Short:         "Manage the web sites hosted on this server",
	Long:          `Create, enable, back up and retire the Nginx sites of a single Linux host.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return usageErrorf("unknown command %q", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log external commands and other debug output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})
}

// usageError marks a malformed invocation. It exits with status 2.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// siteArg requires exactly one positional site name.
func siteArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageErrorf("%s expects exactly one site name, got %d arguments", cmd.Name(), len(args))
	}
	return nil
}

var (
	manager  *sites.Manager
	closeLog func()
)

// getManager builds the site manager on first use from the global flags.
func getManager(cmd *cobra.Command) (*sites.Manager, error) {
	if manager != nil {
		return manager, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, closer, err := logging.New(logging.Options{
		Verbose:   verbose,
		AuditPath: cfg.AuditLog,
		Console:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	closeLog = closer

	bus := events.NewBus()
	bus.SubscribeAll(func(e events.Event) {
		fields := []zap.Field{zap.String("event", string(e.Type)), zap.String("site", e.Site)}
		for k, v := range e.Payload {
			fields = append(fields, zap.String(k, v))
		}
		log.Info("site changed", fields...)
	})

	host := linux.NewLinuxAdapter(linux.NewExecRunner(log), linux.Options{
		WebServerUnit: cfg.WebServerUnit,
		ACMEEmail:     cfg.ACMEEmail,
	})

	manager = sites.NewManager(cfg, sites.Options{
		Archiver:  host,
		Repos:     host,
		Certs:     host,
		Services:  host,
		WebServer: host,
		Confirmer: newConfirmer(assumeYes, os.Stdin, cmd.ErrOrStderr()),
		Bus:       bus,
		Logger:    log,
	})
	return manager, nil
}

// newConfirmer answers yes under --yes, asks on a terminal and declines
// otherwise.
func newConfirmer(yes bool, stdin interface{}, stderr io.Writer) prompt.Confirmer {
	switch {
	case yes:
		return prompt.Always(true)
	case prompt.Interactive(stdin):
		return prompt.NewTerminalConfirmer()
	default:
		return prompt.Refuse{Out: stderr}
	}
}

// exitCode maps the outcome of a command to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var uerr usageError
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if closeLog != nil {
		closeLog()
	}
	if err != nil {
		fmt.Fprintln(stderr, ui.Error("Error: "+err.Error()))
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(stderr, "Run 'sitectl --help' for usage.")
		}
	}
	return exitCode(err)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
