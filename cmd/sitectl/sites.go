package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supreme-majesty/sitectl/pkg/sites"
	"github.com/supreme-majesty/sitectl/pkg/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available sites and whether they are enabled",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return usageErrorf("list takes no arguments")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		all, err := m.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(all) == 0 {
			fmt.Fprintln(out, ui.Dim("No sites available."))
			return nil
		}
		for _, s := range all {
			fmt.Fprintln(out, ui.SiteRow(s.Name, s.Enabled))
		}
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:   "new <site>",
	Short: "Create the directory tree, log files and server entry of a site",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		if err := m.New(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Success("Created site"), m.Paths(args[0]).Root)
		return nil
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <site>",
	Short: "Enable a site in the web server",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		if err := m.Enable(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Enabled "+args[0]))
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <site>",
	Short: "Disable a site in the web server",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		if err := m.Disable(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Disabled "+args[0]))
		return nil
	},
}

var noBackup bool

var deleteCmd = &cobra.Command{
	Use:   "delete <site>",
	Short: "Back up, then remove a site and everything it installed",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		if err := m.Delete(cmd.Context(), args[0], sites.DeleteOptions{SkipBackup: noBackup}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Deleted "+args[0]))
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup <site>",
	Short: "Archive a site tree into the backup directory",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		archive, err := m.Backup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Success("Backed up to"), archive)
		return nil
	},
}

var backupAllCmd = &cobra.Command{
	Use:   "backup-all",
	Short: "Back up every available site, continuing past failures",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return usageErrorf("backup-all takes no arguments")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		results, err := m.BackupAll(cmd.Context())

		out := cmd.OutOrStdout()
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(out, "%-32s %s\n", r.Site, ui.Error("failed"))
				continue
			}
			fmt.Fprintf(out, "%-32s %s\n", r.Site, ui.Success(r.Archive))
		}

		var all *sites.BackupAllError
		if errors.As(err, &all) {
			fmt.Fprintln(out, ui.Warning(fmt.Sprintf("%d of %d backups failed", len(all.Failed), all.Total)))
		} else if err == nil {
			fmt.Fprintln(out, ui.Dim(fmt.Sprintf("%d sites backed up", len(results))))
		}
		return err
	},
}

var repoCmd = &cobra.Command{
	Use:   "repo <site>",
	Short: "Create a bare Git repository that deploys pushes into the site",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		dir, err := m.Repo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Success("Created repository"), dir)
		fmt.Fprintln(cmd.OutOrStdout(), ui.Dim("Pushes to "+m.Config().DeployBranch+" are checked out into "+m.Paths(args[0]).WebRoot))
		return nil
	},
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions <site>",
	Short: "Reset ownership and modes of a site tree",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		report, err := m.Permissions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d directories, %d files\n", ui.Success("Updated"), report.Dirs, report.Files)
		if skipped := report.SkippedLinks + report.SkippedOthers; skipped > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Dim(fmt.Sprintf("Skipped %d symlinks and special files", skipped)))
		}
		return nil
	},
}

var certCmd = &cobra.Command{
	Use:   "cert <site>",
	Short: "Issue a TLS certificate for the site and its www alias",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		if err := m.Cert(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Certificate issued for "+args[0]))
		return nil
	},
}

var (
	logsError  bool
	logsFollow bool
)

var logsCmd = &cobra.Command{
	Use:   "logs <site>",
	Short: "Print the access or error log of a site",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		return m.Logs(cmd.Context(), args[0], sites.LogOptions{Error: logsError, Follow: logsFollow}, cmd.OutOrStdout())
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <site>",
	Short: "Show where a site lives and what it has installed",
	Args:  siteArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getManager(cmd)
		if err != nil {
			return err
		}
		info, err := m.Info(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Header(info.Name))
		row := func(label, value string) {
			fmt.Fprintf(out, "  %-12s %s\n", label, value)
		}
		row("Root", presence(info.Paths.Root, info.HasTree))
		row("Config", presence(info.Paths.Available, info.Available))
		row("Status", ui.Status(info.Enabled))
		row("Repository", presence(info.Paths.Repo, info.HasRepo))
		row("Unit", presence(info.Paths.Unit, info.HasUnit))
		if info.HasTree {
			row("Size", formatBytes(info.SizeBytes))
			row("Disk free", fmt.Sprintf("%s of %s", formatBytes(info.FSFree), formatBytes(info.FSTotal)))
		}
		return nil
	},
}

func presence(path string, ok bool) string {
	if ok {
		return path
	}
	return ui.Dim(path + " (missing)")
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	deleteCmd.Flags().BoolVar(&noBackup, "no-backup", false, "delete without archiving the site first")
	logsCmd.Flags().BoolVar(&logsError, "error", false, "print the error log instead of the access log")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "keep printing new lines as they are written")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(backupAllCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(permissionsCmd)
	rootCmd.AddCommand(certCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(infoCmd)
}
