package linux

import (
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/supreme-majesty/sitectl/pkg/adapters"
)

// ExecRunner runs commands with os/exec and logs every invocation at debug level.
type ExecRunner struct {
	Logger *zap.Logger
}

func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{Logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.Logger.Debug("exec", zap.String("tool", name), zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.Logger.Debug("exec failed", zap.String("tool", name), zap.Error(err))
		return string(out), &adapters.ExternalToolError{
			Tool:   name,
			Args:   args,
			Output: strings.TrimSpace(string(out)),
			Err:    err,
		}
	}
	return string(out), nil
}
