package sites

import (
	"context"
	"fmt"
	"io"

	"github.com/hpcloud/tail"

	"github.com/supreme-majesty/sitectl/pkg/util"
)

// LogOptions selects which log Logs prints.
type LogOptions struct {
	Error  bool // error log instead of the access log
	Follow bool // keep reading across writes and rotation
}

// Logs copies a site log to w. Without Follow it returns at EOF; with it,
// when ctx is done.
func (m *Manager) Logs(ctx context.Context, name string, opts LogOptions, w io.Writer) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	p := m.Paths(name)
	path := p.AccessLog
	if opts.Error {
		path = p.ErrorLog
	}
	if !util.Exists(path) {
		return fmt.Errorf("log %s: %w", path, ErrNotFound)
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    opts.Follow,
		ReOpen:    opts.Follow,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to tail %s: %w", path, err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Wait()
			}
			if line.Err != nil {
				return fmt.Errorf("failed to read %s: %w", path, line.Err)
			}
			if _, err := fmt.Fprintln(w, line.Text); err != nil {
				_ = t.Stop()
				return err
			}
		}
	}
}
