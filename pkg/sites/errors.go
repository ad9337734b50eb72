package sites

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPrivilege         = errors.New("this command requires root privileges")
	ErrAborted           = errors.New("aborted by user")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidName       = errors.New("invalid site name")
	ErrBusy              = errors.New("another operation is in progress")
	ErrInsufficientSpace = errors.New("insufficient disk space")
)

// BackupResult is the outcome of one site's backup inside BackupAll.
type BackupResult struct {
	Site    string
	Archive string
	Err     error
}

// BackupAllError lists the sites whose backup failed. The others completed.
type BackupAllError struct {
	Total  int
	Failed []BackupResult
}

func (e *BackupAllError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Site, f.Err))
	}
	return fmt.Sprintf("backup failed for %d of %d sites: %s", len(e.Failed), e.Total, strings.Join(parts, "; "))
}

// Unwrap exposes every per-site error to errors.Is and errors.As.
func (e *BackupAllError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}
