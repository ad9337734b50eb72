package adapters

import "context"

// Runner executes an external program and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Archiver writes a compressed archive of srcDir to destFile.
type Archiver interface {
	Archive(ctx context.Context, srcDir, destFile string) error
}

// RepoInitializer turns an existing empty directory into a bare repository.
type RepoInitializer interface {
	InitBare(ctx context.Context, dir string) error
}

// CertIssuer obtains a certificate covering every domain through the web server plugin.
type CertIssuer interface {
	Issue(ctx context.Context, domains []string) error
}

// ServiceManager controls OS service units.
type ServiceManager interface {
	StopAndDisable(ctx context.Context, unit string) error
	DaemonReload(ctx context.Context) error
}

// WebServer validates and reloads the web server configuration.
type WebServer interface {
	Reload(ctx context.Context) error
}
