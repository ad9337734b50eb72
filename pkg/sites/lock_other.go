//go:build !unix

package sites

// acquireLock is a no-op where flock is unavailable.
func acquireLock(dir, name string) (func(), error) {
	return func() {}, nil
}
