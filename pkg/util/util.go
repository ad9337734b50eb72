package util

import "os"

// Exists checks if a file or directory exists. Symlinks are followed.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Lexists checks if a directory entry exists without following symlinks,
// so a dangling link still counts.
func Lexists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
