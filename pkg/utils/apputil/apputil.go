// Package apputil has a few filesystem helpers used in setup paths.
package apputil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates the directory that would contain the given file path, if
// it does not already exist.
func EnsureDir(fileName string) (err error) {
	dirName := filepath.Dir(fileName)
	if _, err = os.Stat(dirName); os.IsNotExist(err) {
		return os.MkdirAll(dirName, 0700)
	}
	return
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
