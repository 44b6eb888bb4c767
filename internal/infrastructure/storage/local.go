// Package storage removes uploaded artifacts from the local filesystem.
// All operations are best-effort and asynchronous: callers fire them and
// move on, and a failed removal only leaves garbage behind, never an
// inconsistent aggregate.
package storage

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalCleaner implements ports.StorageCleaner against a root directory.
type LocalCleaner struct {
	root string
	log  zerolog.Logger
}

func NewLocalCleaner(root string, log zerolog.Logger) *LocalCleaner {
	return &LocalCleaner{root: root, log: log}
}

// DeleteFile removes a single file, without waiting for the result.
func (c *LocalCleaner) DeleteFile(path string) {
	full := filepath.Join(c.root, path)
	go func() {
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			c.log.Warn().Err(err).Str("path", full).Msg("file cleanup failed")
		}
	}()
}

// DeleteTree removes a directory tree, without waiting for the result.
func (c *LocalCleaner) DeleteTree(path string) {
	full := filepath.Join(c.root, path)
	go func() {
		if err := os.RemoveAll(full); err != nil {
			c.log.Warn().Err(err).Str("path", full).Msg("tree cleanup failed")
		}
	}()
}
