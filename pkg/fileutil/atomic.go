// Package fileutil provides file system utilities including atomic write operations.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/appcfg/internal/errors"
)

// tempPattern names the sibling temp file used by atomic writes.
const tempPattern = ".appcfg-atomic-*.tmp"

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// This ensures interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory as the target so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if rename failed (file still exists)
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// AtomicWriteTOML marshals v as TOML and writes it to path atomically.
// A trailing newline is ensured.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteTOML(path string, v any, perm os.FileMode) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling TOML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(path, data, perm)
}

// AtomicCopyFile copies src to dst through a sibling temp file of dst, so dst
// is either absent or complete.
func AtomicCopyFile(src, dst string, perm os.FileMode) error {
	data, err := ReadFileWithLimit(src)
	if err != nil {
		return errors.Wrapf(err, "reading %s", src)
	}
	return AtomicWriteFile(dst, data, perm)
}
