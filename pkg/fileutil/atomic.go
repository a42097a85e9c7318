// Package fileutil provides file system helpers for writes that must never
// leave a half-written file behind: the config file and downloaded
// installers.
package fileutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyvm/internal/errors"
)

// tempPattern names in-flight files so they are recognizable if a crash
// leaves one behind.
const tempPattern = ".pyvm-atomic-*.tmp"

// AtomicWriteReader streams r into path using a temp file + rename. The
// destination only appears once every byte has been written and synced, so
// an interrupted download never looks complete. It returns the number of
// bytes written.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteReader(path string, r io.Reader, perm os.FileMode) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return 0, errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return n, errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		return n, errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Sync(); err != nil {
		return n, errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return n, errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return n, errors.Wrap(err, "renaming temp file")
	}
	renamed = true
	return n, nil
}

// AtomicWriteFile writes data to path atomically.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	_, err := AtomicWriteReader(path, bytes.NewReader(data), perm)
	return err
}

// AtomicWriteYAML writes v as YAML to path atomically with 0600
// permissions, since the config may carry mirror credentials.
func AtomicWriteYAML(path string, v any) (err error) {
	// yaml.Marshal panics on unmarshalable types
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return AtomicWriteFile(path, data, 0o600)
}
