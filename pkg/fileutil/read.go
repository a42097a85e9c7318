package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/pyvm/internal/errors"
)

// MaxFileSize caps files read whole: os-release, apt source lists and the
// config file are all a few KiB.
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge marks files over the read limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileWithLimit reads path whole. Files over MaxFileSize are refused
// rather than truncated. A missing file still satisfies
// errors.Is(err, os.ErrNotExist).
func ReadFileWithLimit(path string) ([]byte, error) {
	return readLimited(path, MaxFileSize)
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	tooLarge := func() error {
		return errors.Mark(errors.Newf("%s exceeds %d bytes", path, limit), ErrFileTooLarge)
	}
	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, tooLarge()
	}

	// Stat lies for procfs and pipes; the reader bound still holds.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if int64(len(data)) > limit {
		return nil, tooLarge()
	}
	return data, nil
}
