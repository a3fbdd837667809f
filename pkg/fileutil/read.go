package fileutil

import (
	"io"
	"os"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// DocumentLimit caps the size of store documents and the baseline file.
// Claude and OpenCode configuration files are a few kilobytes; anything
// near this size is not a configuration file.
const DocumentLimit int64 = 8 << 20

// ErrFileTooLarge marks a file that exceeded the read limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileLimit reads the whole file at path, refusing files larger than
// limit bytes. Errors from opening the file are returned as is so callers
// can test them with os.IsNotExist.
func ReadFileLimit(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, tooLarge(path, limit)
	}

	// The size can change between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if int64(len(data)) > limit {
		return nil, tooLarge(path, limit)
	}
	return data, nil
}

// ReadDocument reads a configuration document with DocumentLimit.
func ReadDocument(path string) ([]byte, error) {
	return ReadFileLimit(path, DocumentLimit)
}

func tooLarge(path string, limit int64) error {
	return errors.Mark(errors.Newf("%s exceeds %d bytes", path, limit), ErrFileTooLarge)
}
