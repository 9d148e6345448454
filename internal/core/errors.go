package core

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrMissingInput marks a required input file or table as absent. Stages
// abort on it without writing partial output.
var ErrMissingInput = errors.New("missing input")

// missingInput wraps a file-open error into ErrMissingInput when the
// underlying cause is a nonexistent path; other errors pass through.
func missingInput(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingInput, path)
	}
	return err
}
