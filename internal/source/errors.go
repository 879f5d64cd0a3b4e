package source

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSource indicates no candidate directory held the required files.
	ErrMissingSource = errors.New("could not find plank data source directory")

	// ErrMalformedInput indicates a collection file is not a JSON array of objects.
	ErrMalformedInput = errors.New("malformed input file")
)

// MissingSourceError lists every location tried while resolving the input
// directory.
type MissingSourceError struct {
	Tried    []string
	Required []string
}

// Error implements the error interface.
func (e *MissingSourceError) Error() string {
	tried := "(none)"
	if len(e.Tried) > 0 {
		tried = strings.Join(e.Tried, ", ")
	}
	return fmt.Sprintf("%s. Set PLANK_SOURCE_DIR to a folder containing %s. Tried: %s",
		ErrMissingSource, strings.Join(e.Required, " and "), tried)
}

// Unwrap returns ErrMissingSource for errors.Is() compatibility.
func (e *MissingSourceError) Unwrap() error {
	return ErrMissingSource
}
