package renlib

import (
	"errors"
	"fmt"
)

// Errors returned while reading a library.
var (
	ErrUnsupportedFormat  = errors.New("renlib: unsupported format")
	ErrUnsupportedVersion = errors.New("renlib: unsupported version")
	ErrTruncatedStream    = errors.New("renlib: truncated stream")
	ErrInvalidCoordinate  = errors.New("renlib: invalid coordinate")
	ErrMalformed          = errors.New("renlib: malformed record")
	ErrNodeNotFound       = errors.New("renlib: node not found")
)

// VersionError reports a well-formed header with a version this package
// cannot read. It matches ErrUnsupportedVersion with errors.Is.
type VersionError struct {
	Major, Minor uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("renlib: unsupported version %d.%d", e.Major, e.Minor)
}

func (e *VersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// ParseError locates a failure in the record stream. Offset counts bytes
// after the header.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *ParseError) Unwrap() error { return e.Err }
