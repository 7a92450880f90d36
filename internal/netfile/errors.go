package netfile

import (
	"errors"
	"fmt"
)

// Format error kinds. Every error returned by this package for malformed
// input wraps exactly one of these.
var (
	ErrTruncated          = errors.New("truncated network file")
	ErrOutOfRange         = errors.New("weight offset out of range")
	ErrBadMagic           = errors.New("invalid magic number")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrBadDimensions      = errors.New("invalid layer dimensions")
)

// FormatError describes a malformed or too short network file.
type FormatError struct {
	Kind   error // one of the Err* sentinels above
	Offset int   // byte offset involved, -1 if not applicable
	Length int   // file length in bytes
	Detail string
}

func (e *FormatError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d, file size %d)", e.Offset, e.Length)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

func formatErrorf(kind error, length int, format string, args ...any) *FormatError {
	return &FormatError{Kind: kind, Offset: -1, Length: length, Detail: fmt.Sprintf(format, args...)}
}
