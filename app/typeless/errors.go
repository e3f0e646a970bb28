package typeless

import (
	"errors"
	"fmt"
)

// ClientError wraps transport, payload-parse, and URL-construction
// failures behind a single client-facing error kind. Unwrap exposes the
// underlying cause for errors.Is/As.
type ClientError struct {
	Op  string
	URL string
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Contract violations are caller bugs, kept distinct from ClientError so
// normal error-handling paths do not swallow them.
var (
	ErrNameMissing = errors.New("entry map does not have a 'name' field")
	ErrNameEmpty   = errors.New("'name' field in entry map is empty")
)

// ErrNotImplemented marks the declared-but-unimplemented mutation surface.
var ErrNotImplemented = errors.New("operation not implemented")
