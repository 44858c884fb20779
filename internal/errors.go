package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptReplay is returned when the outer base64, the zlib stream, an
	// encoded tag or the markup of a replay cannot be decoded
	ErrCorruptReplay = errors.New("corrupt replay")

	// ErrMissingSection is returned when a mandatory document section is
	// absent
	ErrMissingSection = errors.New("missing replay section")

	// ErrSchemaViolation is returned when the analyzer meets a value or a
	// structure it cannot interpret
	ErrSchemaViolation = errors.New("replay schema violation")
)

// ReplayError ties a failure to the replay file it happened in
type ReplayError struct {
	Path string
	Err  error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Kind(), e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Kind names the failure category, so an operator can tell a corrupt file
// from a schema update
func (e *ReplayError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrCorruptReplay):
		return "corrupt"
	case errors.Is(e.Err, ErrMissingSection):
		return "missing section"
	case errors.Is(e.Err, ErrSchemaViolation):
		return "schema violation"
	default:
		return "error"
	}
}

func schemaErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}
