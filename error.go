package msf

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInsufficientBuffer = errors.New("insufficient buffer")
	ErrNotWritable        = errors.New("not writable")
	ErrNoStream           = errors.New("no such stream")
	ErrInvalidFormat      = errors.New("invalid format")
	ErrInvalidBlockSize   = errors.New("invalid block size")
)

// IOError reports a failure of the underlying container.
type IOError struct {
	Op     string
	Offset uint32
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s at container offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps a container failure into an *IOError annotated with a stack.
// It returns nil if err is nil.
func WrapIO(op string, offset uint32, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&IOError{Op: op, Offset: offset, Err: err})
}

// OutOfBounds returns ErrInsufficientBuffer annotated with the rejected range.
func OutOfBounds(offset uint32, size int, length uint32) error {
	return errors.Wrapf(ErrInsufficientBuffer, "range [%d, +%d) exceeds length %d", offset, size, length)
}
