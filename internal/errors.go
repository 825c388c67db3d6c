package internal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrClosed           = errors.New("node is closed")
	ErrCannotCoalesce   = errors.New("sink received two values in one transaction and has no coalescing function")
	ErrBusy             = errors.New("operation not allowed while a transaction is propagating")
	ErrAlreadyConnected = errors.New("sink is already connected or is not a sink")
	ErrNotCell          = errors.New("node is a stream, not a cell")
	ErrEquality         = errors.New("equality function can only be set once, on a cell without dependents")
	ErrConcurrentUse    = errors.New("engine used from another goroutine while a transaction is open")
	ErrMutex            = errors.New("mutually exclusive streams fired in the same transaction")
	ErrCycle            = errors.New("circular dependency")
)

// UsageError reports a misuse of the engine API. It is raised with panic and
// wraps one of the Err* sentinels.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("frp: %s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usage(op string, err error) *UsageError {
	return &UsageError{Op: op, Err: err}
}

// CycleError is raised when a connection or a flatten switch would make a
// node depend on itself. Path lists the node names along the cycle, starting
// with the node that would close it.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "frp: circular dependency:\n---\n" + strings.Join(e.Path, "\n")
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

func newCycleError(path []*Node) *CycleError {
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.String()
	}
	return &CycleError{Path: names}
}

// AssertionError signals a broken engine invariant. Assertions are only
// checked when the package is built without the frp_nodebug tag.
type AssertionError struct {
	Msg  string
	Data any
}

func (e *AssertionError) Error() string {
	if e.Data == nil {
		return "frp: assertion failed: " + e.Msg
	}
	return fmt.Sprintf("frp: assertion failed: %s (%v)", e.Msg, e.Data)
}

func debugAssert(ok bool, msg string, data any) {
	if debug && !ok {
		panic(&AssertionError{Msg: msg, Data: data})
	}
}

// IsCycleError reports whether err is or wraps a CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
