package nscache

import (
	"errors"
	"fmt"
)

// ErrFault matches every *FaultError via errors.Is.
var ErrFault = errors.New("nscache: store fault")

// FaultError reports that the backing store or codec failed. It is distinct
// from a miss so callers can tell "no data" from "cache unusable"; both
// should fall back to the source.
type FaultError struct {
	Op  string // get | set | remove | keys | encode | decode
	Key string // storage key, or key prefix for keys
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("nscache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

func (e *FaultError) Is(target error) bool { return target == ErrFault }
