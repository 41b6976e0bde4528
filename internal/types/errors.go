package types

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a read that targeted a missing document. It is a
// recoverable condition: callers surface an absent value, they do not crash.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable marks a failure to reach the backing store. Callers
// log it and treat the operation result as empty/unchanged.
var ErrStoreUnavailable = errors.New("store unavailable")

// CustomError is the error shape consumed by the global Fiber error handler.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
