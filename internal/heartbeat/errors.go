package heartbeat

import (
	"errors"
	"fmt"
)

// ErrRejectedMessage signals that a message does not belong to the builder
// it was offered to. This is routing, not failure: the caller keeps the
// message and retries it elsewhere, and it must never be logged as an error.
var ErrRejectedMessage = errors.New("message rejected")

// ParseError reports a finalization failure, locating the offending field or
// row so firmware or format regressions can be diagnosed from logs alone.
type ParseError struct {
	// Where names the location inside the record, e.g. "field 11" for
	// format 1 or "scan-detail row" for format 2.
	Where string

	// Value is the raw text that failed to parse, when there is one.
	Value string

	Err error
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("heartbeat: parse %s: %q: %v", e.Where, e.Value, e.Err)
	}
	return fmt.Sprintf("heartbeat: parse %s: %v", e.Where, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// parseErr wraps err with its location in the record.
func parseErr(where, value string, err error) *ParseError {
	return &ParseError{Where: where, Value: value, Err: err}
}
