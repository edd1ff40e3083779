package command

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned by the RateLimit middleware when the bucket is empty.
var ErrRateLimited = errors.New("rate limit exceeded")

// InvalidArgCountError reports a call with the wrong number of arguments.
type InvalidArgCountError struct {
	Function string
	Expected int
	Got      int
}

func (e *InvalidArgCountError) Error() string {
	return fmt.Sprintf("Invalid argument count for %s: expected %d, got %d", e.Function, e.Expected, e.Got)
}

// ParseError reports an argument that could not be converted to its type.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "Parse error: " + e.Message
}

// UnknownFunctionError reports a function name with no handler.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return "Unknown function: " + e.Name
}
