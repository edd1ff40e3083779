// Package command implements the host-side functions the web UI can call.
package command

import (
	"fmt"
	"sort"
	"strconv"
)

// Dispatcher runs a named function with positional string arguments.
type Dispatcher interface {
	Handle(function string, args []string) (string, error)
}

// DispatcherFunc adapts a plain function to the Dispatcher interface.
type DispatcherFunc func(function string, args []string) (string, error)

func (f DispatcherFunc) Handle(function string, args []string) (string, error) {
	return f(function, args)
}

// Handler is the built-in function set. It holds no state, so a single
// value can serve any number of concurrent callers.
type Handler struct{}

// NewHandler returns the built-in function set.
func NewHandler() Handler { return Handler{} }

var functions = []string{"add", "hello"}

// Functions lists the names Handle understands.
func (Handler) Functions() []string {
	out := append([]string(nil), functions...)
	sort.Strings(out)
	return out
}

func (h Handler) Handle(function string, args []string) (string, error) {
	switch function {
	case "hello":
		return fmt.Sprintf("Hello from Go! Args: %q", args), nil
	case "add":
		return h.add(args)
	default:
		return "", &UnknownFunctionError{Name: function}
	}
}

func (Handler) add(args []string) (string, error) {
	if len(args) != 2 {
		return "", &InvalidArgCountError{Function: "add", Expected: 2, Got: len(args)}
	}

	a, err := parseNumber(args[0])
	if err != nil {
		return "", err
	}
	b, err := parseNumber(args[1])
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Sum: %d", a+b), nil
}

// parseNumber accepts the 32-bit signed range; callers sum in 64 bits.
func parseNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, &ParseError{Message: fmt.Sprintf("Failed to parse '%s' as number", s)}
	}
	return n, nil
}
