package command

import (
	"errors"
	"testing"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next Dispatcher) Dispatcher {
			return DispatcherFunc(func(function string, args []string) (string, error) {
				order = append(order, name)
				return next.Handle(function, args)
			})
		}
	}

	d := Chain(tag("outer"), tag("inner"))(NewHandler())
	if _, err := d.Handle("hello", nil); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestLoggingPassesThrough(t *testing.T) {
	d := Logging()(NewHandler())
	got, err := d.Handle("add", []string{"1", "2"})
	if err != nil || got != "Sum: 3" {
		t.Fatalf("got %q, %v", got, err)
	}
	_, err = d.Handle("nope", nil)
	var unknown *UnknownFunctionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected error to pass through unchanged, got %v", err)
	}
}

func TestRateLimit(t *testing.T) {
	// A very slow refill so the bucket cannot recover during the test.
	d := RateLimit(0.001, 2)(NewHandler())
	for i := 0; i < 2; i++ {
		if _, err := d.Handle("hello", nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if _, err := d.Handle("hello", nil); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	d := RateLimit(0, 0)(NewHandler())
	for i := 0; i < 100; i++ {
		if _, err := d.Handle("hello", nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
}
