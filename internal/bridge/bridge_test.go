package bridge

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/petervdpas/tuffi/internal/command"
	"github.com/petervdpas/tuffi/internal/proto"
	"github.com/petervdpas/tuffi/internal/util"
)

const (
	scriptPrefix = "window.dispatchEvent(new CustomEvent('rust-response', { detail: "
	scriptSuffix = " }));"
)

func newTestBridge() *Bridge {
	return New(command.NewHandler(), util.NewQueue[string]())
}

// payload pops one delivery script and returns the JSON it carries.
func payload(t *testing.T, b *Bridge) string {
	t.Helper()
	js, ok := b.Outbound().TryPop()
	if !ok {
		t.Fatal("no delivery queued")
	}
	if !strings.HasPrefix(js, scriptPrefix) || !strings.HasSuffix(js, scriptSuffix) {
		t.Fatalf("unexpected delivery script %q", js)
	}
	return strings.TrimSuffix(strings.TrimPrefix(js, scriptPrefix), scriptSuffix)
}

func TestReceiveExamples(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{`{"function":"add","args":["2","3"]}`, `{"success":true,"data":"Sum: 5","error":null}`},
		{`{"function":"add","args":["2"]}`, `{"success":false,"data":null,"error":"Invalid argument count for add: expected 2, got 1"}`},
		{`{"function":"nope","args":[]}`, `{"success":false,"data":null,"error":"Unknown function: nope"}`},
		{`{"function":"add","args":["two","3"]}`, `{"success":false,"data":null,"error":"Parse error: Failed to parse 'two' as number"}`},
	}

	b := newTestBridge()
	for _, tt := range tests {
		b.Receive(tt.in)
		if got := payload(t, b); got != tt.out {
			t.Errorf("Receive(%s) delivered %s, want %s", tt.in, got, tt.out)
		}
	}
	if b.Outbound().Len() != 0 {
		t.Fatalf("expected exactly one delivery per message, %d left", b.Outbound().Len())
	}
}

func TestReceiveAddProperty(t *testing.T) {
	b := newTestBridge()
	for a := -3; a <= 3; a++ {
		for c := -3; c <= 3; c++ {
			b.Receive(fmt.Sprintf(`{"function":"add","args":["%d","%d"]}`, a, c))
			resp, err := proto.DecodeResponse(payload(t, b))
			if err != nil {
				t.Fatal(err)
			}
			want := fmt.Sprintf("Sum: %d", a+c)
			if !resp.Success || resp.Data == nil || *resp.Data != want || resp.Error != nil {
				t.Fatalf("add(%d,%d) = %+v, want data %q", a, c, resp, want)
			}
		}
	}
}

func TestReceiveMalformed(t *testing.T) {
	b := newTestBridge()
	for _, raw := range []string{``, `{`, `null`, `{"function":"add"}`, `{"function":"add","args":[1]}`,
		`{"function":"hello","args":[null]}`, `{"function":"add","args":["1",null]}`, "\x00\xff"} {
		b.Receive(raw)
		resp, err := proto.DecodeResponse(payload(t, b))
		if err != nil {
			t.Fatalf("%q: undecodable delivery: %v", raw, err)
		}
		if resp.Success || resp.Error == nil || !strings.HasPrefix(*resp.Error, "Failed to parse message: ") {
			t.Fatalf("%q: unexpected response %+v", raw, resp)
		}
		if len(*resp.Error) <= len("Failed to parse message: ") {
			t.Fatalf("%q: empty parse diagnostic", raw)
		}
	}
}

func TestReceiveHelloIdempotent(t *testing.T) {
	b := newTestBridge()
	raw := `{"function":"hello","args":["a","b"]}`
	first := b.Receive(raw)
	second := b.Receive(raw)

	e1, _ := proto.EncodeResponse(first)
	e2, _ := proto.EncodeResponse(second)
	if e1 != e2 {
		t.Fatalf("hello responses differ: %s vs %s", e1, e2)
	}
	if !first.Success {
		t.Fatalf("hello failed: %+v", first)
	}
	if b.Outbound().Len() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", b.Outbound().Len())
	}
	if payload(t, b) != payload(t, b) {
		t.Fatal("hello deliveries differ")
	}
}

func TestReceiveClosedQueueDrops(t *testing.T) {
	b := newTestBridge()
	b.Outbound().Close()
	b.Receive(`{"function":"add","args":["1","1"]}`)
	if b.Outbound().Len() != 0 {
		t.Fatal("expected response to be dropped")
	}
}

func TestReceiveConcurrent(t *testing.T) {
	b := newTestBridge()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Receive(fmt.Sprintf(`{"function":"add","args":["%d","1"]}`, i))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		resp, err := proto.DecodeResponse(payload(t, b))
		if err != nil || !resp.Success {
			t.Fatalf("bad response %+v, %v", resp, err)
		}
		seen[*resp.Data] = true
	}
	for i := 0; i < n; i++ {
		if want := fmt.Sprintf("Sum: %d", i+1); !seen[want] {
			t.Fatalf("missing %q", want)
		}
	}
}

func TestReceiveRateLimited(t *testing.T) {
	d := command.Chain(command.RateLimit(0.001, 1))(command.NewHandler())
	b := New(d, util.NewQueue[string]())

	b.Receive(`{"function":"hello","args":[]}`)
	b.Receive(`{"function":"hello","args":[]}`)

	if got := payload(t, b); !strings.Contains(got, `"success":true`) {
		t.Fatalf("first call should pass: %s", got)
	}
	if got := payload(t, b); got != `{"success":false,"data":null,"error":"rate limit exceeded"}` {
		t.Fatalf("second call should be limited: %s", got)
	}
}
