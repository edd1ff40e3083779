package proto

import (
	"strings"
	"testing"
)

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(`{"function":"add","args":["2","3"]}`)
	if err != nil {
		t.Fatal(err)
	}
	if req.Function != "add" || len(req.Args) != 2 || req.Args[0] != "2" || req.Args[1] != "3" {
		t.Fatalf("unexpected request %+v", req)
	}

	// Extra keys are ignored.
	if _, err := DecodeRequest(`{"function":"hello","args":[],"id":7}`); err != nil {
		t.Fatalf("extra key rejected: %v", err)
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	bad := []string{
		``,
		`not json`,
		`[]`,
		`{"function":"add"}`,
		`{"args":["1"]}`,
		`{"function":null,"args":[]}`,
		`{"function":"add","args":null}`,
		`{"function":"add","args":[1,2]}`,
		`{"function":7,"args":[]}`,
		`{"function":"add","args":[]} trailing`,
		`{"function":"hello","args":[null]}`,
		`{"function":"add","args":["1",null]}`,
	}
	for _, raw := range bad {
		if _, err := DecodeRequest(raw); err == nil {
			t.Errorf("DecodeRequest(%q): expected error", raw)
		}
	}
}

func TestEncodeResponse(t *testing.T) {
	tests := []struct {
		resp Response
		want string
	}{
		{Success("Sum: 5"), `{"success":true,"data":"Sum: 5","error":null}`},
		{Failure("Unknown function: nope"), `{"success":false,"data":null,"error":"Unknown function: nope"}`},
		// HTML-significant characters stay escaped inside the delivery script.
		{Success(`quote " and </script>`), `{"success":true,"data":"quote \" and \u003c/script\u003e","error":null}`},
	}
	for _, tt := range tests {
		got, err := EncodeResponse(tt.resp)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("EncodeResponse = %s, want %s", got, tt.want)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	for _, r := range []Response{Success("x"), Success(""), Failure("boom")} {
		enc, err := EncodeResponse(r)
		if err != nil {
			t.Fatal(err)
		}
		dec, err := DecodeResponse(enc)
		if err != nil {
			t.Fatal(err)
		}
		if dec.Success != r.Success || str(dec.Data) != str(r.Data) || str(dec.Error) != str(r.Error) ||
			(dec.Data == nil) != (r.Data == nil) || (dec.Error == nil) != (r.Error == nil) {
			t.Fatalf("round trip mismatch: %+v vs %+v", dec, r)
		}
	}
}

func TestDecodeResponseInvariant(t *testing.T) {
	for _, raw := range []string{
		`{"success":true,"data":null,"error":null}`,
		`{"success":false,"data":"x","error":null}`,
	} {
		if _, err := DecodeResponse(raw); err == nil {
			t.Errorf("DecodeResponse(%s): expected error", raw)
		}
	}
}

func TestDeliveryScript(t *testing.T) {
	got := DeliveryScript(`{"success":true,"data":"Sum: 5","error":null}`)
	want := `window.dispatchEvent(new CustomEvent('rust-response', { detail: {"success":true,"data":"Sum: 5","error":null} }));`
	if got != want {
		t.Fatalf("DeliveryScript =\n%s\nwant\n%s", got, want)
	}
	if !strings.Contains(got, ResponseEvent) {
		t.Fatal("script does not name the response event")
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
