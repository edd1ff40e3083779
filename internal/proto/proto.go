// Package proto defines the JSON envelopes exchanged between the web UI and
// the host, and the script used to deliver a response back to the page.
package proto

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// MessageEvent is the frontend event carrying a raw request envelope.
	MessageEvent = "ipc"

	// ResponseEvent is the DOM event the page listens on for responses.
	ResponseEvent = "rust-response"
)

// Request selects a host function and passes its positional arguments.
type Request struct {
	Function string   `json:"function"`
	Args     []string `json:"args"`
}

// Response reports the outcome of one Request. Data is set when Success is
// true, Error when it is false. Both always appear on the wire, as null when
// unset.
type Response struct {
	Success bool    `json:"success"`
	Data    *string `json:"data"`
	Error   *string `json:"error"`
}

// Success builds a successful response carrying data.
func Success(data string) Response {
	return Response{Success: true, Data: &data}
}

// Failure builds a failed response carrying msg.
func Failure(msg string) Response {
	return Response{Success: false, Error: &msg}
}

type wireRequest struct {
	Function *string    `json:"function"`
	Args     *[]*string `json:"args"`
}

// DecodeRequest parses raw as a Request envelope. Both fields are required.
func DecodeRequest(raw string) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Request{}, err
	}
	if w.Function == nil {
		return Request{}, errors.New("missing field `function`")
	}
	if w.Args == nil {
		return Request{}, errors.New("missing field `args`")
	}
	args := make([]string, len(*w.Args))
	for i, a := range *w.Args {
		if a == nil {
			return Request{}, fmt.Errorf("invalid type: null, expected a string in `args` at index %d", i)
		}
		args[i] = *a
	}
	return Request{Function: *w.Function, Args: args}, nil
}

// EncodeResponse renders r as compact JSON.
func EncodeResponse(r Response) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeResponse parses raw as a Response envelope.
func DecodeResponse(raw string) (Response, error) {
	var r Response
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Response{}, err
	}
	if r.Success && r.Data == nil {
		return Response{}, errors.New("successful response without data")
	}
	if !r.Success && r.Error == nil {
		return Response{}, errors.New("failed response without error")
	}
	return r, nil
}

// DeliveryScript wraps an encoded response in the script that raises
// ResponseEvent in the page with the response as its detail.
func DeliveryScript(encoded string) string {
	return fmt.Sprintf("window.dispatchEvent(new CustomEvent('%s', { detail: %s }));", ResponseEvent, encoded)
}
