// Package bridge turns raw messages from the web UI into responses queued
// for delivery back to the page.
package bridge

import (
	"errors"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/tuffi/internal/command"
	"github.com/petervdpas/tuffi/internal/proto"
	"github.com/petervdpas/tuffi/internal/util"
)

var log = logging.Logger("ipc")

// Bridge decodes inbound messages, runs them through a Dispatcher and
// enqueues the delivery script. Receive may be called from any goroutine.
type Bridge struct {
	dispatcher command.Dispatcher
	outbound   *util.Queue[string]
}

// New creates a bridge delivering into outbound.
func New(d command.Dispatcher, outbound *util.Queue[string]) *Bridge {
	return &Bridge{dispatcher: d, outbound: outbound}
}

// Outbound returns the delivery queue drained by the event loop.
func (b *Bridge) Outbound() *util.Queue[string] {
	return b.outbound
}

// Receive handles one raw message end to end and returns the response it
// queued. Delivery is best effort: when the queue is closed the response is
// logged and dropped.
func (b *Bridge) Receive(raw string) proto.Response {
	id := uuid.NewString()
	resp := b.respond(id, raw)

	js, err := deliveryScript(resp)
	if err != nil {
		log.Errorw("encode response", "msg", id, "error", err)
		return resp
	}

	if err := b.outbound.Push(js); err != nil {
		if errors.Is(err, util.ErrQueueClosed) {
			log.Warnw("failed to send response, dropping", "msg", id, "error", err)
		} else {
			log.Errorw("enqueue response", "msg", id, "error", err)
		}
	}
	return resp
}

func (b *Bridge) respond(id, raw string) proto.Response {
	req, err := proto.DecodeRequest(raw)
	if err != nil {
		log.Debugw("bad message", "msg", id, "error", err)
		return proto.Failure("Failed to parse message: " + err.Error())
	}

	log.Debugw("dispatch", "msg", id, "function", req.Function)
	result, err := b.dispatcher.Handle(req.Function, req.Args)
	if err != nil {
		return proto.Failure(err.Error())
	}
	return proto.Success(result)
}

func deliveryScript(resp proto.Response) (string, error) {
	enc, err := proto.EncodeResponse(resp)
	if err != nil {
		return "", err
	}
	return proto.DeliveryScript(enc), nil
}
