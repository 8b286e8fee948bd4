package server

import (
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
	"github.com/ValentinKolb/riakpbc/rpc/transport"
)

// IRPCServerAdapter is the interface for all server adapters.
// An adapter handles a group of operations and answers through a Responder.
type IRPCServerAdapter interface {
	// Operations returns the operations the adapter handles
	Operations() []common.Operation
	// Handle handles one request. Failures of the request are answered with
	// resp.Error, a returned error means the connection is broken and is closed.
	Handle(req *Request, resp *Responder) error
}

// Request is one decoded request frame
type Request struct {
	ConnID uint64
	Op     common.Operation
	Body   []byte
}

// Decode deserializes the request body into msg
func (r *Request) Decode(s serializer.IRPCSerializer, msg pb.Message) error {
	return s.Deserialize(r.Body, msg)
}

// --------------------------------------------------------------------------
// Responder
// --------------------------------------------------------------------------

// Responder writes the response frames of one request
type Responder struct {
	spec       common.OperationSpec
	serializer serializer.IRPCSerializer
	reply      transport.ReplyFunc
	failed     bool
}

// Send writes a response frame with the response code of the operation. A nil msg sends an empty body.
// Streaming operations call Send once per batch.
func (r *Responder) Send(msg pb.Message) error {
	body, err := r.serializer.Serialize(nil, msg)
	if err != nil {
		return r.Error(errCodeInternal, fmt.Sprintf("failed to serialize response: %v", err))
	}
	return r.reply(r.spec.Response, body)
}

// Error writes an error response frame
func (r *Responder) Error(code uint32, msg string) error {
	body, err := r.serializer.Serialize(nil, &pb.RpbErrorResp{Errmsg: []byte(msg), Errcode: code})
	if err != nil {
		return err
	}
	r.failed = true
	return r.reply(common.MsgErrorResp, body)
}
