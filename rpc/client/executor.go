package client

import (
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
	"time"
)

// --------------------------------------------------------------------------
// Single response
// --------------------------------------------------------------------------

// execute sends req as request of op and decodes the single answer into resp.
// A nil req sends an empty body, a nil resp accepts an empty body.
// An error tagged answer is returned as *common.ServerError, resp is left untouched then.
func (a *rpcClientAdapter) execute(op common.Operation, req pb.Message, resp pb.Message) (err error) {
	spec, ok := common.Operations[op]
	if !ok {
		return fmt.Errorf("unknown operation %d", op)
	}

	if err := a.usable(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		observe(spec.Name, start, err)
		Logger.Debugf("%s finished after %s (err: %v)", spec.Name, time.Since(start), err)
	}()

	if err := a.send(spec, req); err != nil {
		return a.checkBroken(err)
	}
	return a.checkBroken(a.receive(spec, resp))
}

// send writes the request frame. The body is serialized behind a reserved header
// so the frame leaves in one write.
func (a *rpcClientAdapter) send(spec common.OperationSpec, req pb.Message) error {
	buf := a.writeBuf[:0]
	if cap(buf) < frame.HeaderSize {
		buf = make([]byte, 0, 512)
	}
	buf = buf[:frame.HeaderSize]

	buf, err := a.serializer.Serialize(buf, req)
	if err != nil {
		return fmt.Errorf("encode %s: %w", spec.Request, err)
	}
	frame.PutHeader(buf, spec.Request, len(buf)-frame.HeaderSize)
	a.writeBuf = keep(buf)

	Logger.Debugf("Sending %s (%d body bytes)", spec.Request, len(buf)-frame.HeaderSize)
	return frame.WriteFull(a.transport, buf)
}

// receive reads one frame and decodes it into resp if it carries the expected response code
func (a *rpcClientAdapter) receive(spec common.OperationSpec, resp pb.Message) error {
	h, err := frame.ReadHeader(a.transport)
	if err != nil {
		return err
	}

	// check the code before the body is read
	switch h.Code {
	case spec.Response, common.MsgErrorResp:
	default:
		return fmt.Errorf("%w: expected %s, got %s", common.ErrMalformedFrame, spec.Response, h.Code)
	}

	body, err := frame.ReadBody(a.transport, h, a.readBuf, a.limits)
	if err != nil {
		return err
	}
	a.readBuf = keep(body)

	if h.Code == common.MsgErrorResp {
		var errResp pb.RpbErrorResp
		if err := a.serializer.Deserialize(body, &errResp); err != nil {
			return fmt.Errorf("decode %s: %w", h.Code, err)
		}
		return common.NewServerError(errResp.Errcode, string(errResp.Errmsg))
	}

	if err := a.serializer.Deserialize(body, resp); err != nil {
		return fmt.Errorf("decode %s: %w", h.Code, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Streaming response
// --------------------------------------------------------------------------

// streamResponse is a payload that is answered with a sequence of frames
type streamResponse interface {
	pb.Message
	StreamDone() bool
}

// responseStream reads the frames of a streaming operation one by one.
// After the frame flagged as done (or the first error) nothing is read anymore.
type responseStream[T streamResponse] struct {
	adapter  *rpcClientAdapter
	spec     common.OperationSpec
	newResp  func() T
	start    time.Time
	frames   int
	finished bool
	err      error
}

// openStream sends the request of a streaming operation
func openStream[T streamResponse](a *rpcClientAdapter, op common.Operation, req pb.Message, newResp func() T) (*responseStream[T], error) {
	spec, ok := common.Operations[op]
	if !ok || !spec.Streaming {
		return nil, fmt.Errorf("operation %d is not streaming", op)
	}

	if err := a.usable(); err != nil {
		return nil, err
	}

	s := &responseStream[T]{adapter: a, spec: spec, newResp: newResp, start: time.Now()}
	if err := a.checkBroken(a.send(spec, req)); err != nil {
		s.finish(err)
		return nil, err
	}
	return s, nil
}

// next returns the next response. ok is false once the done frame was consumed before.
func (s *responseStream[T]) next() (resp T, ok bool, err error) {
	if s.finished {
		return resp, false, s.err
	}

	resp = s.newResp()
	if err := s.adapter.checkBroken(s.adapter.receive(s.spec, resp)); err != nil {
		s.finish(err)
		return resp, false, err
	}
	s.frames++

	if resp.StreamDone() {
		s.finish(nil)
	}
	return resp, true, nil
}

// drain consumes the remaining frames so the connection is ready for the next request.
// A failed drain leaves the connection broken.
func (s *responseStream[T]) drain() error {
	for {
		_, ok, err := s.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

func (s *responseStream[T]) finish(err error) {
	if s.finished {
		return
	}
	s.finished = true
	s.err = err
	observe(s.spec.Name, s.start, err)
	Logger.Debugf("%s finished after %d frames in %s (err: %v)", s.spec.Name, s.frames, time.Since(s.start), err)
}
