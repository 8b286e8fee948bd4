package frame

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"io"
	"math"
)

// Frame is one complete wire message
type Frame struct {
	Code common.MessageCode
	Body []byte
}

// Limits constrains frame decode memory use
type Limits struct {
	MaxBodyBytes int
}

// DefaultLimits returns the limits used when nothing is configured
func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes: common.DefaultMaxFrameBytes,
	}
}

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

// ReadHeader reads exactly HeaderSize bytes from r and decodes them
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	switch {
	case err == nil:
		return DecodeHeader(buf[:])
	case n == 0 && errors.Is(err, io.EOF):
		// connection closed between two frames
		return Header{}, common.TransportError("read header", err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Header{}, fmt.Errorf("%w: header has %d of %d bytes", common.ErrMalformedFrame, n, HeaderSize)
	default:
		return Header{}, common.TransportError("read header", err)
	}
}

// ReadBody reads exactly h.BodyLen bytes from r.
// buf is reused when it is large enough, otherwise a new slice is allocated.
func ReadBody(r io.Reader, h Header, buf []byte, limits Limits) ([]byte, error) {
	if limits.MaxBodyBytes > 0 && h.BodyLen > limits.MaxBodyBytes {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds limit of %d bytes", common.ErrMalformedFrame, h.BodyLen, limits.MaxBodyBytes)
	}
	if h.BodyLen == 0 {
		return []byte{}, nil
	}

	if cap(buf) < h.BodyLen {
		buf = make([]byte, h.BodyLen)
	}
	buf = buf[:h.BodyLen]

	n, err := io.ReadFull(r, buf)
	if n != h.BodyLen {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: body has %d of %d bytes", common.ErrShortRead, n, h.BodyLen)
		}
		return nil, fmt.Errorf("%w: body has %d of %d bytes: %w", common.ErrShortRead, n, h.BodyLen, common.TransportError("read body", err))
	}
	return buf, nil
}

// ReadFrame reads one complete frame from r
func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Frame{}, err
	}
	body, err := ReadBody(r, h, nil, limits)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Code: h.Code, Body: body}, nil
}

// --------------------------------------------------------------------------
// Writing
// --------------------------------------------------------------------------

// WriteFrame writes header and body to w as one buffer
func WriteFrame(w io.Writer, code common.MessageCode, body []byte) error {
	if uint64(len(body)) > math.MaxUint32-1 {
		return fmt.Errorf("%w: body of %d bytes cannot be framed", common.ErrMalformedFrame, len(body))
	}
	buf := make([]byte, HeaderSize+len(body))
	PutHeader(buf, code, len(body))
	copy(buf[HeaderSize:], body)
	return WriteFull(w, buf)
}

// WriteFull writes all of b to w. It only returns once every byte was accepted
// or the writer reported an error.
func WriteFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return common.TransportError("write", err)
		}
		if n == 0 {
			return common.TransportError("write", io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}
