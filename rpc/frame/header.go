package frame

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/common"
)

// HeaderSize is the size of the fixed frame header (4 bytes length + 1 byte code)
const HeaderSize = 5

// Header is the decoded fixed frame header
type Header struct {
	Code    common.MessageCode
	BodyLen int
}

// EncodeHeader encodes the header of a frame with the given code and body length
func EncodeHeader(code common.MessageCode, bodyLen int) [HeaderSize]byte {
	var h [HeaderSize]byte
	PutHeader(h[:], code, bodyLen)
	return h
}

// PutHeader writes the header into the first HeaderSize bytes of b
func PutHeader(b []byte, code common.MessageCode, bodyLen int) {
	_ = b[HeaderSize-1] // bounds check hint
	binary.BigEndian.PutUint32(b[0:4], uint32(bodyLen)+1)
	b[4] = byte(code)
}

// DecodeHeader decodes a fixed frame header
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header has %d of %d bytes", common.ErrMalformedFrame, len(b), HeaderSize)
	}
	length := binary.BigEndian.Uint32(b[0:4])
	if length == 0 {
		return Header{}, fmt.Errorf("%w: zero length", common.ErrMalformedFrame)
	}
	return Header{
		Code:    common.MessageCode(b[4]),
		BodyLen: int(length - 1),
	}, nil
}
