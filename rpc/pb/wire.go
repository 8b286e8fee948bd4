package pb

import (
	"errors"
	"fmt"
	"google.golang.org/protobuf/encoding/protowire"
	"math"
)

// Message is implemented by every payload schema
type Message interface {
	// Size returns the length of the encoded message
	Size() int
	// AppendTo appends the encoded message to b
	AppendTo(b []byte) []byte
	// Unmarshal decodes b into the message, replacing its content
	Unmarshal(b []byte) error
}

// ErrWireType is returned if a known field arrives with an unexpected wire type
var ErrWireType = errors.New("pb: unexpected wire type")

// ErrRange is returned if a varint does not fit into the field it is decoded into
var ErrRange = errors.New("pb: value out of range")

// --------------------------------------------------------------------------
// Encoding helpers
// --------------------------------------------------------------------------

func sizeBytes(num protowire.Number, l int) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(l)
}

func sizeVarint(num protowire.Number, v uint64) int {
	return protowire.SizeTag(num) + protowire.SizeVarint(v)
}

func sizeBool(num protowire.Number) int {
	return protowire.SizeTag(num) + 1
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(m.Size()))
	return m.AppendTo(b)
}

func sizeMessage(num protowire.Number, m Message) int {
	return sizeBytes(num, m.Size())
}

// --------------------------------------------------------------------------
// Decoding helpers
// --------------------------------------------------------------------------

// fieldFunc decodes the value of one field from b and returns the number of consumed bytes.
// Returning 0 and no error marks the field as unknown, it is skipped.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// unmarshalFields walks all fields of an encoded message
func unmarshalFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("pb: invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("pb: field %d: %w", num, err)
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("pb: field %d: %w", num, protowire.ParseError(m))
			}
		}
		b = b[m:]
	}
	return nil
}

// consumeBytes decodes a length delimited field, the result is a copy
func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, ErrWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return append(make([]byte, 0, len(v)), v...), n, nil
}

func consumeString(typ protowire.Type, b []byte) (string, int, error) {
	if typ != protowire.BytesType {
		return "", 0, ErrWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", 0, protowire.ParseError(n)
	}
	return string(v), n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, ErrWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeUint32(typ protowire.Type, b []byte) (uint32, int, error) {
	v, n, err := consumeVarint(typ, b)
	if err != nil {
		return 0, 0, err
	}
	if v > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: %d does not fit into uint32", ErrRange, v)
	}
	return uint32(v), n, nil
}

func consumeBool(typ protowire.Type, b []byte) (bool, int, error) {
	v, n, err := consumeVarint(typ, b)
	return protowire.DecodeBool(v), n, err
}

// consumeMessage decodes an embedded message into m
func consumeMessage(typ protowire.Type, b []byte, m Message) (int, error) {
	if typ != protowire.BytesType {
		return 0, ErrWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if err := m.Unmarshal(v); err != nil {
		return 0, err
	}
	return n, nil
}

// --------------------------------------------------------------------------
// Empty
// --------------------------------------------------------------------------

// Empty is the payload of frames without a body (ping, set client id, delete and set bucket
// responses). Decoding accepts any well formed message and ignores its fields.
type Empty struct{}

func (Empty) Size() int { return 0 }

func (Empty) AppendTo(b []byte) []byte { return b }

func (Empty) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(protowire.Number, protowire.Type, []byte) (int, error) {
		return 0, nil
	})
}
