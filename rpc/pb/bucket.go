package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// --------------------------------------------------------------------------
// Listing
// --------------------------------------------------------------------------

// RpbListBucketsResp holds the names of all buckets
type RpbListBucketsResp struct {
	Buckets [][]byte // 1
}

func (m *RpbListBucketsResp) Size() int {
	return sizeRepeated(1, m.Buckets)
}

func (m *RpbListBucketsResp) AppendTo(b []byte) []byte {
	return appendRepeated(b, 1, m.Buckets)
}

func (m *RpbListBucketsResp) Unmarshal(b []byte) error {
	*m = RpbListBucketsResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		if num == 1 {
			var v []byte
			if v, n, err = consumeBytes(typ, b); err == nil {
				m.Buckets = append(m.Buckets, v)
			}
		}
		return
	})
}

// RpbListKeysReq starts a key listing of a bucket
type RpbListKeysReq struct {
	Bucket []byte // 1 (required)
}

func (m *RpbListKeysReq) Size() int { return sizeBytes(1, len(m.Bucket)) }

func (m *RpbListKeysReq) AppendTo(b []byte) []byte { return appendBytes(b, 1, m.Bucket) }

func (m *RpbListKeysReq) Unmarshal(b []byte) error {
	*m = RpbListKeysReq{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		if num == 1 {
			m.Bucket, n, err = consumeBytes(typ, b)
		}
		return
	})
}

// RpbListKeysResp is one batch of a key listing. The last batch has Done set.
type RpbListKeysResp struct {
	Keys [][]byte // 1
	Done bool     // 2
}

func (m *RpbListKeysResp) Size() int {
	n := sizeRepeated(1, m.Keys)
	if m.Done {
		n += sizeBool(2)
	}
	return n
}

func (m *RpbListKeysResp) AppendTo(b []byte) []byte {
	b = appendRepeated(b, 1, m.Keys)
	if m.Done {
		b = appendBool(b, 2, true)
	}
	return b
}

func (m *RpbListKeysResp) Unmarshal(b []byte) error {
	*m = RpbListKeysResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			var v []byte
			if v, n, err = consumeBytes(typ, b); err == nil {
				m.Keys = append(m.Keys, v)
			}
		case 2:
			m.Done, n, err = consumeBool(typ, b)
		}
		return
	})
}

// StreamDone reports whether this is the last frame of the stream
func (m *RpbListKeysResp) StreamDone() bool { return m.Done }

func sizeRepeated(num protowire.Number, values [][]byte) int {
	n := 0
	for _, v := range values {
		n += sizeBytes(num, len(v))
	}
	return n
}

func appendRepeated(b []byte, num protowire.Number, values [][]byte) []byte {
	for _, v := range values {
		b = appendBytes(b, num, v)
	}
	return b
}

// --------------------------------------------------------------------------
// Bucket properties
// --------------------------------------------------------------------------

// RpbBucketProps holds the properties of a bucket. Nil fields are not sent.
type RpbBucketProps struct {
	NVal      *uint32 // 1
	AllowMult *bool   // 2
}

func (m *RpbBucketProps) Size() int {
	n := 0
	if m.NVal != nil {
		n += sizeVarint(1, uint64(*m.NVal))
	}
	if m.AllowMult != nil {
		n += sizeBool(2)
	}
	return n
}

func (m *RpbBucketProps) AppendTo(b []byte) []byte {
	if m.NVal != nil {
		b = appendVarint(b, 1, uint64(*m.NVal))
	}
	if m.AllowMult != nil {
		b = appendBool(b, 2, *m.AllowMult)
	}
	return b
}

func (m *RpbBucketProps) Unmarshal(b []byte) error {
	*m = RpbBucketProps{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			var v uint32
			if v, n, err = consumeUint32(typ, b); err == nil {
				m.NVal = &v
			}
		case 2:
			var v bool
			if v, n, err = consumeBool(typ, b); err == nil {
				m.AllowMult = &v
			}
		}
		return
	})
}

// props returns p or an empty message for a required field
func props(p *RpbBucketProps) *RpbBucketProps {
	if p == nil {
		return &RpbBucketProps{}
	}
	return p
}

// RpbGetBucketReq requests the properties of a bucket
type RpbGetBucketReq struct {
	Bucket []byte // 1 (required)
}

func (m *RpbGetBucketReq) Size() int { return sizeBytes(1, len(m.Bucket)) }

func (m *RpbGetBucketReq) AppendTo(b []byte) []byte { return appendBytes(b, 1, m.Bucket) }

func (m *RpbGetBucketReq) Unmarshal(b []byte) error {
	*m = RpbGetBucketReq{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		if num == 1 {
			m.Bucket, n, err = consumeBytes(typ, b)
		}
		return
	})
}

// RpbGetBucketResp holds the properties of a bucket
type RpbGetBucketResp struct {
	Props *RpbBucketProps // 1 (required)
}

func (m *RpbGetBucketResp) Size() int { return sizeMessage(1, props(m.Props)) }

func (m *RpbGetBucketResp) AppendTo(b []byte) []byte { return appendMessage(b, 1, props(m.Props)) }

func (m *RpbGetBucketResp) Unmarshal(b []byte) error {
	*m = RpbGetBucketResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		if num == 1 {
			m.Props = &RpbBucketProps{}
			n, err = consumeMessage(typ, b, m.Props)
		}
		return
	})
}

// RpbSetBucketReq changes the properties of a bucket
type RpbSetBucketReq struct {
	Bucket []byte          // 1 (required)
	Props  *RpbBucketProps // 2 (required)
}

func (m *RpbSetBucketReq) Size() int {
	return sizeBytes(1, len(m.Bucket)) + sizeMessage(2, props(m.Props))
}

func (m *RpbSetBucketReq) AppendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Bucket)
	return appendMessage(b, 2, props(m.Props))
}

func (m *RpbSetBucketReq) Unmarshal(b []byte) error {
	*m = RpbSetBucketReq{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Bucket, n, err = consumeBytes(typ, b)
		case 2:
			m.Props = &RpbBucketProps{}
			n, err = consumeMessage(typ, b, m.Props)
		}
		return
	})
}
