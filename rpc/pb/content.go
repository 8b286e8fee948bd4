package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// --------------------------------------------------------------------------
// RpbPair
// --------------------------------------------------------------------------

// RpbPair is a key/value pair of user metadata
type RpbPair struct {
	Key   []byte // 1
	Value []byte // 2
}

func (m *RpbPair) Size() int {
	n := sizeBytes(1, len(m.Key))
	if len(m.Value) > 0 {
		n += sizeBytes(2, len(m.Value))
	}
	return n
}

func (m *RpbPair) AppendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Key)
	if len(m.Value) > 0 {
		b = appendBytes(b, 2, m.Value)
	}
	return b
}

func (m *RpbPair) Unmarshal(b []byte) error {
	*m = RpbPair{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Key, n, err = consumeBytes(typ, b)
		case 2:
			m.Value, n, err = consumeBytes(typ, b)
		}
		return
	})
}

// --------------------------------------------------------------------------
// RpbContent
// --------------------------------------------------------------------------

// RpbContent is one version of a stored value with its metadata.
// Links (field 6) are not supported and skipped on decode.
type RpbContent struct {
	Value           []byte     // 1 (required)
	ContentType     []byte     // 2
	Charset         []byte     // 3
	ContentEncoding []byte     // 4
	Vtag            []byte     // 5
	LastMod         uint32     // 7
	LastModUsecs    uint32     // 8
	Usermeta        []*RpbPair // 9
	Deleted         bool       // 11
}

func (m *RpbContent) Size() int {
	n := sizeBytes(1, len(m.Value))
	for _, f := range m.optionalBytes() {
		if len(f.v) > 0 {
			n += sizeBytes(f.num, len(f.v))
		}
	}
	if m.LastMod != 0 {
		n += sizeVarint(7, uint64(m.LastMod))
	}
	if m.LastModUsecs != 0 {
		n += sizeVarint(8, uint64(m.LastModUsecs))
	}
	for _, p := range m.Usermeta {
		n += sizeMessage(9, p)
	}
	if m.Deleted {
		n += sizeBool(11)
	}
	return n
}

func (m *RpbContent) AppendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Value)
	for _, f := range m.optionalBytes() {
		if len(f.v) > 0 {
			b = appendBytes(b, f.num, f.v)
		}
	}
	if m.LastMod != 0 {
		b = appendVarint(b, 7, uint64(m.LastMod))
	}
	if m.LastModUsecs != 0 {
		b = appendVarint(b, 8, uint64(m.LastModUsecs))
	}
	for _, p := range m.Usermeta {
		b = appendMessage(b, 9, p)
	}
	if m.Deleted {
		b = appendBool(b, 11, true)
	}
	return b
}

type bytesField struct {
	num protowire.Number
	v   []byte
}

// optionalBytes lists the optional string fields 2..5 in field order
func (m *RpbContent) optionalBytes() [4]bytesField {
	return [4]bytesField{
		{2, m.ContentType},
		{3, m.Charset},
		{4, m.ContentEncoding},
		{5, m.Vtag},
	}
}

func (m *RpbContent) Unmarshal(b []byte) error {
	*m = RpbContent{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Value, n, err = consumeBytes(typ, b)
		case 2:
			m.ContentType, n, err = consumeBytes(typ, b)
		case 3:
			m.Charset, n, err = consumeBytes(typ, b)
		case 4:
			m.ContentEncoding, n, err = consumeBytes(typ, b)
		case 5:
			m.Vtag, n, err = consumeBytes(typ, b)
		case 7:
			m.LastMod, n, err = consumeUint32(typ, b)
		case 8:
			m.LastModUsecs, n, err = consumeUint32(typ, b)
		case 9:
			p := &RpbPair{}
			if n, err = consumeMessage(typ, b, p); err == nil {
				m.Usermeta = append(m.Usermeta, p)
			}
		case 11:
			m.Deleted, n, err = consumeBool(typ, b)
		}
		return
	})
}
