package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// --------------------------------------------------------------------------
// RpbErrorResp
// --------------------------------------------------------------------------

// RpbErrorResp is the body of every error tagged frame
type RpbErrorResp struct {
	Errmsg  []byte // 1 (required)
	Errcode uint32 // 2 (required)
}

func (m *RpbErrorResp) Size() int {
	return sizeBytes(1, len(m.Errmsg)) + sizeVarint(2, uint64(m.Errcode))
}

func (m *RpbErrorResp) AppendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Errmsg)
	return appendVarint(b, 2, uint64(m.Errcode))
}

func (m *RpbErrorResp) Unmarshal(b []byte) error {
	*m = RpbErrorResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Errmsg, n, err = consumeBytes(typ, b)
		case 2:
			m.Errcode, n, err = consumeUint32(typ, b)
		}
		return
	})
}

// --------------------------------------------------------------------------
// Client id
// --------------------------------------------------------------------------

// RpbGetClientIdResp carries the client id of the connection
type RpbGetClientIdResp struct {
	ClientId []byte // 1 (required)
}

func (m *RpbGetClientIdResp) Size() int { return sizeBytes(1, len(m.ClientId)) }

func (m *RpbGetClientIdResp) AppendTo(b []byte) []byte { return appendBytes(b, 1, m.ClientId) }

func (m *RpbGetClientIdResp) Unmarshal(b []byte) error {
	*m = RpbGetClientIdResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		if num == 1 {
			m.ClientId, n, err = consumeBytes(typ, b)
		}
		return
	})
}

// RpbSetClientIdReq sets the client id of the connection
type RpbSetClientIdReq struct {
	ClientId []byte // 1 (required)
}

func (m *RpbSetClientIdReq) Size() int { return sizeBytes(1, len(m.ClientId)) }

func (m *RpbSetClientIdReq) AppendTo(b []byte) []byte { return appendBytes(b, 1, m.ClientId) }

func (m *RpbSetClientIdReq) Unmarshal(b []byte) error {
	*m = RpbSetClientIdReq{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		if num == 1 {
			m.ClientId, n, err = consumeBytes(typ, b)
		}
		return
	})
}

// --------------------------------------------------------------------------
// RpbGetServerInfoResp
// --------------------------------------------------------------------------

// RpbGetServerInfoResp identifies the node that answered
type RpbGetServerInfoResp struct {
	Node          []byte // 1
	ServerVersion []byte // 2
}

func (m *RpbGetServerInfoResp) Size() int {
	n := 0
	if len(m.Node) > 0 {
		n += sizeBytes(1, len(m.Node))
	}
	if len(m.ServerVersion) > 0 {
		n += sizeBytes(2, len(m.ServerVersion))
	}
	return n
}

func (m *RpbGetServerInfoResp) AppendTo(b []byte) []byte {
	if len(m.Node) > 0 {
		b = appendBytes(b, 1, m.Node)
	}
	if len(m.ServerVersion) > 0 {
		b = appendBytes(b, 2, m.ServerVersion)
	}
	return b
}

func (m *RpbGetServerInfoResp) Unmarshal(b []byte) error {
	*m = RpbGetServerInfoResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Node, n, err = consumeBytes(typ, b)
		case 2:
			m.ServerVersion, n, err = consumeBytes(typ, b)
		}
		return
	})
}
