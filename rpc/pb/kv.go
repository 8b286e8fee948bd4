package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// --------------------------------------------------------------------------
// RpbGetReq / RpbGetResp
// --------------------------------------------------------------------------

// RpbGetReq fetches all versions of a key
type RpbGetReq struct {
	Bucket        []byte // 1 (required)
	Key           []byte // 2 (required)
	R             uint32 // 3
	PR            uint32 // 4
	BasicQuorum   bool   // 5
	NotfoundOk    bool   // 6
	IfModified    []byte // 7
	Head          bool   // 8
	DeletedVClock bool   // 9
}

func (m *RpbGetReq) Size() int {
	n := sizeBytes(1, len(m.Bucket)) + sizeBytes(2, len(m.Key))
	if m.R != 0 {
		n += sizeVarint(3, uint64(m.R))
	}
	if m.PR != 0 {
		n += sizeVarint(4, uint64(m.PR))
	}
	if m.BasicQuorum {
		n += sizeBool(5)
	}
	if m.NotfoundOk {
		n += sizeBool(6)
	}
	if len(m.IfModified) > 0 {
		n += sizeBytes(7, len(m.IfModified))
	}
	if m.Head {
		n += sizeBool(8)
	}
	if m.DeletedVClock {
		n += sizeBool(9)
	}
	return n
}

func (m *RpbGetReq) AppendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Bucket)
	b = appendBytes(b, 2, m.Key)
	if m.R != 0 {
		b = appendVarint(b, 3, uint64(m.R))
	}
	if m.PR != 0 {
		b = appendVarint(b, 4, uint64(m.PR))
	}
	if m.BasicQuorum {
		b = appendBool(b, 5, true)
	}
	if m.NotfoundOk {
		b = appendBool(b, 6, true)
	}
	if len(m.IfModified) > 0 {
		b = appendBytes(b, 7, m.IfModified)
	}
	if m.Head {
		b = appendBool(b, 8, true)
	}
	if m.DeletedVClock {
		b = appendBool(b, 9, true)
	}
	return b
}

func (m *RpbGetReq) Unmarshal(b []byte) error {
	*m = RpbGetReq{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Bucket, n, err = consumeBytes(typ, b)
		case 2:
			m.Key, n, err = consumeBytes(typ, b)
		case 3:
			m.R, n, err = consumeUint32(typ, b)
		case 4:
			m.PR, n, err = consumeUint32(typ, b)
		case 5:
			m.BasicQuorum, n, err = consumeBool(typ, b)
		case 6:
			m.NotfoundOk, n, err = consumeBool(typ, b)
		case 7:
			m.IfModified, n, err = consumeBytes(typ, b)
		case 8:
			m.Head, n, err = consumeBool(typ, b)
		case 9:
			m.DeletedVClock, n, err = consumeBool(typ, b)
		}
		return
	})
}

// RpbGetResp holds the versions of a key. No content and no vclock means not found.
type RpbGetResp struct {
	Content   []*RpbContent // 1
	Vclock    []byte        // 2
	Unchanged bool          // 3
}

func (m *RpbGetResp) Size() int {
	n := 0
	for _, c := range m.Content {
		n += sizeMessage(1, c)
	}
	if len(m.Vclock) > 0 {
		n += sizeBytes(2, len(m.Vclock))
	}
	if m.Unchanged {
		n += sizeBool(3)
	}
	return n
}

func (m *RpbGetResp) AppendTo(b []byte) []byte {
	for _, c := range m.Content {
		b = appendMessage(b, 1, c)
	}
	if len(m.Vclock) > 0 {
		b = appendBytes(b, 2, m.Vclock)
	}
	if m.Unchanged {
		b = appendBool(b, 3, true)
	}
	return b
}

func (m *RpbGetResp) Unmarshal(b []byte) error {
	*m = RpbGetResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			c := &RpbContent{}
			if n, err = consumeMessage(typ, b, c); err == nil {
				m.Content = append(m.Content, c)
			}
		case 2:
			m.Vclock, n, err = consumeBytes(typ, b)
		case 3:
			m.Unchanged, n, err = consumeBool(typ, b)
		}
		return
	})
}

// --------------------------------------------------------------------------
// RpbPutReq / RpbPutResp
// --------------------------------------------------------------------------

// RpbPutReq stores one content under a key
type RpbPutReq struct {
	Bucket     []byte      // 1 (required)
	Key        []byte      // 2
	Vclock     []byte      // 3
	Content    *RpbContent // 4 (required)
	W          uint32      // 5
	DW         uint32      // 6
	ReturnBody bool        // 7
	PW         uint32      // 8
}

func (m *RpbPutReq) content() *RpbContent {
	if m.Content == nil {
		return &RpbContent{}
	}
	return m.Content
}

func (m *RpbPutReq) Size() int {
	n := sizeBytes(1, len(m.Bucket))
	if len(m.Key) > 0 {
		n += sizeBytes(2, len(m.Key))
	}
	if len(m.Vclock) > 0 {
		n += sizeBytes(3, len(m.Vclock))
	}
	n += sizeMessage(4, m.content())
	if m.W != 0 {
		n += sizeVarint(5, uint64(m.W))
	}
	if m.DW != 0 {
		n += sizeVarint(6, uint64(m.DW))
	}
	if m.ReturnBody {
		n += sizeBool(7)
	}
	if m.PW != 0 {
		n += sizeVarint(8, uint64(m.PW))
	}
	return n
}

func (m *RpbPutReq) AppendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Bucket)
	if len(m.Key) > 0 {
		b = appendBytes(b, 2, m.Key)
	}
	if len(m.Vclock) > 0 {
		b = appendBytes(b, 3, m.Vclock)
	}
	b = appendMessage(b, 4, m.content())
	if m.W != 0 {
		b = appendVarint(b, 5, uint64(m.W))
	}
	if m.DW != 0 {
		b = appendVarint(b, 6, uint64(m.DW))
	}
	if m.ReturnBody {
		b = appendBool(b, 7, true)
	}
	if m.PW != 0 {
		b = appendVarint(b, 8, uint64(m.PW))
	}
	return b
}

func (m *RpbPutReq) Unmarshal(b []byte) error {
	*m = RpbPutReq{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Bucket, n, err = consumeBytes(typ, b)
		case 2:
			m.Key, n, err = consumeBytes(typ, b)
		case 3:
			m.Vclock, n, err = consumeBytes(typ, b)
		case 4:
			m.Content = &RpbContent{}
			n, err = consumeMessage(typ, b, m.Content)
		case 5:
			m.W, n, err = consumeUint32(typ, b)
		case 6:
			m.DW, n, err = consumeUint32(typ, b)
		case 7:
			m.ReturnBody, n, err = consumeBool(typ, b)
		case 8:
			m.PW, n, err = consumeUint32(typ, b)
		}
		return
	})
}

// RpbPutResp holds the stored versions if the body was requested
type RpbPutResp struct {
	Content []*RpbContent // 1
	Vclock  []byte        // 2
	Key     []byte        // 3 (set if the server generated the key)
}

func (m *RpbPutResp) Size() int {
	n := 0
	for _, c := range m.Content {
		n += sizeMessage(1, c)
	}
	if len(m.Vclock) > 0 {
		n += sizeBytes(2, len(m.Vclock))
	}
	if len(m.Key) > 0 {
		n += sizeBytes(3, len(m.Key))
	}
	return n
}

func (m *RpbPutResp) AppendTo(b []byte) []byte {
	for _, c := range m.Content {
		b = appendMessage(b, 1, c)
	}
	if len(m.Vclock) > 0 {
		b = appendBytes(b, 2, m.Vclock)
	}
	if len(m.Key) > 0 {
		b = appendBytes(b, 3, m.Key)
	}
	return b
}

func (m *RpbPutResp) Unmarshal(b []byte) error {
	*m = RpbPutResp{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			c := &RpbContent{}
			if n, err = consumeMessage(typ, b, c); err == nil {
				m.Content = append(m.Content, c)
			}
		case 2:
			m.Vclock, n, err = consumeBytes(typ, b)
		case 3:
			m.Key, n, err = consumeBytes(typ, b)
		}
		return
	})
}

// --------------------------------------------------------------------------
// RpbDelReq
// --------------------------------------------------------------------------

// RpbDelReq deletes a key
type RpbDelReq struct {
	Bucket []byte // 1 (required)
	Key    []byte // 2 (required)
	RW     uint32 // 3
	Vclock []byte // 4
}

func (m *RpbDelReq) Size() int {
	n := sizeBytes(1, len(m.Bucket)) + sizeBytes(2, len(m.Key))
	if m.RW != 0 {
		n += sizeVarint(3, uint64(m.RW))
	}
	if len(m.Vclock) > 0 {
		n += sizeBytes(4, len(m.Vclock))
	}
	return n
}

func (m *RpbDelReq) AppendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Bucket)
	b = appendBytes(b, 2, m.Key)
	if m.RW != 0 {
		b = appendVarint(b, 3, uint64(m.RW))
	}
	if len(m.Vclock) > 0 {
		b = appendBytes(b, 4, m.Vclock)
	}
	return b
}

func (m *RpbDelReq) Unmarshal(b []byte) error {
	*m = RpbDelReq{}
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case 1:
			m.Bucket, n, err = consumeBytes(typ, b)
		case 2:
			m.Key, n, err = consumeBytes(typ, b)
		case 3:
			m.RW, n, err = consumeUint32(typ, b)
		case 4:
			m.Vclock, n, err = consumeBytes(typ, b)
		}
		return
	})
}
