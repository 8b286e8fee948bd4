package frame

import (
	"bytes"
	"errors"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"io"
	"testing"
	"testing/iotest"
)

// TestHeaderRoundTrip tests that encode and decode are inverse for a range of lengths
func TestHeaderRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 2, 127, 128, 255, 256, 65535, 65536, 1 << 24, 1<<31 - 1}
	codes := []common.MessageCode{common.MsgErrorResp, common.MsgPingReq, common.MsgListKeysResp, 255}

	for _, code := range codes {
		for _, l := range lengths {
			h := EncodeHeader(code, l)
			if len(h) != HeaderSize {
				t.Fatalf("header has %d bytes, expected %d", len(h), HeaderSize)
			}

			decoded, err := DecodeHeader(h[:])
			if err != nil {
				t.Fatalf("failed to decode header (code %d, len %d): %v", code, l, err)
			}
			if decoded.Code != code || decoded.BodyLen != l {
				t.Errorf("header mismatch: got %+v, expected code %d len %d", decoded, code, l)
			}
		}
	}
}

// TestHeaderLayout tests the exact byte layout of the header
func TestHeaderLayout(t *testing.T) {
	h := EncodeHeader(common.MsgGetReq, 0x0102)
	expected := []byte{0x00, 0x00, 0x01, 0x03, 0x09}
	if !bytes.Equal(h[:], expected) {
		t.Errorf("unexpected header bytes: got %v, expected %v", h, expected)
	}

	// an empty body is announced with length one (the code byte)
	h = EncodeHeader(common.MsgPingReq, 0)
	if !bytes.Equal(h[:], []byte{0, 0, 0, 1, 1}) {
		t.Errorf("unexpected ping header: %v", h)
	}
}

// TestDecodeHeaderInvalid tests malformed headers
func TestDecodeHeaderInvalid(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "Empty", data: []byte{}},
		{name: "Too short", data: []byte{0, 0, 0, 1}},
		{name: "Zero length", data: []byte{0, 0, 0, 0, 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeHeader(tc.data); !errors.Is(err, common.ErrMalformedFrame) {
				t.Errorf("expected ErrMalformedFrame, got %v", err)
			}
		})
	}
}

// TestReadWriteFrameRoundTrip tests writing and reading a frame through a buffer
func TestReadWriteFrameRoundTrip(t *testing.T) {
	bodies := [][]byte{{}, []byte("x"), bytes.Repeat([]byte("payload"), 1000)}

	for _, body := range bodies {
		var buf bytes.Buffer
		if err := WriteFrame(&buf, common.MsgPutReq, body); err != nil {
			t.Fatalf("write frame: %v", err)
		}
		if buf.Len() != HeaderSize+len(body) {
			t.Fatalf("frame has %d bytes, expected %d", buf.Len(), HeaderSize+len(body))
		}

		f, err := ReadFrame(&buf, DefaultLimits())
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if f.Code != common.MsgPutReq || !bytes.Equal(f.Body, body) {
			t.Errorf("frame mismatch: code %s, %d body bytes", f.Code, len(f.Body))
		}
		if buf.Len() != 0 {
			t.Errorf("reader consumed too little: %d bytes left", buf.Len())
		}
	}
}

// TestReadFrameSlowReader tests that bodies are assembled from partial reads
func TestReadFrameSlowReader(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("assembled one byte at a time")
	if err := WriteFrame(&buf, common.MsgGetResp, body); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	f, err := ReadFrame(iotest.OneByteReader(&buf), DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(f.Body, body) {
		t.Errorf("body mismatch: %q", f.Body)
	}
}

// TestReadFrameErrors tests the error taxonomy of the reader
func TestReadFrameErrors(t *testing.T) {
	full := func(code common.MessageCode, body []byte) []byte {
		h := EncodeHeader(code, len(body))
		return append(h[:], body...)
	}

	testCases := []struct {
		name     string
		reader   io.Reader
		limits   Limits
		expected error
	}{
		{
			name:     "Closed before header",
			reader:   bytes.NewReader(nil),
			expected: common.ErrTransport,
		},
		{
			name:     "Partial header",
			reader:   bytes.NewReader([]byte{0, 0, 0}),
			expected: common.ErrMalformedFrame,
		},
		{
			name:     "Zero length",
			reader:   bytes.NewReader([]byte{0, 0, 0, 0, 1}),
			expected: common.ErrMalformedFrame,
		},
		{
			name:     "Body shorter than declared",
			reader:   bytes.NewReader(full(common.MsgGetResp, []byte("abcdef"))[:HeaderSize+3]),
			expected: common.ErrShortRead,
		},
		{
			name:     "Header only, body missing",
			reader:   bytes.NewReader(full(common.MsgGetResp, []byte("abc"))[:HeaderSize]),
			expected: common.ErrShortRead,
		},
		{
			name:     "Body too large",
			reader:   bytes.NewReader(full(common.MsgGetResp, make([]byte, 32))),
			limits:   Limits{MaxBodyBytes: 16},
			expected: common.ErrMalformedFrame,
		},
		{
			name:     "Reader error",
			reader:   iotest.ErrReader(errors.New("connection reset")),
			expected: common.ErrTransport,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			limits := tc.limits
			if limits.MaxBodyBytes == 0 {
				limits = DefaultLimits()
			}
			_, err := ReadFrame(tc.reader, limits)
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

// TestReadBodyTimeoutIsShortReadAndTransport tests that a failing reader mid body reports both kinds
func TestReadBodyTimeoutIsShortReadAndTransport(t *testing.T) {
	r := io.MultiReader(bytes.NewReader([]byte("ab")), iotest.ErrReader(errors.New("i/o timeout")))
	_, err := ReadBody(r, Header{Code: common.MsgGetResp, BodyLen: 4}, nil, DefaultLimits())
	if !errors.Is(err, common.ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
	if !errors.Is(err, common.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

// shortWriter accepts at most max bytes per call
type shortWriter struct {
	buf bytes.Buffer
	max int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.max {
		p = p[:w.max]
	}
	return w.buf.Write(p)
}

// stuckWriter accepts nothing and reports no error
type stuckWriter struct{}

func (stuckWriter) Write([]byte) (int, error) { return 0, nil }

// TestWriteFull tests that partial writes are continued until every byte is accepted
func TestWriteFull(t *testing.T) {
	w := &shortWriter{max: 3}
	body := []byte("a body that needs several writes")
	if err := WriteFrame(w, common.MsgPutReq, body); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	f, err := ReadFrame(&w.buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(f.Body, body) {
		t.Errorf("body mismatch: %q", f.Body)
	}

	if err := WriteFull(stuckWriter{}, []byte("x")); !errors.Is(err, common.ErrTransport) {
		t.Errorf("expected ErrTransport for a stuck writer, got %v", err)
	}
}
