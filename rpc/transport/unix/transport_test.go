package unix

import (
	"bytes"
	"errors"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
	"github.com/ValentinKolb/riakpbc/rpc/transport"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// startEcho starts a server that echoes every body with code+1.
// Requests with code 17 are answered with three frames.
func startEcho(t *testing.T, onClose transport.ConnCloseFunc) (string, transport.IRPCServerTransport) {
	t.Helper()
	config := common.ServerConfig{Endpoint: filepath.Join(t.TempDir(), "echo.sock"), TimeoutSecond: 5}

	s := NewUnixDefaultServerTransport()
	s.RegisterHandler(func(connID uint64, req frame.Frame, reply transport.ReplyFunc) error {
		n := 1
		if req.Code == common.MsgListKeysReq {
			n = 3
		}
		for i := 0; i < n; i++ {
			if err := reply(req.Code+1, req.Body); err != nil {
				return err
			}
		}
		return nil
	}, onClose)

	done := make(chan error, 1)
	go func() { done <- s.Listen(config) }()
	t.Cleanup(func() {
		_ = s.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("listen returned error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("listen did not return after close")
		}
	})
	return config.Endpoint, s
}

func connect(t *testing.T, endpoint string) transport.IRPCClientTransport {
	t.Helper()
	config := common.ClientConfig{TimeoutSecond: 5, Transport: common.ClientTransportConfig{Endpoint: endpoint}}
	var err error
	for i := 0; i < 100; i++ {
		c := NewUnixClientTransport()
		if err = c.Connect(config); err == nil {
			return c
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("failed to connect: %v", err)
	return nil
}

// TestEcho tests single and streamed responses over one connection
func TestEcho(t *testing.T) {
	endpoint, _ := startEcho(t, nil)
	c := connect(t, endpoint)
	defer c.Close()

	testCases := []struct {
		name   string
		code   common.MessageCode
		body   []byte
		frames int
	}{
		{name: "Empty body", code: common.MsgPingReq, frames: 1},
		{name: "Small body", code: common.MsgGetReq, body: []byte("hello"), frames: 1},
		{name: "Large body", code: common.MsgPutReq, body: bytes.Repeat([]byte("x"), 256*1024), frames: 1},
		{name: "Streamed", code: common.MsgListKeysReq, body: []byte("bucket"), frames: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := frame.WriteFrame(c, tc.code, tc.body); err != nil {
				t.Fatalf("write: %v", err)
			}
			for i := 0; i < tc.frames; i++ {
				f, err := frame.ReadFrame(c, frame.DefaultLimits())
				if err != nil {
					t.Fatalf("read frame %d: %v", i, err)
				}
				if f.Code != tc.code+1 || !bytes.Equal(f.Body, tc.body) {
					t.Errorf("frame %d mismatch: code %s, %d bytes", i, f.Code, len(f.Body))
				}
			}
		})
	}
}

// TestOnClose tests that the close callback runs once per connection
func TestOnClose(t *testing.T) {
	var mu sync.Mutex
	closed := make(map[uint64]int)
	signal := make(chan struct{}, 2)

	endpoint, _ := startEcho(t, func(connID uint64) {
		mu.Lock()
		closed[connID]++
		mu.Unlock()
		signal <- struct{}{}
	})

	for i := 0; i < 2; i++ {
		c := connect(t, endpoint)
		if err := frame.WriteFrame(c, common.MsgPingReq, nil); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := frame.ReadFrame(c, frame.DefaultLimits()); err != nil {
			t.Fatalf("read: %v", err)
		}
		_ = c.Close()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-signal:
		case <-time.After(5 * time.Second):
			t.Fatalf("close callback not called")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(closed) != 2 {
		t.Errorf("expected two distinct connections, got %v", closed)
	}
	for id, n := range closed {
		if n != 1 {
			t.Errorf("connection %d closed %d times", id, n)
		}
	}
}

// TestServerClose tests that closing the server ends open connections
func TestServerClose(t *testing.T) {
	endpoint, s := startEcho(t, nil)
	c := connect(t, endpoint)
	defer c.Close()

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := frame.ReadFrame(c, frame.DefaultLimits())
	if !errors.Is(err, common.ErrTransport) {
		t.Errorf("expected transport error after server close, got %v", err)
	}
}

// TestClientNotConnected tests the transport before Connect
func TestClientNotConnected(t *testing.T) {
	c := NewUnixClientTransport()
	if _, err := c.Write([]byte("x")); err == nil {
		t.Errorf("expected error writing without connection")
	}

	err := c.Connect(common.ClientConfig{Transport: common.ClientTransportConfig{Endpoint: filepath.Join(t.TempDir(), "missing.sock")}})
	if !errors.Is(err, common.ErrTransport) {
		t.Errorf("expected transport error for missing socket, got %v", err)
	}
}

// TestListenKeepsRegularFiles tests that only stale sockets are replaced
func TestListenKeepsRegularFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte("keep"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	c := &serverConnector{}
	if _, err := c.Listen(common.ServerConfig{Endpoint: path}); err == nil {
		t.Fatalf("expected error for a regular file")
	}
	if b, err := os.ReadFile(path); err != nil || string(b) != "keep" {
		t.Errorf("regular file was touched: %q %v", b, err)
	}

	// a socket left behind by a listener that did not clean up is replaced
	sock := filepath.Join(t.TempDir(), "stale.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = l.Close()

	l, err = c.Listen(common.ServerConfig{Endpoint: sock})
	if err != nil {
		t.Fatalf("listen on stale socket: %v", err)
	}
	_ = l.Close()
}
