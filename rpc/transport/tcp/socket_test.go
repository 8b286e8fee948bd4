package tcp

import (
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
	"github.com/ValentinKolb/riakpbc/rpc/transport"
	"net"
	"testing"
	"time"
)

// TestUpgradeConnection tests applying socket options to TCP and non TCP connections
func TestUpgradeConnection(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	conn, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	testCases := []struct {
		name   string
		socket common.SocketConf
		tcp    common.TCPConf
	}{
		{name: "Defaults"},
		{name: "No delay", tcp: common.TCPConf{TCPNoDelay: true}},
		{name: "Buffers", socket: common.SocketConf{WriteBufferSize: 64 * 1024, ReadBufferSize: 64 * 1024}},
		{name: "Keep alive and linger", tcp: common.TCPConf{TCPKeepAliveSec: 30, TCPLingerSec: 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := upgradeConnection(conn, tc.socket, tc.tcp); err != nil {
				t.Errorf("upgrade: %v", err)
			}
		})
	}

	// other connection types are left untouched
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	if err := upgradeConnection(a, common.SocketConf{WriteBufferSize: 1}, common.TCPConf{TCPNoDelay: true}); err != nil {
		t.Errorf("upgrade of pipe: %v", err)
	}
}

// freeAddr returns a local address that was free a moment ago
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

// TestPingOverTCP tests a request and response through the TCP transports
func TestPingOverTCP(t *testing.T) {
	addr := freeAddr(t)
	s := NewTCPDefaultServerTransport()
	s.RegisterHandler(func(_ uint64, req frame.Frame, reply transport.ReplyFunc) error {
		return reply(common.MsgPingResp, nil)
	}, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.Listen(common.ServerConfig{Endpoint: addr, Transport: common.ServerTransportConfig{TCPConf: common.TCPConf{TCPNoDelay: true}}})
	}()
	defer func() {
		_ = s.Close()
		if err := <-done; err != nil {
			t.Errorf("listen: %v", err)
		}
	}()

	c := NewTCPClientTransport()
	config := common.ClientConfig{TimeoutSecond: 5, Transport: common.ClientTransportConfig{Endpoint: addr}}
	var err error
	for i := 0; i < 100; i++ {
		if err = c.Connect(config); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	if err := frame.WriteFrame(c, common.MsgPingReq, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := frame.ReadFrame(c, frame.DefaultLimits())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Code != common.MsgPingResp || len(f.Body) != 0 {
		t.Errorf("unexpected frame: %s %v", f.Code, f.Body)
	}
}
