package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
	"github.com/ValentinKolb/riakpbc/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector  IServerConnector
	handler    transport.ServerHandleFunc
	onClose    transport.ConnCloseFunc
	config     common.ServerConfig
	limits     frame.Limits
	bufferPool *sync.Pool

	mu         sync.Mutex // Protects listener and closed, orders wg.Add against Close
	listener   net.Listener
	closed     bool
	conns      *xsync.MapOf[uint64, net.Conn]
	nextConnID atomic.Uint64
	wg         sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport. Request bodies up to
// bufferSize bytes are read into pooled buffers.
func NewBaseServerTransport(connector IServerConnector, bufferSize int) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
		conns:     xsync.NewMapOf[uint64, net.Conn](),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc, onClose transport.ConnCloseFunc) {
	t.handler = handler
	t.onClose = onClose
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config
	t.limits = frame.Limits{MaxBodyBytes: config.FrameLimit()}

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return listener.Close()
	}
	t.listener = listener
	t.mu.Unlock()

	Logger.Infof("Starting %s server on %s", t.connector.GetName(), config.Endpoint)

	// Accept connections
	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			Logger.Errorf("Accept error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		connID := t.nextConnID.Add(1)
		t.conns.Store(connID, conn)
		t.wg.Add(1)
		t.mu.Unlock()

		// Handle the connection in a goroutine
		go t.handleConnection(connID, conn)
	}
}

func (t *serverTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}
	t.conns.Range(func(_ uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})
	t.mu.Unlock()

	// Wait for all connection handlers to return
	t.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (t *serverTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// handleConnection handles the requests of one connection strictly in arrival order
func (t *serverTransport) handleConnection(connID uint64, conn net.Conn) {
	defer func() {
		t.conns.Delete(connID)
		_ = conn.Close()
		if t.onClose != nil {
			t.onClose(connID)
		}
		t.wg.Done()
	}()

	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		Logger.Errorf("Failed to upgrade connection %d: %v", connID, err)
		return
	}
	Logger.Debugf("Accepted connection %d from %s", connID, conn.RemoteAddr())

	// Timeout in seconds
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// reply writes one response frame
	reply := func(code common.MessageCode, body []byte) error {
		if timeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				return common.TransportError("set write deadline", err)
			}
		}
		return frame.WriteFrame(conn, code, body)
	}

	// Function to handle one incoming request
	handleRequest := func() error {
		// idle connections wait for the next header without deadline,
		// the body of a started frame must arrive in time
		if err := conn.SetReadDeadline(time.Time{}); err != nil {
			return common.TransportError("clear read deadline", err)
		}
		h, err := frame.ReadHeader(conn)
		if err != nil {
			return err
		}
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return common.TransportError("set read deadline", err)
			}
		}

		// Get a buffer from the pool
		buf := t.bufferPool.Get().([]byte)
		defer t.bufferPool.Put(buf)

		body, err := frame.ReadBody(conn, h, buf, t.limits)
		if err != nil {
			return err
		}

		// Process the request
		start := time.Now()
		err = t.handler(connID, frame.Frame{Code: h.Code, Body: body}, reply)
		Logger.Debugf("Processed %s on connection %d took %s", h.Code, connID, time.Since(start))
		return err
	}

	// Handle requests in a loop
	for {
		err := handleRequest()
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			// Case EOF: Connection closed by client
			Logger.Debugf("Connection %d closed by client", connID)
		case t.isClosed():
			// Case shutdown: connection was closed by Close
		default:
			// Case error: log and close connection
			Logger.Errorf("Error handling request on connection %d: %v", connID, err)
		}
		return
	}
}
