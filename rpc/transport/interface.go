package transport

import (
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ReplyFunc writes one response frame to the connection the request came from
type ReplyFunc func(code common.MessageCode, body []byte) error

// ServerHandleFunc is a function type that handles incoming requests.
// It is called by a server transport for every request frame, one at a time per connection
// and in arrival order. A handler may call reply several times (streaming responses).
// Returning an error closes the connection.
type ServerHandleFunc func(connID uint64, req frame.Frame, reply ReplyFunc) error

// ConnCloseFunc is called once a connection is gone
type ConnCloseFunc func(connID uint64)

// IRPCServerTransport is the interface for the server side of the transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers the request handler and an optional callback for closed connections
	RegisterHandler(handler ServerHandleFunc, onClose ConnCloseFunc)
	// Listen accepts connections until Close is called. It blocks and returns nil after Close.
	Listen(config common.ServerConfig) error
	// Close stops listening and closes all open connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is a single blocking byte stream to one server.
// Read and Write apply the configured timeout as deadline. Nothing is retried.
type IRPCClientTransport interface {
	// Connect opens the connection with the given configuration
	Connect(config common.ClientConfig) error
	// Read reads from the connection (see io.Reader)
	Read(p []byte) (n int, err error)
	// Write writes to the connection (see io.Writer)
	Write(p []byte) (n int, err error)
	// Close closes the connection
	Close() error
}
