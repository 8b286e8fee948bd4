package common

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultMaxFrameBytes caps the body size accepted from the wire
	DefaultMaxFrameBytes = 64 * 1024 * 1024 // 64 MB
)

// --------------------------------------------------------------------------
// Socket configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket options shared by all stream transports
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig holds the settings of the client side transport
type ClientTransportConfig struct {
	Endpoint string
	SocketConf
	TCPConf
}

// ServerTransportConfig holds the socket settings applied to accepted connections
type ServerTransportConfig struct {
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters of a PBC client.
type ClientConfig struct {
	// TimeoutSecond is applied as deadline to every read and write on the connection (0 = none)
	TimeoutSecond int
	// MaxFrameBytes limits the body size of a response frame (0 = DefaultMaxFrameBytes)
	MaxFrameBytes int
	// LogLevel is the level of the client loggers
	LogLevel  string
	Transport ClientTransportConfig
}

// FrameLimit returns the effective body size limit
func (c *ClientConfig) FrameLimit() int {
	if c.MaxFrameBytes > 0 {
		return c.MaxFrameBytes
	}
	return DefaultMaxFrameBytes
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.FrameLimit()))
	addField("Log Level", c.LogLevel)

	// Socket Settings
	addSection("Socket")
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))

	return sb.String()
}

// --------------------------------------------------------------------------
// Development server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the in-memory development server.
type ServerConfig struct {
	// Endpoint is the address the server listens on (host:port or socket path)
	Endpoint string
	// TimeoutSecond is applied as deadline to every read and write on a connection (0 = none)
	TimeoutSecond int64
	// MaxFrameBytes limits the body size of a request frame (0 = DefaultMaxFrameBytes)
	MaxFrameBytes int
	Transport     ServerTransportConfig

	// Identity reported by GetServerInfo
	NodeName      string
	ServerVersion string

	// Defaults for buckets that were never configured
	DefaultNVal      uint32
	DefaultAllowMult bool

	// ListKeysBatchSize is the number of keys sent per list keys frame
	ListKeysBatchSize int

	// MetricsEndpoint exposes prometheus metrics over http if set
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// FrameLimit returns the effective body size limit
func (c *ServerConfig) FrameLimit() int {
	if c.MaxFrameBytes > 0 {
		return c.MaxFrameBytes
	}
	return DefaultMaxFrameBytes
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// PBC settings
	addSection("PBC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.FrameLimit()))
	addField("Node", c.NodeName)
	addField("Version", c.ServerVersion)

	// Socket Settings
	addSection("Socket")
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))

	// Bucket defaults
	addSection("Bucket Defaults")
	addField("N Value", strconv.FormatUint(uint64(c.DefaultNVal), 10))
	addField("Allow Multiple", strconv.FormatBool(c.DefaultAllowMult))
	addField("List Keys Batch", strconv.Itoa(c.ListKeysBatchSize))

	// Observability
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	}

	return sb.String()
}
