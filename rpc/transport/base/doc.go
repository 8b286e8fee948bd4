// Package base provides the medium independent part of the transports (TCP, Unix sockets).
// Protocol specific behavior is injected through connectors.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     (dialing, listening and socket options).
//
//   - clientTransport: one blocking connection. Every Read and Write first sets a deadline
//     of TimeoutSecond, so a stalled server surfaces as an error of the in-flight call.
//     Errors of the connection are returned as they are, the frame layer classifies them.
//     There is no reconnect and no retry.
//
//   - serverTransport: accepts connections and runs one goroutine per connection. Requests
//     of a connection are handled strictly one after the other, which is what the PBC
//     protocol requires since responses carry no request id. Request bodies are read into
//     buffers taken from a sync.Pool.
//
// Thread Safety:
//
//	The client transport is not safe for concurrent use, a PBC connection carries one
//	request at a time. The server transport may be closed from any goroutine.
package base
