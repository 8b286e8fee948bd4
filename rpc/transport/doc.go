// Package transport defines the byte stream abstractions the PBC client and the development
// server run on. The protocol itself (framing, payloads) lives above this layer, a transport
// only moves bytes and applies deadlines.
//
// Key Components:
//
//   - IRPCClientTransport: a single blocking connection with Read and Write. The client
//     executor writes a complete frame and reads the answer through it. There is no request
//     multiplexing, no pooling and no retry.
//
//   - IRPCServerTransport: accepts connections and hands every request frame to a
//     ServerHandleFunc, sequentially per connection. The handler answers through a ReplyFunc
//     that may be called several times for streamed responses.
//
// Implementations are found in the tcp and unix packages, both built on the base package.
package transport
