// Package rpc groups the protocol buffers client (PBC) stack. A request travels top down
// through the subpackages and its response bottom up:
//
//   - client: riak.IClient implementation. Builds request payloads, runs them through the
//     executor and maps responses back to lib/riak types. List keys is exposed as an iterator.
//
//   - pb: Hand written protobuf codecs of the Rpb* messages (protowire based).
//
//   - serializer: IRPCSerializer, encodes pb messages into frame bodies and back.
//
//   - frame: The 5 byte frame header (length, message code) and whole frame reads and writes.
//
//   - transport: One blocking byte stream per client (TCP or Unix sockets) and the accept loop
//     of the development server.
//
//   - server: In-memory development server answering every request code.
//
//   - common: Message codes, the operation table, errors, configuration and logging.
package rpc
