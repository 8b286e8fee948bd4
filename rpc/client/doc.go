// Package client implements the PBC client: the protocol executor that exchanges frames with
// one node, and the facade implementing riak.IClient on top of it.
//
// Key Components:
//
//   - NewRPCClient: connects a transport and returns a riak.IClient.
//
//   - execute: the request/response exchange. The request is serialized behind a reserved
//     header and written as one frame. The answer is either the expected response code,
//     which is decoded into the response payload, or an error frame, which is returned as
//     *common.ServerError without touching the response payload. Any other code is
//     common.ErrMalformedFrame, a body cut short is common.ErrShortRead.
//
//   - responseStream: the streaming variant used by list keys. One request is followed by
//     frames until one carries the done flag; no read happens after it. StreamKeys exposes
//     the batches as an iterator, ListKeys collects them.
//
// Operations are resolved through common.Operations, which maps every operation to its
// request and response codes.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport:     common.ClientTransportConfig{Endpoint: "localhost:8087"},
//	}
//	c, err := client.NewRPCClient(config, tcp.NewTCPClientTransport(), serializer.NewProtobufSerializer())
//	if err != nil {
//	  return err
//	}
//	defer c.Close()
//
//	res, err := c.Fetch("users", "alice", riak.QuorumDefault, 0)
//
//	for batch, err := range c.StreamKeys("users") {
//	  ...
//	}
//
// Metrics:
//
//	Every request is counted in the default VictoriaMetrics set:
//	riakpbc_requests_total{op}, riakpbc_errors_total{op,kind} and the histogram
//	riakpbc_request_duration_seconds{op}.
//
// Thread Safety:
//
//	A client owns one connection with one request in flight and has no internal locking.
//	Use one client per goroutine. Failed connections are not repaired, create a new client.
package client
