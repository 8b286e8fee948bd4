// Package server implements an in-memory PBC server for development and tests.
// It speaks the same frames as a store node and keeps all data in a local store.
//
// The package focuses on:
//   - Routing request frames to adapters by their message code
//   - Adapter pattern to decouple the store semantics from the framing
//   - Streaming list keys responses in batches
//   - Per connection state (client ids)
//
// Key Components:
//
//   - IRPCServerAdapter: Interface of all adapters. An adapter names the operations it
//     handles and answers each request through a Responder.
//
//   - NewIStoreServerAdapter: Adapter for the object and bucket operations, translating
//     requests to store.IStore calls. Siblings are kept for buckets with allow_mult.
//
//   - NewNodeServerAdapter: Adapter for ping, client ids and server info.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Endpoint:          "127.0.0.1:8087",
//	  TimeoutSecond:     5,
//	  NodeName:          "dev@127.0.0.1",
//	  DefaultNVal:       3,
//	  ListKeysBatchSize: 1000,
//	  LogLevel:          "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewProtobufSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Every failed request is answered with an error frame and the connection stays open.
// Deleting a missing key is answered with error code 0 and the message "not found".
//
// Thread Safety:
//
//	Connections are served concurrently, the requests of one connection are handled
//	one at a time in arrival order. Serve should be called only once.
package server
