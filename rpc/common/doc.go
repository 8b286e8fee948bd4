// Package common provides core data structures and utilities shared across
// the PBC client, its transports and the development server. It defines the
// tag space of the protocol, configuration structures and protocol errors.
//
// The package focuses on:
//   - Message code definitions (the one byte tag of every frame)
//   - The operation table mapping each store capability to its request and response codes
//   - Configuration structures for client and server components
//   - Protocol level errors (transport, framing, server reported)
//   - Custom logging implementation integrated with Dragonboat's logger facade
//
// Key Components:
//
//   - MessageCode: Enumeration of all frame tags. MsgErrorResp is reserved, its body
//     always decodes to an error and never to the expected response payload.
//
//   - Operations: Explicit table from Operation to OperationSpec (request code,
//     response code, streaming flag). The executor and the server resolve codes
//     through this table.
//
//   - ClientConfig / ServerConfig: Configuration for the client and the in-memory
//     development server, with String() printers used by the command line tools.
//
//   - ErrTransport, ErrMalformedFrame, ErrShortRead, ServerError: the protocol error
//     taxonomy. Sentinels are wrapped with %w so errors.Is keeps working.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's logger
//     factory and provides consistent formatting across the module.
package common
