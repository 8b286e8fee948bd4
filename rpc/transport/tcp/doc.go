// Package tcp implements the TCP transport of the PBC client and the development server.
// It provides the connectors for the base package and applies the socket options of
// common.SocketConf and common.TCPConf (no delay, keep-alive, linger and buffer sizes) to
// every connection.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// The default server buffer size is set to 512 KB, request bodies up to this size are read
// without allocation.
package tcp
