// Package cmd implements the command-line interface of riakpbc. It provides a
// hierarchical command structure for talking to a store node and for running the
// in-memory development server.
//
// The package is organized into several subpackages:
//
//   - kv: Object operations (get, put, del, keys, buckets) and the perf benchmark
//   - bucket: Reading and changing bucket properties
//   - node: Ping, server info and client ids
//   - serve: Starting and configuring the development server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See riakpbc -help for a list of all commands.
package cmd
