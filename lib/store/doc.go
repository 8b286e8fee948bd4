// Package store defines the storage interface of the development server: buckets of keys,
// each key holding a vclock and one or more sibling contents.
//
// Key Components:
//
//   - IStore Interface: get, put, delete and listing of keys, and the bucket properties
//     that control sibling handling. Put implements the write semantics of the store:
//     with AllowMultiple a write based on an outdated (or no) vclock adds a sibling, a
//     write based on the current vclock replaces all siblings. Without AllowMultiple the
//     last write wins.
//
//   - Error System: typed return codes with a message. The server forwards them as error
//     responses with the code as errcode.
//
// Implementations:
//
//	The in-memory implementation lives in the "github.com/ValentinKolb/riakpbc/lib/store/lstore"
//	package.
package store
