// Package frame implements the framing of the PBC wire protocol. Every message
// on the byte stream is prefixed by a fixed five byte header:
//
//	+--------+------+----------------+
//	| length | code | body           |
//	| 4B BE  | 1B   | length-1 bytes |
//	+--------+------+----------------+
//
// The length counts the code byte plus the body, so an empty body is announced
// with a length of one.
//
// Reading is strict: a header cut short is ErrMalformedFrame, a body cut short
// is ErrShortRead and a clean end of stream before the first header byte is
// ErrTransport. Bodies are never truncated or padded.
package frame
