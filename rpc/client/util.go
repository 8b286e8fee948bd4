package client

import (
	"errors"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
	"github.com/ValentinKolb/riakpbc/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger(common.LoggerClient)
)

// maxRetainedBuffer is the largest frame buffer kept between two requests
const maxRetainedBuffer = 1 << 20 // 1 MB

// rpcClientAdapter stores all data needed to run the protocol on one connection.
// It is embedded by the client facade.
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
	limits     frame.Limits

	// reused between requests, decoded payloads never alias them
	writeBuf []byte
	readBuf  []byte

	// set by the first error that leaves the stream out of sync, fails all later calls
	broken error
}

func newRPCClientAdapter(config common.ClientConfig, t transport.IRPCClientTransport, s serializer.IRPCSerializer) rpcClientAdapter {
	return rpcClientAdapter{
		config:     config,
		transport:  t,
		serializer: s,
		limits:     frame.Limits{MaxBodyBytes: config.FrameLimit()},
	}
}

// keep returns buf if it is small enough to be retained for the next request
func keep(buf []byte) []byte {
	if cap(buf) > maxRetainedBuffer {
		return nil
	}
	return buf
}

// breaks reports whether err leaves unread or unanswered bytes on the connection.
// Server errors and payload decode errors consume the whole frame and do not count.
func breaks(err error) bool {
	return errors.Is(err, common.ErrTransport) ||
		errors.Is(err, common.ErrMalformedFrame) ||
		errors.Is(err, common.ErrShortRead)
}

// checkBroken marks the connection as broken if err desynchronized it and closes the transport.
// It returns err unchanged.
func (a *rpcClientAdapter) checkBroken(err error) error {
	if err == nil || a.broken != nil || !breaks(err) {
		return err
	}
	a.broken = err
	if cerr := a.transport.Close(); cerr != nil {
		Logger.Warningf("Failed to close broken connection: %v", cerr)
	}
	Logger.Warningf("Connection is broken and was closed: %v", err)
	return err
}

// usable returns the error all calls fail with once the connection is broken
func (a *rpcClientAdapter) usable() error {
	if a.broken != nil {
		return common.TransportError("connection broken", a.broken)
	}
	return nil
}
