package client

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"time"
)

// Kinds of failed requests reported in riakpbc_errors_total
const (
	errKindTransport = "transport"
	errKindFrame     = "frame"
	errKindServer    = "server"
	errKindDecode    = "decode"
)

// errorKind classifies a failed request. A short read caused by the connection counts as transport.
func errorKind(err error) string {
	switch {
	case errors.Is(err, common.ErrTransport):
		return errKindTransport
	case errors.Is(err, common.ErrMalformedFrame), errors.Is(err, common.ErrShortRead):
		return errKindFrame
	default:
		if _, ok := common.IsServerError(err); ok {
			return errKindServer
		}
		return errKindDecode
	}
}

// observe records one finished request in the default metrics set
func observe(op string, start time.Time, err error) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`riakpbc_requests_total{op=%q}`, op)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`riakpbc_request_duration_seconds{op=%q}`, op)).Update(time.Since(start).Seconds())
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`riakpbc_errors_total{op=%q,kind=%q}`, op, errorKind(err))).Inc()
	}
}
