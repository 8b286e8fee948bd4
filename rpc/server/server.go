package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/ValentinKolb/riakpbc/lib/store"
	"github.com/ValentinKolb/riakpbc/lib/store/lstore"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
	"github.com/ValentinKolb/riakpbc/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"net/http"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"
)

var Logger = logger.GetLogger(common.LoggerServer)

// DefaultNVal is the n_val of buckets if the config does not set one
const DefaultNVal = 3

// NewRPCServer creates a new in-memory PBC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewProtobufSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	if config.DefaultNVal == 0 {
		config.DefaultNVal = DefaultNVal
	}

	return &rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		adapters:   make(map[common.Operation]IRPCServerAdapter),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer

	store    store.IStore
	node     *NodeServerAdapter
	adapters map[common.Operation]IRPCServerAdapter

	mu          sync.Mutex
	metricsHTTP *http.Server
}

// registerAdapter routes all operations of an adapter to it
func (s *rpcServer) registerAdapter(adapter IRPCServerAdapter) {
	for _, op := range adapter.Operations() {
		s.adapters[op] = adapter
	}
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(s.handle, s.node.ConnectionClosed)
}

// handle answers one request frame. Only a failed write is returned, it closes the connection.
func (s *rpcServer) handle(connID uint64, req frame.Frame, reply transport.ReplyFunc) error {
	op, spec, ok := common.OperationForRequest(req.Code)
	if !ok {
		Logger.Warningf("conn %d: unknown request code %d", connID, uint8(req.Code))
		resp := &Responder{serializer: s.serializer, reply: reply}
		return resp.Error(errCodeInvalidRequest, fmt.Sprintf("unknown message code: %d", uint8(req.Code)))
	}

	resp := &Responder{spec: spec, serializer: s.serializer, reply: reply}
	adapter, ok := s.adapters[op]
	if !ok {
		return resp.Error(errCodeInvalidRequest, fmt.Sprintf("unsupported operation: %s", op))
	}

	start := time.Now()
	err := adapter.Handle(&Request{ConnID: connID, Op: op, Body: req.Body}, resp)

	metrics.GetOrCreateCounter(fmt.Sprintf(`riakpbc_server_requests_total{op=%q}`, spec.Name)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`riakpbc_server_request_duration_seconds{op=%q}`, spec.Name)).UpdateDuration(start)
	if resp.failed {
		metrics.GetOrCreateCounter(fmt.Sprintf(`riakpbc_server_errors_total{op=%q}`, spec.Name)).Inc()
	}
	if err != nil {
		Logger.Warningf("conn %d: failed to answer %s: %v", connID, op, err)
	}
	return err
}

func (s *rpcServer) init() error {

	// Init logger
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	Logger.Infof("Created PBC Server")
	Logger.Infof(s.config.String())

	// Create the store and the adapters serving it
	s.store = lstore.NewLocalStore(riak.BucketProperties{
		NValue:        s.config.DefaultNVal,
		AllowMultiple: s.config.DefaultAllowMult,
	})
	s.node = NewNodeServerAdapter(s.config, s.serializer)
	s.registerAdapter(s.node)
	s.registerAdapter(NewIStoreServerAdapter(s.store, s.serializer, s.config.ListKeysBatchSize))

	// Expose metrics
	if s.config.MetricsEndpoint != "" {
		s.startMetrics()
	}

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// startMetrics serves the prometheus metrics of the process over http
func (s *rpcServer) startMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	s.mu.Lock()
	s.metricsHTTP = &http.Server{Addr: s.config.MetricsEndpoint, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	srv := s.metricsHTTP
	s.mu.Unlock()

	go func() {
		Logger.Infof("Serving metrics on http://%s/metrics", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("metrics endpoint failed: %v", err)
		}
	}()
}

// Serve starts the PBC server
// This function will also initialize the store and start the transport layer.
// It blocks until Close is called.
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close stops the transport and the metrics endpoint
func (s *rpcServer) Close() error {
	s.mu.Lock()
	srv := s.metricsHTTP
	s.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return s.transport.Close()
}
