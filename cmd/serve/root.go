package serve

import (
	"fmt"
	"github.com/ValentinKolb/riakpbc/cmd/util"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
	"github.com/ValentinKolb/riakpbc/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the in-memory development server",
		Long:    `Start an in-memory server speaking the protocol buffers protocol. All data is lost on exit. The configuration can be set via command line flags or environment variables. The format of the environment variables is RIAKPBC_<flag> (e.g. RIAKPBC_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "endpoint"
	ServeCmd.Flags().String(key, "0.0.0.0:8087", util.WrapString("The address on which the server will listen (e.g. localhost:8087, /tmp/riakpbc.sock, ...)"))

	key = "timeout"
	ServeCmd.Flags().Int64(key, 30, util.WrapString("Deadline in seconds for reading a started request and writing a response"))

	key = "max-frame-size"
	ServeCmd.Flags().Int(key, 0, util.WrapString("The largest request body accepted (in bytes, 0 uses the default of 64 MB)"))

	key = "node-name"
	ServeCmd.Flags().String(key, "dev@127.0.0.1", util.WrapString("Node name reported by server info"))

	key = "server-version"
	ServeCmd.Flags().String(key, "riakpbc-dev", util.WrapString("Server version reported by server info"))

	key = "n-val"
	ServeCmd.Flags().Uint32(key, server.DefaultNVal, util.WrapString("Default n_val of buckets"))

	key = "allow-mult"
	ServeCmd.Flags().Bool(key, false, util.WrapString("Whether buckets keep concurrent writes as siblings by default"))

	key = "list-keys-batch"
	ServeCmd.Flags().Int(key, server.DefaultListKeysBatchSize, util.WrapString("Number of keys per list keys response frame"))

	key = "metrics-endpoint"
	ServeCmd.Flags().String(key, "", util.WrapString("Address of the http endpoint exposing prometheus metrics at /metrics (disabled if empty)"))

	key = "log-level"
	ServeCmd.Flags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "transport-write-buffer"
	ServeCmd.Flags().Int(key, 0, util.WrapString("The size of the socket write buffer (in KB, 0 keeps the system default)"))

	key = "transport-read-buffer"
	ServeCmd.Flags().Int(key, 0, util.WrapString("The size of the socket read buffer (in KB, 0 keeps the system default)"))

	key = "transport-tcp-nodelay"
	ServeCmd.Flags().Bool(key, true, util.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	ServeCmd.Flags().Int(key, 0, util.WrapString("The keepalive interval (in seconds, only for tcp)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MaxFrameBytes = viper.GetInt("max-frame-size")
	serveCmdConfig.NodeName = viper.GetString("node-name")
	serveCmdConfig.ServerVersion = viper.GetString("server-version")
	serveCmdConfig.DefaultNVal = viper.GetUint32("n-val")
	serveCmdConfig.DefaultAllowMult = viper.GetBool("allow-mult")
	serveCmdConfig.ListKeysBatchSize = viper.GetInt("list-keys-batch")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
		},
	}

	if serveCmdConfig.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if serveCmdConfig.DefaultNVal == 0 {
		return fmt.Errorf("n-val must be at least 1")
	}
	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	return nil
}

// run starts the development server and stops it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	t, err := util.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		serializer.NewProtobufSerializer(),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		<-sig
		_ = serv.Close()
	}()

	return serv.Serve()
}
