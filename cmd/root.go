package cmd

import (
	"fmt"
	"github.com/ValentinKolb/riakpbc/cmd/bucket"
	"github.com/ValentinKolb/riakpbc/cmd/kv"
	"github.com/ValentinKolb/riakpbc/cmd/node"
	"github.com/ValentinKolb/riakpbc/cmd/serve"
	"github.com/ValentinKolb/riakpbc/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "riakpbc",
		Short: "protocol buffers client for Riak KV",
		Long: fmt.Sprintf(`riakpbc (v%s)

A client for the Riak KV protocol buffers interface written in Go,
with an in-memory development server speaking the same protocol.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of riakpbc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("riakpbc v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(bucket.BucketCommands)
	RootCmd.AddCommand(node.NodeCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "config"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("optional config file (yaml, toml, json) with flag names as keys"))

	// the config file is read before any command binds its flags
	_ = viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
