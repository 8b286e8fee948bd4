package node

import (
	"encoding/hex"
	"fmt"
	"github.com/ValentinKolb/riakpbc/cmd/util"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/spf13/cobra"
	"time"
)

var (
	rpcClient riak.IClient

	// NodeCommands represents the node command group
	NodeCommands = &cobra.Command{
		Use:               "node",
		Short:             "Node level operations",
		PersistentPreRunE: setupNodeClient,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if rpcClient == nil {
				return nil
			}
			return rpcClient.Close()
		},
	}

	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if err := rpcClient.Ping(); err != nil {
				return err
			}
			fmt.Printf("pong (%s)\n", time.Since(start))
			return nil
		},
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints the node name and server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rpcClient.ServerInfo()
			if err != nil {
				return err
			}
			fmt.Printf("node=%s version=%s\n", info.Node, info.ServerVersion)
			return nil
		},
	}

	clientIDCmd = &cobra.Command{
		Use:   "client-id [hex]",
		Short: "Prints the client id of the connection, or sets it first if given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := util.ParseHex("client id", args[0])
				if err != nil {
					return err
				}
				if err := rpcClient.SetClientID(id); err != nil {
					return err
				}
			}
			id, err := rpcClient.ClientID()
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(id))
			return nil
		},
	}
)

func init() {
	util.SetupRPCClientFlags(NodeCommands)

	NodeCommands.AddCommand(pingCmd)
	NodeCommands.AddCommand(infoCmd)
	NodeCommands.AddCommand(clientIDCmd)
}

func setupNodeClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	var err error
	rpcClient, err = util.NewClient()
	return err
}
