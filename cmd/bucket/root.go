package bucket

import (
	"fmt"
	"github.com/ValentinKolb/riakpbc/cmd/util"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcClient riak.IClient

	// BucketCommands represents the bucket command group
	BucketCommands = &cobra.Command{
		Use:               "bucket",
		Short:             "Read and change bucket properties",
		PersistentPreRunE: setupBucketClient,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if rpcClient == nil {
				return nil
			}
			return rpcClient.Close()
		},
	}

	getCmd = &cobra.Command{
		Use:   "get [bucket]",
		Short: "Prints the properties of a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := rpcClient.FetchBucketProperties(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("bucket=%s n_val=%d allow_mult=%t\n", args[0], props.NValue, props.AllowMultiple)
			return nil
		},
	}

	setCmd = &cobra.Command{
		Use:   "set [bucket]",
		Short: "Sets the properties of a bucket",
		Long:  "Sets the properties of a bucket. Properties without flag keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// both properties are always sent, start from the current ones
			props, err := rpcClient.FetchBucketProperties(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("n-val") {
				props.NValue = viper.GetUint32("n-val")
			}
			if cmd.Flags().Changed("allow-mult") {
				props.AllowMultiple = viper.GetBool("allow-mult")
			}
			if err := rpcClient.SetBucketProperties(args[0], props); err != nil {
				return err
			}
			fmt.Printf("bucket=%s n_val=%d allow_mult=%t\n", args[0], props.NValue, props.AllowMultiple)
			return nil
		},
	}
)

func init() {
	util.SetupRPCClientFlags(BucketCommands)

	setCmd.Flags().Uint32("n-val", 3, util.WrapString("Number of replicas of every key"))
	setCmd.Flags().Bool("allow-mult", false, util.WrapString("Keep concurrent writes as siblings"))

	BucketCommands.AddCommand(getCmd)
	BucketCommands.AddCommand(setCmd)
}

func setupBucketClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	var err error
	rpcClient, err = util.NewClient()
	return err
}
