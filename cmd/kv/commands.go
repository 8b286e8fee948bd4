package kv

import (
	"encoding/hex"
	"fmt"
	"github.com/ValentinKolb/riakpbc/cmd/util"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
	"time"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [bucket] [key]",
		Short: "Fetches a key and prints all siblings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := util.GetQuorum("r")
			if err != nil {
				return err
			}
			pr, err := util.GetQuorum("pr")
			if err != nil {
				return err
			}
			res, err := rpcClient.Fetch(args[0], args[1], r, pr)
			if err != nil {
				return err
			}
			printFetch(res)
			return nil
		},
	}
	putCmd = &cobra.Command{
		Use:   "put [bucket] [key] [value]",
		Short: "Stores a value (an empty key lets the server generate one)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj := riak.NewObject(args[0], args[1], []byte(args[2]))

			vclock, err := util.ParseHex("vclock", viper.GetString("vclock"))
			if err != nil {
				return err
			}
			obj.Version.VClock = vclock
			obj.Content.Metadata.ContentType = viper.GetString("content-type")

			meta, err := util.ParsePairs(viper.GetStringSlice("meta"))
			if err != nil {
				return err
			}
			obj.Content.Metadata.UserMeta = meta

			params := riak.StoreParams{ReturnBody: viper.GetBool("return-body")}
			if params.W, err = util.GetQuorum("w"); err != nil {
				return err
			}
			if params.DW, err = util.GetQuorum("dw"); err != nil {
				return err
			}

			res, err := rpcClient.Store(obj, params)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Println("stored successfully")
				return nil
			}
			printFetch(res)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [bucket] [key]",
		Short: "Deletes a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rw, err := util.GetQuorum("rw")
			if err != nil {
				return err
			}
			vclock, err := util.ParseHex("vclock", viper.GetString("vclock"))
			if err != nil {
				return err
			}
			version := riak.Version{Key: riak.Key{Bucket: args[0], Key: args[1]}, VClock: vclock}
			if err := rpcClient.DeleteVClock(version, rw); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys [bucket]",
		Short: "Lists the keys of a bucket as they are streamed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 0
			for batch, err := range rpcClient.StreamKeys(args[0]) {
				if err != nil {
					return err
				}
				for _, k := range batch {
					fmt.Println(k)
				}
				n += len(batch)
			}
			fmt.Printf("(%d keys)\n", n)
			return nil
		},
	}
	bucketsCmd = &cobra.Command{
		Use:   "buckets",
		Short: "Lists all buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets, err := rpcClient.ListBuckets()
			if err != nil {
				return err
			}
			for _, b := range buckets {
				fmt.Println(b)
			}
			return nil
		},
	}
)

func init() {
	getCmd.Flags().String("r", "", util.WrapString("Read quorum (one, quorum, all, default or a number)"))
	getCmd.Flags().String("pr", "", util.WrapString("Primary read quorum"))

	putCmd.Flags().String("vclock", "", util.WrapString("Hex encoded vclock of the version the value replaces"))
	putCmd.Flags().String("content-type", "", util.WrapString("Content type of the value"))
	putCmd.Flags().StringSlice("meta", nil, util.WrapString("User metadata as key=value (repeatable)"))
	putCmd.Flags().String("w", "", util.WrapString("Write quorum"))
	putCmd.Flags().String("dw", "", util.WrapString("Durable write quorum"))
	putCmd.Flags().Bool("return-body", false, util.WrapString("Print the stored state of the key"))

	delCmd.Flags().String("rw", "", util.WrapString("Delete quorum"))
	delCmd.Flags().String("vclock", "", util.WrapString("Hex encoded vclock of the version to delete"))
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// printFetch prints the state of a key with every sibling
func printFetch(res *riak.FetchResult) {
	fmt.Printf("key=%s state=%s vclock=%s\n", res.Version.Key, res.State(), hex.EncodeToString(res.Version.VClock))
	for i, c := range res.Contents {
		fmt.Printf("[%d] %s\n", i, c.Value)
		md := c.Metadata
		if md.ContentType != "" {
			fmt.Printf("    content-type: %s\n", md.ContentType)
		}
		if md.VTag != "" {
			fmt.Printf("    vtag: %s\n", md.VTag)
		}
		if t := md.LastModified(); !t.IsZero() {
			fmt.Printf("    last-modified: %s\n", t.Format(time.RFC3339))
		}
		if keys := md.UserMetaKeys(); len(keys) > 0 {
			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, k+"="+md.UserMeta[k])
			}
			fmt.Printf("    meta: %s\n", strings.Join(pairs, ", "))
		}
	}
}
