package db

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/document"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	queryCmd = &cobra.Command{
		Use:   "query [namespace] [filter]",
		Short: "Queries a namespace and prints all matching documents",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := args[0]
			filter, err := parseFilter(args)
			if err != nil {
				return err
			}

			cur, err := dbClient.Query(
				ns,
				filter,
				int32(viper.GetInt("limit")),
				int32(viper.GetInt("skip")),
				nil,
				queryOptions(),
			)
			if err != nil {
				return err
			}
			defer func() { _ = cur.Close() }()

			count := 0
			for {
				more, err := cur.More()
				if err != nil {
					return err
				}
				if !more {
					break
				}
				doc, err := cur.NextSafe()
				if err != nil {
					return err
				}
				if err := printDocument(doc); err != nil {
					return err
				}
				count++
			}
			fmt.Printf("ns=%s, matched=%d\n", ns, count)
			return nil
		},
	}
	findOneCmd = &cobra.Command{
		Use:   "findone [namespace] [filter]",
		Short: "Queries a namespace and prints the first matching document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := args[0]
			filter, err := parseFilter(args)
			if err != nil {
				return err
			}

			doc, err := dbClient.FindOne(ns, filter, nil, queryOptions())
			if err != nil {
				return err
			}
			return printDocument(doc)
		},
	}
	isMasterCmd = &cobra.Command{
		Use:   "ismaster",
		Short: "Asks the server whether it is the master node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbConn == nil {
				return fmt.Errorf("ismaster requires a single server address, not a pair")
			}
			isMaster, info, err := dbConn.IsMaster()
			if err != nil {
				return err
			}
			fmt.Printf("master=%t\n", isMaster)
			return printDocument(info)
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{queryCmd, findOneCmd} {
		cmd.Flags().Int("limit", 0, "Maximum number of documents to return (0 = no limit)")
		cmd.Flags().Int("skip", 0, "Number of matching documents to skip")
		cmd.Flags().Bool("tailable", false, "Keep the cursor open after the last result")
		cmd.Flags().Bool("slaveok", false, "Allow the query to be served by a non-master node")
	}
}

// parseFilter decodes the optional JSON filter argument, empty means match all
func parseFilter(args []string) (document.Document, error) {
	if len(args) < 2 {
		return document.Document{}, nil
	}
	var filter document.Document
	if err := json.Unmarshal([]byte(args[1]), &filter); err != nil {
		return nil, fmt.Errorf("filter must be a JSON object: %w", err)
	}
	return filter, nil
}

// queryOptions assembles the wire option bits from the bound flags
func queryOptions() int32 {
	var opts int32
	if viper.GetBool("tailable") {
		opts |= common.OptionTailable
	}
	if viper.GetBool("slaveok") {
		opts |= common.OptionSlaveOk
	}
	return opts
}

// printDocument renders a document as one JSON line
func printDocument(doc document.Document) error {
	out, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
