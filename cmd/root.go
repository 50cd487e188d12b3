package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dDoc/cmd/db"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ddoc",
		Short: "document database client",
		Long: fmt.Sprintf(`dDoc (v%s)

A client driver and command line shell for the document database's binary
wire protocol, with replica-pair failover support.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dDoc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dDoc v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(db.DBCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
