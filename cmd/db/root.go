package db

import (
	"github.com/ValentinKolb/dDoc/cmd/util"
	"github.com/ValentinKolb/dDoc/driver/client"
	"github.com/spf13/cobra"
)

var (
	dbClient client.IDBClient
	dbConn   *client.Conn // set for single-server connections only

	// DBCommands represents the database command group
	DBCommands = &cobra.Command{
		Use:               "db",
		Short:             "Perform document database operations",
		PersistentPreRunE: setupDBClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common driver flags to the db command
	util.SetupClientFlags(DBCommands)

	// Add subcommands
	DBCommands.AddCommand(queryCmd)
	DBCommands.AddCommand(findOneCmd)
	DBCommands.AddCommand(isMasterCmd)
}

// setupDBClient connects to the configured server or replica pair
func setupDBClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	dbClient, dbConn, err = util.GetClient()
	return err
}
