package root

import (
	"fmt"
	"log/slog"

	"github.com/anbusan19/nominal/cmd/migrate"
	"github.com/anbusan19/nominal/config"
	"github.com/anbusan19/nominal/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nominal",
	Short: "ENS-native payroll coordination backend",
}

func GetRootCmd(config *config.Config, logger *slog.Logger) *cobra.Command {
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.DB.User,
		config.DB.Password,
		config.DB.Host,
		config.DB.Port,
		config.DB.DBName,
		config.DB.SSLMode)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			server.RunServer(config, logger)
		},
	})

	rootCmd.AddCommand(migrate.GetMigrateCmd(dbURL))

	return rootCmd
}
