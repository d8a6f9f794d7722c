package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"curia-backend/internal/config"
	"curia-backend/internal/schema"
	"curia-backend/internal/store"
)

const programName = "curia-backend"

var (
	configFile string
	cfg        *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Province registry API for apostolates, curia advisors and scholastics",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context())
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ./app.yaml)")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(seedCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// openStore connects to the configured database and brings system and
// domain tables up to date.
func openStore(ctx context.Context) (*store.Store, error) {
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap system tables: %w", err)
	}
	if err := schema.Migrate(db.ORM); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate domain tables: %w", err)
	}
	log.Printf("Database ready (driver: %s)", db.Driver())
	return db, nil
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update system and domain tables, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			db.Close()
			return nil
		},
	}
}
