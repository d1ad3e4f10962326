package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carepoint/intake/internal/config"
	"github.com/carepoint/intake/internal/domain/provider"
	"github.com/carepoint/intake/internal/platform/db"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "Insert or update providers from a YAML file, matched by email",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			entries, err := provider.LoadSeedFile(file)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return seedProviders(cmd, cfg, entries)
		},
	}
	providersCmd.Flags().StringP("file", "f", "seed/providers.yaml", "Provider seed file")
	cmd.AddCommand(providersCmd)

	return cmd
}

func seedProviders(cmd *cobra.Command, cfg *config.Config, entries []provider.SeedEntry) error {
	ctx := cmd.Context()
	logger := newLogger(cfg, os.Stderr)
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := provider.NewService(provider.NewRepo(pool), db.NewTxRunner(pool))
	n, err := svc.Seed(ctx, entries)
	if err != nil {
		return fmt.Errorf("seed providers: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d provider(s).\n", n)
	return nil
}
