package main

import (
	"context"
	"fmt"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/database"
	"flex-design-backend/internal/env"
	"flex-design-backend/internal/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "flexctl",
	Short:         "Operator tasks for the Flex Design backend: tables, wipes, admin accounts",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var siteConfigPath string

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&siteConfigPath, "site-config", env.Get(env.SiteConfigPath), "path to the site YAML (embedded default when empty)")

	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(adminCmd)
}

// toolkit is what every subcommand needs: a DynamoDB handle, the site config
// and a console logger.
type toolkit struct {
	db   *database.Database
	site *config.Site
	log  *logger.Logger
}

func newToolkit(ctx context.Context) (*toolkit, error) {
	if err := env.Require(env.AWSRegion); err != nil {
		return nil, err
	}
	log, err := logger.New(env.GetOrDefault(env.LogMode, "dev"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	site, err := config.Load(siteConfigPath)
	if err != nil {
		return nil, err
	}
	db, err := database.NewDatabase(ctx, database.ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	return &toolkit{db: db, site: site, log: log}, nil
}
