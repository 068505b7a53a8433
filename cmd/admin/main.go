// Command admin runs operational tasks against a social API deployment.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/bootstrap"
	"github.com/oksasatya/go-social-api/internal/router"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Social API administration",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	userCmd.AddCommand(userCreateCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	mailCmd.AddCommand(mailTestCmd)
	searchCmd.AddCommand(searchReindexCmd)
	rootCmd.AddCommand(migrateCmd, userCmd, tokenCmd, mailCmd, searchCmd, smokeCmd)

	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().String("email", "", "login email")
	userCreateCmd.Flags().String("bio", "", "optional bio")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")

	mailTestCmd.Flags().String("to", "", "recipient")
	_ = mailTestCmd.MarkFlagRequired("to")

	smokeCmd.Flags().String("api", "http://localhost:5000/api", "API base URL")
}

// newServices loads config, connects the store and wires the application
// services. The caller must defer the returned cleanup.
func newServices(ctx context.Context) (router.Services, func(), error) {
	cfg := config.Load()
	// keep the CLI output readable; only warnings and errors are logged
	logger := helpers.NewLogger(cfg.AppName+"-admin", cfg.Env)
	logger.SetLevel(logrus.WarnLevel)

	cleanup, err := bootstrap.Init(ctx, cfg, logger)
	if err != nil {
		return router.Services{}, cleanup, fmt.Errorf("initializing: %w", err)
	}
	return router.BuildServices(), cleanup, nil
}
