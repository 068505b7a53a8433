package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oksasatya/go-social-api/internal/container"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <userID>",
	Short: "Print a signed bearer token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newServices(cmd.Context())
		defer cleanup()
		if err != nil {
			return err
		}
		res, err := svc.Auth.IssueToken(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		cmd.Println(res.Token)
		cmd.PrintErrf("expires %s (ttl %s)\n", res.ExpiresAt.Format(time.RFC3339), container.GetConfig().JWTTTL)
		return nil
	},
}
