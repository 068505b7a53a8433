package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage the Elasticsearch user index",
}

var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Copy every stored profile into the user index",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newServices(cmd.Context())
		defer cleanup()
		if err != nil {
			return err
		}
		if svc.Profiles == nil {
			return errors.New("elasticsearch is not configured or unreachable (ELASTICSEARCH_ADDRS)")
		}
		n, err := svc.Profiles.Reindex(cmd.Context())
		if err != nil {
			return fmt.Errorf("reindexing after %d users: %w", n, err)
		}
		cmd.Printf("Indexed %d users\n", n)
		return nil
	},
}
