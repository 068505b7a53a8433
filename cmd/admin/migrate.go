package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/infrastructure/postgres/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres schema",
}

func openMigrationDB() (*sql.DB, error) {
	cfg := config.Load()
	db, err := migrations.Open(cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return db, nil
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrationDB()
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := migrations.Up(db)
		if err != nil {
			return fmt.Errorf("migrating up: %w", err)
		}
		if !applied {
			cmd.Println("Schema already up to date.")
			return nil
		}
		cmd.Println("Migrations applied.")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrationDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Down(db); err != nil {
			return fmt.Errorf("migrating down: %w", err)
		}
		cmd.Println("Rolled back one migration.")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrationDB()
		if err != nil {
			return err
		}
		defer db.Close()

		v, dirty, err := migrations.Version(db)
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		if dirty {
			cmd.Printf("Version: %d (dirty)\n", v)
			return nil
		}
		cmd.Printf("Version: %d\n", v)
		return nil
	},
}
