// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"

	"codeberg.org/oliverandrich/mylife/internal/config"
	"codeberg.org/oliverandrich/mylife/internal/database"
	"codeberg.org/oliverandrich/mylife/internal/server"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// A missing .env is normal in production.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("reading .env: %v", err)
	}

	cmd := &cli.Command{
		Name:    "mylife",
		Usage:   "Personal task list",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Manage the database schema (opening the database applies pending migrations)",
				Commands: []*cli.Command{
					migrateCommand("status", "Show the state of every migration", database.MigrateStatus),
					migrateCommand("down", "Roll back the latest migration", database.MigrateDown),
					migrateCommand("reset", "Roll back all migrations", database.MigrateReset),
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrateCommand(name, usage string, run func(*sqlx.DB) error) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := config.NewFromCLI(cmd)
			db, err := database.Open(cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := run(db); err != nil {
				return fmt.Errorf("migrate %s: %w", name, err)
			}
			version, err := database.Version(db)
			if err != nil {
				return err
			}
			slog.Info("schema_version", "version", version)
			return nil
		},
	}
}
