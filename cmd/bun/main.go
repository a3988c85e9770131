package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/racepack/app"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/config"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

type namedMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := app.OpenDB(cfg.Postgres.DSN)
	defer db.Close()

	var migrators []namedMigrator
	for _, set := range app.OrderedMigrations() {
		migrators = append(migrators, namedMigrator{name: set.Name, migrator: migrate.NewMigrator(db, set.Migrations)})
	}

	logger := observability.NewLogger(os.Stderr, cfg.Observability.LogLevel, "text")

	cliApp := &cli.App{
		Name: "bun",
		Commands: []*cli.Command{
			newMultiModuleDBCommand(migrators),
			{
				Name:  "up",
				Usage: "create migration tables, run River and module migrations",
				Action: func(c *cli.Context) error {
					return app.Migrate(c.Context, db, cfg.Postgres.DSN, logger)
				},
			},
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

func lookup(migrators []namedMigrator, name string) (*migrate.Migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %s", name)
}

func newMultiModuleDBCommand(migrators []namedMigrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					// Every module shares one bun_migrations table.
					return migrators[0].migrator.Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						group, err := m.migrator.Migrate(c.Context)
						if err != nil {
							return fmt.Errorf("module %s: %w", m.name, err)
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", m.name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group, newest module first",
				Action: func(c *cli.Context) error {
					for i := len(migrators) - 1; i >= 0; i-- {
						m := migrators[i]
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return fmt.Errorf("module %s: %w", m.name, err)
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					migrator, err := lookup(migrators, c.Args().First())
					if err != nil {
						return err
					}
					mf, err := migrator.CreateGoMigration(c.Context, strings.Join(c.Args().Tail(), "_"))
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", m.name)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}
