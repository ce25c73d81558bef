package main

import (
	"fmt"

	"github.com/fekuna/blueice-inventory-service/migrations"
	"github.com/fekuna/blueice-inventory-service/pkg/database/postgres"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *postgres.Migrator) error { return m.Up() })
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps < 1 {
						return fmt.Errorf("--steps must be at least 1")
					}
					return withMigrator(func(m *postgres.Migrator) error { return m.Down(steps) })
				},
			},
			{
				Name:  "version",
				Usage: "print the applied schema version",
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *postgres.Migrator) error {
						v, dirty, err := m.Version()
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "version %d (dirty: %t)\n", v, dirty)
						return nil
					})
				},
			},
		},
	}
}

func withMigrator(run func(m *postgres.Migrator) error) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	db, err := connectPostgres(cfg)
	if err != nil {
		return err
	}

	m, err := postgres.NewMigrator(db, migrations.FS)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	if err := run(m); err != nil {
		return err
	}
	appLogger.Info("migration finished", zap.String("db_name", cfg.Postgres.DBName))
	return nil
}
