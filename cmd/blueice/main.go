package main

import (
	"fmt"
	"os"

	"github.com/fekuna/blueice-inventory-service/config"
	"github.com/fekuna/blueice-inventory-service/pkg/database/postgres"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "blueice",
		Usage: "bottle inventory, wallet ledger and route sequencing service",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			optimizeRouteCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the logger every command shares.
func bootstrap() (*config.Config, logger.ZapLogger, error) {
	_ = godotenv.Load() // Load .env file if it exists

	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, nil, err
	}

	logConfig := &logger.ZapLoggerConfig{
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
	}

	return cfg, logger.NewZapLogger(logConfig), nil
}

func connectPostgres(cfg *config.Config) (*sqlx.DB, error) {
	return postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
	})
}
