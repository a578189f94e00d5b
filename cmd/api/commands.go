package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	appRepos "github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/bootstrap"
	"github.com/yigit/hobbysphere/internal/config"
	"github.com/yigit/hobbysphere/internal/db"
	"github.com/yigit/hobbysphere/internal/seed"
	"github.com/yigit/hobbysphere/internal/server"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML configuration file",
		EnvVars: []string{"HOBBYSPHERE_CONFIG"},
		Value:   bootstrap.DefaultConfigPath,
	}
}

func rootApp() *cli.App {
	return &cli.App{
		Name:  "hobbysphere",
		Usage: "Events, surveys, posts and a merged timeline for hobby communities",
		Description: `Serves the community API over HTTP and pushes change
		notifications over WebSocket.

		Storage is selected with storage.driver (memory, bolt or postgres).
		Settings can be overridden via environment variables, e.g.:

		storage.driver => STORAGE_DRIVER=postgres
		server.port => SERVER_PORT=8080
		`,
		Flags: []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			seedCmd(),
		},
		// serve is the default command
		Action: runServer,
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP API",
		Flags:  []cli.Flag{configFlag()},
		Action: runServer,
	}
}

func runServer(ctx *cli.Context) error {
	srv, err := server.NewServer(ctx.String("config"))
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	return srv.Run()
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Applies the SQL files in database.migrations_dir to the configured PostgreSQL database.`,
		Flags:       []cli.Flag{configFlag()},
		Action: func(ctx *cli.Context) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(ctx.String("config"))
			if err != nil {
				return err
			}

			database, err := db.NewPostgresDB(ctx.Context, cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close()

			return bootstrap.RunMigrations(ctx.Context, cfg, database, lgr)
		},
	}
}

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Usage:       "Insert sample events, surveys and posts",
		Description: `Writes sample data through the configured storage driver. Existing records are kept.`,
		Flags:       []cli.Flag{configFlag()},
		Action: func(ctx *cli.Context) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(ctx.String("config"))
			if err != nil {
				return err
			}
			if cfg.Storage.Driver == config.StorageDriverMemory {
				return fmt.Errorf("seeding the memory driver has no lasting effect; choose bolt or postgres")
			}

			runCtx, cancel := context.WithCancel(ctx.Context)
			defer cancel()

			gw, err := bootstrap.OpenGateway(runCtx, cfg, lgr)
			if err != nil {
				return err
			}
			defer gw.Close()

			return seed.CreateDefaultData(runCtx, appRepos.NewRepositories(gw, lgr), lgr)
		},
	}
}
