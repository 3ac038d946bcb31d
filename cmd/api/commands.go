package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Tomlord1122/tasklists-backend/internal/config"
	"github.com/Tomlord1122/tasklists-backend/internal/database"
	"github.com/Tomlord1122/tasklists-backend/internal/logging"
	"github.com/Tomlord1122/tasklists-backend/internal/repository"
	"github.com/Tomlord1122/tasklists-backend/internal/server"
	"github.com/Tomlord1122/tasklists-backend/internal/service"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "auto-migrate",
				Usage: "Create or update tables before serving",
				Value: true,
			},
		},
		Action: serve,
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the lists and tasks tables, then exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, logger, dbService, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer dbService.Close()

			if err := database.Migrate(dbService.GetDB()); err != nil {
				return err
			}
			logger.Info("database migration complete")
			return nil
		},
	}
}

func bootstrap(cmd *cli.Command) (*config.Config, *log.Logger, database.Service, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	logger.Info("configuration loaded", "env", cfg.Env, "driver", cfg.Database.Driver)

	dbService, err := database.New(cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, dbService, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, dbService, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("auto-migrate") {
		logger.Info("running database auto-migration")
		if err := database.Migrate(dbService.GetDB()); err != nil {
			_ = dbService.Close()
			return err
		}
	}

	gormDB := dbService.GetDB()
	listRepo := repository.NewGormListRepository(gormDB)
	taskRepo := repository.NewGormTaskRepository(gormDB)

	serviceLogger := logging.Component(logger, "service")
	listService := service.NewListService(listRepo, taskRepo, serviceLogger)
	taskService := service.NewTaskService(taskRepo, listRepo, serviceLogger)

	apiServer := server.NewServer(cfg, listService, taskService, dbService, logging.Component(logger, "http"))

	done := make(chan bool, 1)
	go gracefulShutdown(ctx, apiServer, dbService, logger, done)

	if err := listen(apiServer, dbService, logger); err != nil {
		return err
	}

	<-done
	logger.Info("graceful shutdown complete")
	return nil
}

// listen serves until the server is shut down. A server that fails to start
// releases the database pool before returning.
func listen(apiServer *http.Server, dbService database.Service, logger *log.Logger) error {
	logger.Info("starting server", "addr", apiServer.Addr)
	err := apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		if cerr := dbService.Close(); cerr != nil {
			logger.Error("failed to close database connection pool", "err", cerr)
		}
		return err
	}
	return nil
}

func gracefulShutdown(ctx context.Context, apiServer *http.Server, dbService database.Service, logger *log.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server has 5 seconds to finish the requests it is handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	if err := dbService.Close(); err != nil {
		logger.Error("failed to close database connection pool", "err", err)
	}

	logger.Info("server exiting")
	done <- true
}
