package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/tasklists-backend/internal/config"
	"github.com/Tomlord1122/tasklists-backend/internal/database"
	"github.com/Tomlord1122/tasklists-backend/internal/service"
)

type Server struct {
	cfg         *config.Config
	listService service.ListService
	taskService service.TaskService
	db          database.Service
	logger      *log.Logger
}

// NewServer wires the services into a router and returns an http.Server
// listening on the configured port.
func NewServer(cfg *config.Config, listService service.ListService, taskService service.TaskService, dbService database.Service, logger *log.Logger) *http.Server {
	if logger == nil {
		logger = log.Default()
	}

	appServer := &Server{
		cfg:         cfg,
		listService: listService,
		taskService: taskService,
		db:          dbService,
		logger:      logger,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      appServer.RegisterRoutes(),
		ErrorLog:     logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
