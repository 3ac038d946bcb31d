package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/tasklists-backend/internal/service"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.rootHandler)
	r.Get("/health", s.healthHandler)

	r.Route("/lists", func(r chi.Router) {
		r.Use(s.requireOwner)
		r.Get("/", s.fetchListsHandler)
		r.Post("/", s.createListHandler)
		r.Patch("/reorder", s.reorderListsHandler)
		r.Patch("/{id}", s.updateListHandler)
		r.Delete("/{id}", s.deleteListHandler)
		r.Get("/{id}/tasks", s.fetchListTasksHandler)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(s.requireOwner)
		r.Get("/", s.fetchTasksHandler)
		r.Post("/", s.createTaskHandler)
		r.Patch("/reorder", s.reorderTasksHandler)
		r.Patch("/{id}", s.updateTaskHandler)
		r.Delete("/{id}", s.deleteTaskHandler)
	})

	return r
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	respondWithData(w, http.StatusOK, "Task lists API", nil)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health(r.Context())
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

func (s *Server) fetchListsHandler(w http.ResponseWriter, r *http.Request) {
	lists, err := s.listService.FetchLists(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "Lists fetched successfully", lists)
}

func (s *Server) createListHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateListRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	list, err := s.listService.CreateList(r.Context(), ownerFrom(r.Context()), req)
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, "List created successfully", list)
}

func (s *Server) updateListHandler(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateListRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	list, err := s.listService.UpdateList(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "List updated successfully", list)
}

func (s *Server) deleteListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.listService.DeleteList(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "List deleted successfully", list)
}

func (s *Server) reorderListsHandler(w http.ResponseWriter, r *http.Request) {
	var req service.ReorderListsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if s.cfg.IsDevelopment() {
		s.logger.Debug("reorder lists payload", "listsOrder", string(req.ListsOrder))
	}

	lists, err := s.listService.ReorderLists(r.Context(), ownerFrom(r.Context()), req)
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "Reordered", lists)
}

func (s *Server) fetchListTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.taskService.FetchListTasks(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "Tasks fetched successfully", tasks)
}

func (s *Server) fetchTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.taskService.FetchTasks(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "Tasks fetched successfully", tasks)
}

func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	task, err := s.taskService.CreateTask(r.Context(), ownerFrom(r.Context()), req)
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, fmt.Sprintf("Task %q was created", task.Title), task)
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	task, err := s.taskService.UpdateTask(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, fmt.Sprintf("Task %q was updated", task.Title), task)
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskService.DeleteTask(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, fmt.Sprintf("Task %q was deleted", task.Title), task)
}

func (s *Server) reorderTasksHandler(w http.ResponseWriter, r *http.Request) {
	var req service.ReorderTasksRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if s.cfg.IsDevelopment() {
		s.logger.Debug("reorder tasks payload", "tasksOrder", string(req.TasksOrder))
	}

	tasks, err := s.taskService.ReorderTasks(r.Context(), ownerFrom(r.Context()), req)
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "Reordered", tasks)
}
