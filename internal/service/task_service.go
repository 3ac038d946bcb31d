package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
	"github.com/Tomlord1122/tasklists-backend/internal/repository"
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	ListID      string `json:"listID"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest holds the fields to change on a task.
// Nil pointers leave the field as it is.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ReorderTasksRequest carries the client's new task order, possibly moving
// tasks between lists.
type ReorderTasksRequest struct {
	TasksOrder json.RawMessage `json:"tasksOrder"`
}

// TaskResponse is the representation of a Task returned by the service.
type TaskResponse struct {
	ID          string `json:"_id"`
	UserID      string `json:"userID"`
	ListID      string `json:"listID"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// TaskService defines the operations on a user's tasks.
type TaskService interface {
	// FetchTasks returns all of the owner's tasks. Callers should group by
	// ListID rather than rely on the order.
	FetchTasks(ctx context.Context, ownerID uuid.UUID) ([]TaskResponse, error)

	// FetchListTasks returns the tasks of one of the owner's lists by position.
	FetchListTasks(ctx context.Context, ownerID uuid.UUID, listID string) ([]TaskResponse, error)

	// CreateTask appends a task to the end of a list.
	CreateTask(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error)

	// UpdateTask changes a task's title and/or description.
	UpdateTask(ctx context.Context, ownerID uuid.UUID, taskID string, req UpdateTaskRequest) (*TaskResponse, error)

	// DeleteTask removes a single task. Sibling positions are not compacted.
	DeleteTask(ctx context.Context, ownerID uuid.UUID, taskID string) (*TaskResponse, error)

	// ReorderTasks applies a bulk position/list update and returns all tasks
	// ordered by list, then position.
	ReorderTasks(ctx context.Context, ownerID uuid.UUID, req ReorderTasksRequest) ([]TaskResponse, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	lists     repository.ListRepository
	positions positionAssigner
	reorderer reorderEngine[domain.Task]
	logger    *log.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks repository.TaskRepository, lists repository.ListRepository, logger *log.Logger) TaskService {
	if logger == nil {
		logger = log.Default()
	}
	return &taskService{
		tasks:     tasks,
		lists:     lists,
		positions: positionAssigner{counter: tasks},
		reorderer: reorderEngine[domain.Task]{parse: domain.ParseTaskOrder, store: tasks, logger: logger},
		logger:    logger,
	}
}

func (s *taskService) FetchTasks(ctx context.Context, ownerID uuid.UUID) ([]TaskResponse, error) {
	tasks, err := s.tasks.FindAll(ctx, ownerID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return toTaskResponses(tasks), nil
}

func (s *taskService) FetchListTasks(ctx context.Context, ownerID uuid.UUID, listID string) ([]TaskResponse, error) {
	id, ok := domain.ParseID(listID)
	if !ok {
		return nil, domain.Validation(domain.CodeInvalidID)
	}

	if _, err := s.lists.FindByKey(ctx, domain.Key{OwnerID: ownerID, ID: id}); err != nil {
		return nil, storeError(err, domain.CodeListNotFound, domain.CodeListAlreadyExists)
	}

	tasks, err := s.tasks.FindInScope(ctx, domain.TaskScope(ownerID, id))
	if err != nil {
		return nil, domain.Internal(err)
	}
	return toTaskResponses(tasks), nil
}

// CreateTask does not check that the list exists; like reorder, it trusts a
// well-formed list id.
func (s *taskService) CreateTask(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error) {
	listID, ok := domain.ParseID(req.ListID)
	if !ok {
		return nil, domain.Validationf(domain.CodeInvalidID, "Unable to add task. The list could not be identified.")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.Validation(domain.CodeTaskTitleRequired)
	}

	position, err := s.positions.appendPosition(ctx, domain.TaskScope(ownerID, listID))
	if err != nil {
		return nil, domain.Internal(err)
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		ListID:      listID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Position:    position,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, storeError(err, domain.CodeTaskNotFound, domain.CodeTaskAlreadyExists)
	}

	s.logger.Debug("task created", "owner", ownerID, "list", listID, "task", task.ID, "position", position)
	return toTaskResponse(task), nil
}

func (s *taskService) UpdateTask(ctx context.Context, ownerID uuid.UUID, taskID string, req UpdateTaskRequest) (*TaskResponse, error) {
	id, ok := domain.ParseID(taskID)
	if !ok {
		return nil, domain.Validationf(domain.CodeInvalidID, "Unable to update task. The task could not be identified.")
	}

	var changes repository.TaskChanges
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.Validation(domain.CodeTaskTitleRequired)
		}
		changes.Title = &title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		changes.Description = &desc
	}

	task, err := s.tasks.Update(ctx, domain.Key{OwnerID: ownerID, ID: id}, changes)
	if err != nil {
		return nil, storeError(err, domain.CodeTaskNotFound, domain.CodeTaskAlreadyExists)
	}
	return toTaskResponse(task), nil
}

func (s *taskService) DeleteTask(ctx context.Context, ownerID uuid.UUID, taskID string) (*TaskResponse, error) {
	id, ok := domain.ParseID(taskID)
	if !ok {
		return nil, domain.Validationf(domain.CodeInvalidID, "Unable to delete task. The task could not be identified.")
	}

	task, err := s.tasks.Delete(ctx, domain.Key{OwnerID: ownerID, ID: id})
	if err != nil {
		return nil, storeError(err, domain.CodeTaskNotFound, domain.CodeTaskAlreadyExists)
	}
	return toTaskResponse(task), nil
}

func (s *taskService) ReorderTasks(ctx context.Context, ownerID uuid.UUID, req ReorderTasksRequest) ([]TaskResponse, error) {
	tasks, err := s.reorderer.reorder(ctx, ownerID, req.TasksOrder)
	if err != nil {
		return nil, err
	}
	return toTaskResponses(tasks), nil
}

func toTaskResponse(task *domain.Task) *TaskResponse {
	return &TaskResponse{
		ID:          task.ID.String(),
		UserID:      task.OwnerID.String(),
		ListID:      task.ListID.String(),
		Title:       task.Title,
		Description: task.Description,
		Position:    task.Position,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
}

func toTaskResponses(tasks []domain.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, *toTaskResponse(&tasks[i]))
	}
	return responses
}
