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

// CreateListRequest holds the data needed to create a new list
type CreateListRequest struct {
	Title string `json:"title"`
}

// UpdateListRequest holds the new title of a list
type UpdateListRequest struct {
	Title string `json:"title"`
}

// ReorderListsRequest carries the client's new list order. The payload is
// kept raw until the reorder engine has validated all of it.
type ReorderListsRequest struct {
	ListsOrder json.RawMessage `json:"listsOrder"`
}

// ListResponse is the representation of a List returned by the service.
type ListResponse struct {
	ID        string `json:"_id"`
	UserID    string `json:"userID"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ListService defines the operations on a user's lists. Every method is
// scoped to ownerID; lists of other users behave as if they did not exist.
type ListService interface {
	// FetchLists returns the owner's lists in ascending position.
	FetchLists(ctx context.Context, ownerID uuid.UUID) ([]ListResponse, error)

	// CreateList appends a new list after the owner's existing ones.
	CreateList(ctx context.Context, ownerID uuid.UUID, req CreateListRequest) (*ListResponse, error)

	// UpdateList renames a list.
	UpdateList(ctx context.Context, ownerID uuid.UUID, listID string, req UpdateListRequest) (*ListResponse, error)

	// DeleteList removes a list and then every task in it.
	DeleteList(ctx context.Context, ownerID uuid.UUID, listID string) (*ListResponse, error)

	// ReorderLists applies a bulk position update and returns the refreshed order.
	ReorderLists(ctx context.Context, ownerID uuid.UUID, req ReorderListsRequest) ([]ListResponse, error)
}

type listService struct {
	lists     repository.ListRepository
	tasks     repository.TaskRepository
	positions positionAssigner
	reorderer reorderEngine[domain.List]
	logger    *log.Logger
}

// NewListService creates a ListService. The task repository is needed for
// the cascade on delete.
func NewListService(lists repository.ListRepository, tasks repository.TaskRepository, logger *log.Logger) ListService {
	if logger == nil {
		logger = log.Default()
	}
	return &listService{
		lists:     lists,
		tasks:     tasks,
		positions: positionAssigner{counter: lists},
		reorderer: reorderEngine[domain.List]{parse: domain.ParseListOrder, store: lists, logger: logger},
		logger:    logger,
	}
}

func (s *listService) FetchLists(ctx context.Context, ownerID uuid.UUID) ([]ListResponse, error) {
	lists, err := s.lists.FindAll(ctx, ownerID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return toListResponses(lists), nil
}

func (s *listService) CreateList(ctx context.Context, ownerID uuid.UUID, req CreateListRequest) (*ListResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.Validation(domain.CodeListTitleRequired)
	}

	position, err := s.positions.appendPosition(ctx, domain.ListScope(ownerID))
	if err != nil {
		return nil, domain.Internal(err)
	}

	list := &domain.List{OwnerID: ownerID, Title: title, Position: position}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, storeError(err, domain.CodeListNotFound, domain.CodeListAlreadyExists)
	}

	s.logger.Debug("list created", "owner", ownerID, "list", list.ID, "position", position)
	return toListResponse(list), nil
}

func (s *listService) UpdateList(ctx context.Context, ownerID uuid.UUID, listID string, req UpdateListRequest) (*ListResponse, error) {
	id, ok := domain.ParseID(listID)
	if !ok {
		return nil, domain.Validation(domain.CodeInvalidID)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.Validation(domain.CodeListTitleRequired)
	}

	list, err := s.lists.UpdateTitle(ctx, domain.Key{OwnerID: ownerID, ID: id}, title)
	if err != nil {
		return nil, storeError(err, domain.CodeListNotFound, domain.CodeListAlreadyExists)
	}
	return toListResponse(list), nil
}

// DeleteList deletes the list first and its tasks second. The two steps are
// not atomic: if the task delete fails the list is already gone and its
// tasks remain as orphans. Once the list is deleted the task delete runs
// even if the caller has gone away.
func (s *listService) DeleteList(ctx context.Context, ownerID uuid.UUID, listID string) (*ListResponse, error) {
	id, ok := domain.ParseID(listID)
	if !ok {
		return nil, domain.Validation(domain.CodeInvalidID)
	}

	list, err := s.lists.Delete(ctx, domain.Key{OwnerID: ownerID, ID: id})
	if err != nil {
		return nil, storeError(err, domain.CodeListNotFound, domain.CodeListAlreadyExists)
	}

	removed, err := s.tasks.DeleteInScope(context.WithoutCancel(ctx), domain.TaskScope(ownerID, list.ID))
	if err != nil {
		s.logger.Error("cascade delete failed, tasks left orphaned", "owner", ownerID, "list", list.ID, "err", err)
		return nil, domain.Internal(err)
	}

	s.logger.Info("list deleted", "owner", ownerID, "list", list.ID, "tasks", removed)
	return toListResponse(list), nil
}

func (s *listService) ReorderLists(ctx context.Context, ownerID uuid.UUID, req ReorderListsRequest) ([]ListResponse, error) {
	lists, err := s.reorderer.reorder(ctx, ownerID, req.ListsOrder)
	if err != nil {
		return nil, err
	}
	return toListResponses(lists), nil
}

func toListResponse(list *domain.List) *ListResponse {
	return &ListResponse{
		ID:        list.ID.String(),
		UserID:    list.OwnerID.String(),
		Title:     list.Title,
		Position:  list.Position,
		CreatedAt: list.CreatedAt.Format(time.RFC3339),
		UpdatedAt: list.UpdatedAt.Format(time.RFC3339),
	}
}

func toListResponses(lists []domain.List) []ListResponse {
	responses := make([]ListResponse, 0, len(lists))
	for i := range lists {
		responses = append(responses, *toListResponse(&lists[i]))
	}
	return responses
}
