package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// TaskChanges lists the editable task fields; nil fields are left untouched.
type TaskChanges struct {
	Title       *string
	Description *string
}

// TaskRepository defines the persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByKey(ctx context.Context, key domain.Key) (*domain.Task, error)
	// FindAll returns the owner's tasks grouped by list, by position within a list.
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error)
	FindInScope(ctx context.Context, scope domain.Scope) ([]domain.Task, error)
	Count(ctx context.Context, scope domain.Scope) (int64, error)
	Update(ctx context.Context, key domain.Key, changes TaskChanges) (*domain.Task, error)
	Delete(ctx context.Context, key domain.Key) (*domain.Task, error)
	// DeleteInScope removes every task of the scope and reports how many went.
	DeleteInScope(ctx context.Context, scope domain.Scope) (int64, error)
	// ApplyOrder writes position and list membership per placement. It is
	// not transactional and does not check that the target list exists.
	ApplyOrder(ctx context.Context, ownerID uuid.UUID, batch domain.OrderBatch) error
}

type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM task repository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *gormTaskRepository) FindByKey(ctx context.Context, key domain.Key) (*domain.Task, error) {
	var task domain.Task
	if err := scoped(r.db.WithContext(ctx), key).First(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to find task %s: %w", key.ID, err)
	}
	return &task, nil
}

func (r *gormTaskRepository) FindAll(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error) {
	return r.FindInScope(ctx, domain.ListScope(ownerID))
}

func (r *gormTaskRepository) FindInScope(ctx context.Context, scope domain.Scope) ([]domain.Task, error) {
	tasks := []domain.Task{}
	err := inScope(r.db.WithContext(ctx), scope).
		Order("list_id ASC").
		Order("position ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return tasks, nil
}

func (r *gormTaskRepository) Count(ctx context.Context, scope domain.Scope) (int64, error) {
	var n int64
	if err := inScope(r.db.WithContext(ctx).Model(&domain.Task{}), scope).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func (r *gormTaskRepository) Update(ctx context.Context, key domain.Key, changes TaskChanges) (*domain.Task, error) {
	values := map[string]any{}
	if changes.Title != nil {
		values["title"] = *changes.Title
		values["title_key"] = domain.NormalizeTitle(*changes.Title)
	}
	if changes.Description != nil {
		values["description"] = *changes.Description
	}
	if len(values) == 0 {
		return r.FindByKey(ctx, key)
	}

	var task domain.Task
	res := scoped(r.db.WithContext(ctx).Model(&task).Clauses(clause.Returning{}), key).Updates(values)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", key.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("task %s: %w", key.ID, gorm.ErrRecordNotFound)
	}
	return &task, nil
}

func (r *gormTaskRepository) Delete(ctx context.Context, key domain.Key) (*domain.Task, error) {
	var task domain.Task
	res := scoped(r.db.WithContext(ctx).Clauses(clause.Returning{}), key).Delete(&task)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete task %s: %w", key.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("task %s: %w", key.ID, gorm.ErrRecordNotFound)
	}
	return &task, nil
}

func (r *gormTaskRepository) DeleteInScope(ctx context.Context, scope domain.Scope) (int64, error) {
	if scope.ListID == uuid.Nil {
		return 0, errors.New("refusing to delete tasks without a list scope")
	}
	res := inScope(r.db.WithContext(ctx), scope).Delete(&domain.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete tasks of list %s: %w", scope.ListID, res.Error)
	}
	return res.RowsAffected, nil
}

// ApplyOrder moves each task to its placement's list and position, on one
// pinned connection. Like the list variant, ctx only guards the start of the
// pass.
func (r *gormTaskRepository) ApplyOrder(ctx context.Context, ownerID uuid.UUID, batch domain.OrderBatch) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reorder of tasks not started: %w", err)
	}
	return r.db.WithContext(context.WithoutCancel(ctx)).Connection(func(conn *gorm.DB) error {
		db := conn.Session(&gorm.Session{})
		for _, p := range batch.Placements() {
			key := domain.Key{OwnerID: ownerID, ID: p.ID}
			err := scoped(db.Model(&domain.Task{}), key).Updates(map[string]any{
				"list_id":  p.ListID,
				"position": p.Position,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to reposition task %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
