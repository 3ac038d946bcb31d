package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// ListRepository defines the persistence operations for lists.
// Missing records, including records of other owners, yield gorm.ErrRecordNotFound.
type ListRepository interface {
	Create(ctx context.Context, list *domain.List) error
	FindByKey(ctx context.Context, key domain.Key) (*domain.List, error)
	// FindAll returns the owner's lists ordered by position, ties by creation time.
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]domain.List, error)
	Count(ctx context.Context, scope domain.Scope) (int64, error)
	UpdateTitle(ctx context.Context, key domain.Key, title string) (*domain.List, error)
	// Delete removes the list and returns it as it was stored.
	Delete(ctx context.Context, key domain.Key) (*domain.List, error)
	// ApplyOrder writes each placement's position. It is not transactional.
	ApplyOrder(ctx context.Context, ownerID uuid.UUID, batch domain.OrderBatch) error
}

type gormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a new GORM list repository
func NewGormListRepository(db *gorm.DB) ListRepository {
	return &gormListRepository{db: db}
}

func (r *gormListRepository) Create(ctx context.Context, list *domain.List) error {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}
	return nil
}

func (r *gormListRepository) FindByKey(ctx context.Context, key domain.Key) (*domain.List, error) {
	var list domain.List
	if err := scoped(r.db.WithContext(ctx), key).First(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to find list %s: %w", key.ID, err)
	}
	return &list, nil
}

func (r *gormListRepository) FindAll(ctx context.Context, ownerID uuid.UUID) ([]domain.List, error) {
	lists := []domain.List{}
	err := inScope(r.db.WithContext(ctx), domain.ListScope(ownerID)).
		Order("position ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	return lists, nil
}

func (r *gormListRepository) Count(ctx context.Context, scope domain.Scope) (int64, error) {
	var n int64
	if err := inScope(r.db.WithContext(ctx).Model(&domain.List{}), scope).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count lists: %w", err)
	}
	return n, nil
}

func (r *gormListRepository) UpdateTitle(ctx context.Context, key domain.Key, title string) (*domain.List, error) {
	var list domain.List
	res := scoped(r.db.WithContext(ctx).Model(&list).Clauses(clause.Returning{}), key).
		Updates(map[string]any{
			"title":     title,
			"title_key": domain.NormalizeTitle(title),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update list %s: %w", key.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("list %s: %w", key.ID, gorm.ErrRecordNotFound)
	}
	return &list, nil
}

func (r *gormListRepository) Delete(ctx context.Context, key domain.Key) (*domain.List, error) {
	var list domain.List
	res := scoped(r.db.WithContext(ctx).Clauses(clause.Returning{}), key).Delete(&list)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete list %s: %w", key.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("list %s: %w", key.ID, gorm.ErrRecordNotFound)
	}
	return &list, nil
}

// ApplyOrder issues one owner-scoped update per placement in request order,
// all on one pinned connection. Placements for ids the owner does not have
// match no row and are skipped. ctx is only checked before the first update;
// once the pass starts it runs to the end or to the first failing update,
// and earlier updates stay applied.
func (r *gormListRepository) ApplyOrder(ctx context.Context, ownerID uuid.UUID, batch domain.OrderBatch) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reorder of lists not started: %w", err)
	}
	return r.db.WithContext(context.WithoutCancel(ctx)).Connection(func(conn *gorm.DB) error {
		db := conn.Session(&gorm.Session{})
		for _, p := range batch.Placements() {
			key := domain.Key{OwnerID: ownerID, ID: p.ID}
			if err := scoped(db.Model(&domain.List{}), key).Update("position", p.Position).Error; err != nil {
				return fmt.Errorf("failed to reposition list %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
