package service

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// orderStore is what the reorder engine needs from a repository.
type orderStore[T any] interface {
	ApplyOrder(ctx context.Context, ownerID uuid.UUID, batch domain.OrderBatch) error
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]T, error)
}

// reorderEngine validates a whole reorder payload, applies it and returns the
// owner's collection as stored afterwards. Nothing is written unless every
// entry is valid. Once writing starts there is no rollback: a store failure
// leaves earlier placements applied and is reported as an internal error.
type reorderEngine[T any] struct {
	parse  func(json.RawMessage) (domain.OrderBatch, error)
	store  orderStore[T]
	logger *log.Logger
}

func (e reorderEngine[T]) reorder(ctx context.Context, ownerID uuid.UUID, raw json.RawMessage) ([]T, error) {
	batch, err := e.parse(raw)
	if err != nil {
		e.logger.Debug("reorder rejected", "owner", ownerID, "err", err)
		return nil, err
	}

	if err := e.store.ApplyOrder(ctx, ownerID, batch); err != nil {
		e.logger.Error("reorder batch failed", "owner", ownerID, "size", batch.Len(), "err", err)
		return nil, domain.Internal(err)
	}

	items, err := e.store.FindAll(ctx, ownerID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	e.logger.Debug("reorder batch applied", "owner", ownerID, "size", batch.Len())
	return items, nil
}
