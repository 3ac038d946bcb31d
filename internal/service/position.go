package service

import (
	"context"
	"fmt"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// siblingCounter is the slice of a repository the position assigner needs.
type siblingCounter interface {
	Count(ctx context.Context, scope domain.Scope) (int64, error)
}

// positionAssigner hands out append positions: a new record goes after the
// siblings that exist right now.
//
// The count and the insert that follows are separate statements, so two
// concurrent creates in one scope can receive the same position. Reads order
// ties by creation time, which keeps the visible order well defined.
type positionAssigner struct {
	counter siblingCounter
}

func (a positionAssigner) appendPosition(ctx context.Context, scope domain.Scope) (int, error) {
	n, err := a.counter.Count(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to compute append position: %w", err)
	}
	return int(n), nil
}
