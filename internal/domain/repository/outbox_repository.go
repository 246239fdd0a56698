package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain/event"
)

// OutboxRepository eventos pendientes de publicar.
type OutboxRepository interface {
	Append(ctx context.Context, evt event.Event) error
	// ListPending en orden de id (ULID, cronológico).
	ListPending(ctx context.Context, limit int) ([]event.Event, error)
	MarkDispatched(ctx context.Context, id string, at time.Time) error
}
