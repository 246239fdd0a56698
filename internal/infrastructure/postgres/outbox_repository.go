package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo eventos escritos en la misma transacción que el cambio de estado.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Append encola el evento.
func (r *OutboxRepo) Append(ctx context.Context, evt event.Event) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return wrapErr("encode outbox payload", err)
	}
	query := `
		INSERT INTO outbox_events (id, tenant_id, type, actor_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, evt.ID, evt.TenantID, string(evt.Type), evt.ActorID, payload, evt.OccurredAt); err != nil {
		return wrapErr("insert outbox event", err)
	}
	return nil
}

// ListPending eventos sin publicar en orden de id (ULID).
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]event.Event, error) {
	query := `
		SELECT id, tenant_id, type, actor_id, payload, occurred_at FROM outbox_events
		WHERE dispatched_at IS NULL
		ORDER BY id
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, wrapErr("list outbox", err)
	}
	defer rows.Close()
	var list []event.Event
	for rows.Next() {
		var evt event.Event
		var typ string
		var payload []byte
		if err := rows.Scan(&evt.ID, &evt.TenantID, &typ, &evt.ActorID, &payload, &evt.OccurredAt); err != nil {
			return nil, wrapErr("list outbox", err)
		}
		evt.Type = event.Type(typ)
		if err := json.Unmarshal(payload, &evt.Payload); err != nil {
			return nil, wrapErr("decode outbox payload", err)
		}
		list = append(list, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list outbox", err)
	}
	return list, nil
}

// MarkDispatched marca el evento como publicado.
func (r *OutboxRepo) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	if _, err := r.q.Exec(ctx, `UPDATE outbox_events SET dispatched_at = $2 WHERE id = $1`, id, at); err != nil {
		return wrapErr("mark outbox dispatched", err)
	}
	return nil
}
