package sales

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
	"github.com/jhoicas/Emlak-api/pkg/logger"
)

const relayBatch = 100

// Relay publica los eventos pendientes del outbox. Se invoca tras cada commit (Notify) y
// periódicamente (Run) para reintentar lo que no se pudo publicar.
type Relay struct {
	outbox repository.OutboxRepository
	pub    event.Publisher
	log    *logger.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewRelay construye el relay.
func NewRelay(outbox repository.OutboxRepository, pub event.Publisher, log *logger.Logger) *Relay {
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{outbox: outbox, pub: pub, log: log, now: time.Now}
}

// Notify publica lo pendiente; los errores solo se registran.
func (r *Relay) Notify(ctx context.Context) {
	if _, err := r.Flush(ctx); err != nil {
		r.log.Warn().Err(err).Msg("outbox: publicación pendiente")
	}
}

// Flush publica en orden hasta vaciar el outbox o encontrar un error. Devuelve cuántos publicó.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for {
		pending, err := r.outbox.ListPending(ctx, relayBatch)
		if err != nil {
			return n, fmt.Errorf("outbox pending: %w", err)
		}
		for _, evt := range pending {
			if err := r.pub.Publish(ctx, evt); err != nil {
				return n, fmt.Errorf("publish %s: %w", evt.ID, err)
			}
			if err := r.outbox.MarkDispatched(ctx, evt.ID, r.now()); err != nil {
				return n, fmt.Errorf("outbox dispatched %s: %w", evt.ID, err)
			}
			n++
		}
		if len(pending) < relayBatch {
			return n, nil
		}
	}
}

// Run reintenta cada interval hasta que se cancele ctx.
func (r *Relay) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := r.Flush(ctx); err != nil {
				r.log.Warn().Err(err).Int("published", n).Msg("outbox: reintento fallido")
			} else if n > 0 {
				r.log.Debug().Int("published", n).Msg("outbox: eventos publicados")
			}
		}
	}
}
