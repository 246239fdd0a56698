// Package eventbus reparte en proceso los eventos del outbox entre los suscriptores (espejo de brokers).
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/pkg/logger"
)

// ErrBufferFull el evento no entró en el buffer; queda pendiente en el outbox.
var ErrBufferFull = errors.New("eventbus: buffer lleno")

// ErrStopped el bus ya no acepta eventos.
var ErrStopped = errors.New("eventbus: detenido")

// Bus entrega cada evento a todos los suscriptores en orden de publicación.
// Asíncrono (New): una goroutine consumidora; los errores de los suscriptores solo se registran.
// Síncrono (NewInline): se despacha dentro de Publish, que devuelve los errores de los suscriptores.
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedHandler
	events      chan event.Event
	done        chan struct{}
	started     bool
	stopped     bool
	inline      bool
	log         *logger.Logger
}

type namedHandler struct {
	name    string
	handler event.Handler
}

var _ event.Publisher = (*Bus)(nil)

// New crea un bus asíncrono con el buffer indicado.
func New(bufSize int, log *logger.Logger) *Bus {
	if bufSize < 1 {
		bufSize = 256
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{
		events: make(chan event.Event, bufSize),
		done:   make(chan struct{}),
		log:    log,
	}
}

// NewInline crea un bus que despacha en la goroutine de quien publica.
func NewInline(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{inline: true, log: log}
}

// Subscribe registra un suscriptor con nombre. Debe llamarse antes de Start.
func (b *Bus) Subscribe(name string, h event.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedHandler{name: name, handler: h})
}

// Publish encola el evento sin bloquear. Con el buffer lleno devuelve ErrBufferFull.
// En modo inline despacha y devuelve los errores de los suscriptores unidos.
func (b *Bus) Publish(ctx context.Context, evt event.Event) error {
	if b.inline {
		return b.dispatch(ctx, evt)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		return ErrStopped
	}
	select {
	case b.events <- evt:
		return nil
	default:
		b.log.Warn().Str("event_id", evt.ID).Str("type", string(evt.Type)).Msg("eventbus: buffer lleno")
		return ErrBufferFull
	}
}

// Start lanza la goroutine consumidora hasta que se cancele ctx o se llame a Stop.
func (b *Bus) Start(ctx context.Context) {
	if b.inline {
		return
	}
	b.mu.Lock()
	b.started = true
	b.mu.Unlock()
	go func() {
		defer close(b.done)
		for {
			select {
			case evt, ok := <-b.events:
				if !ok {
					return
				}
				_ = b.dispatch(ctx, evt)
			case <-ctx.Done():
				b.drain(context.WithoutCancel(ctx))
				return
			}
		}
	}()
}

func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case evt, ok := <-b.events:
			if !ok {
				return
			}
			_ = b.dispatch(ctx, evt)
		default:
			return
		}
	}
}

// Stop deja de aceptar eventos y espera a que se despache lo encolado.
func (b *Bus) Stop() {
	if b.inline {
		return
	}
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	close(b.events)
	started := b.started
	b.mu.Unlock()
	if started {
		<-b.done
	}
}

// dispatch entrega a todos los suscriptores aunque alguno falle.
func (b *Bus) dispatch(ctx context.Context, evt event.Event) error {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			b.log.Warn().Err(err).Str("subscriber", s.name).Str("event_id", evt.ID).Str("type", string(evt.Type)).Msg("eventbus: error del suscriptor")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
