package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/eventbus"
)

type collector struct {
	mu  sync.Mutex
	ids []string
}

func (c *collector) HandleEvent(_ context.Context, evt event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, evt.ID)
	return nil
}

func (c *collector) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

func TestBus_AsincronoEntregaEnOrden(t *testing.T) {
	bus := eventbus.New(8, nil)
	c := &collector{}
	failing := event.HandlerFunc(func(context.Context, event.Event) error { return errors.New("boom") })
	bus.Subscribe("failing", failing)
	bus.Subscribe("collector", c)
	bus.Start(context.Background())

	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, bus.Publish(context.Background(), event.Event{ID: id}))
	}
	bus.Stop()

	// el error de un suscriptor no impide la entrega al siguiente
	assert.Equal(t, []string{"e1", "e2", "e3"}, c.got())

	// Caso 2: tras Stop no se aceptan eventos.
	assert.ErrorIs(t, bus.Publish(context.Background(), event.Event{ID: "e4"}), eventbus.ErrStopped)
	bus.Stop()
}

func TestBus_BufferLleno(t *testing.T) {
	bus := eventbus.New(1, nil)
	require.NoError(t, bus.Publish(context.Background(), event.Event{ID: "e1"}))
	assert.ErrorIs(t, bus.Publish(context.Background(), event.Event{ID: "e2"}), eventbus.ErrBufferFull)
	bus.Stop()
}

func TestBus_CancelarContextoDrenaLoEncolado(t *testing.T) {
	bus := eventbus.New(4, nil)
	c := &collector{}
	bus.Subscribe("collector", c)
	require.NoError(t, bus.Publish(context.Background(), event.Event{ID: "e1"}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)
	assert.Eventually(t, func() bool { return len(c.got()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestBus_InlineDespachaEnPublish(t *testing.T) {
	bus := eventbus.NewInline(nil)
	c := &collector{}
	bus.Subscribe("collector", c)

	require.NoError(t, bus.Publish(context.Background(), event.Event{ID: "e1"}))
	assert.Equal(t, []string{"e1"}, c.got())
	bus.Stop()
}

func TestBus_InlineDevuelveErroresDeSuscriptores(t *testing.T) {
	bus := eventbus.NewInline(nil)
	c := &collector{}
	boom := errors.New("boom")
	bus.Subscribe("failing", event.HandlerFunc(func(context.Context, event.Event) error { return boom }))
	bus.Subscribe("collector", c)

	err := bus.Publish(context.Background(), event.Event{ID: "e1"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	// el resto de suscriptores recibe el evento igualmente
	assert.Equal(t, []string{"e1"}, c.got())
}
