package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/memory"
)

const tenantID = "tenant-1"

func newUnit(id, code string) *entity.Unit {
	return &entity.Unit{ID: id, TenantID: tenantID, ProjectID: "p1", Code: code, Status: entity.UnitForSale}
}

func TestStore_RollbackDescartaLaTransaccion(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := s.RunSales(ctx, func(r sales.Repos) error {
		require.NoError(t, r.Units.Create(ctx, newUnit("u1", "A-1")))
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	u, err := s.Units().GetByID(ctx, tenantID, "u1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestStore_SavepointRevierteSoloElPaso(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	err := s.RunSales(ctx, func(r sales.Repos) error {
		if err := r.Units.Create(ctx, newUnit("u1", "A-1")); err != nil {
			return err
		}
		spErr := r.Savepoint(ctx, func() error {
			if err := r.Units.Create(ctx, newUnit("u2", "A-2")); err != nil {
				return err
			}
			return errors.New("paso secundario")
		})
		assert.Error(t, spErr)
		return nil
	})
	require.NoError(t, err)

	u1, err := s.Units().GetByID(ctx, tenantID, "u1")
	require.NoError(t, err)
	assert.NotNil(t, u1)
	u2, err := s.Units().GetByID(ctx, tenantID, "u2")
	require.NoError(t, err)
	assert.Nil(t, u2)
}

func TestStore_FallosInyectados(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	s.InjectFault("units.create", errors.New("disco lleno"))
	err := s.Units().Create(ctx, newUnit("u1", "A-1"))
	assert.ErrorIs(t, err, domain.ErrStore)

	s.ClearFaults()
	require.NoError(t, s.Units().Create(ctx, newUnit("u1", "A-1")))

	// Caso 2: código repetido en el mismo proyecto → ErrDuplicate.
	err = s.Units().Create(ctx, newUnit("u2", "A-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStore_ContextoCanceladoNoAbreTransaccion(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.RunSales(ctx, func(sales.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_OutboxPendientesEnOrden(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	out := s.Outbox()

	for _, id := range []string{"01B", "01A", "01C"} {
		require.NoError(t, out.Append(ctx, event.Event{ID: id, Type: event.SaleStatusChanged}))
	}
	require.NoError(t, out.MarkDispatched(ctx, "01A", time.Now()))

	pending, err := out.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "01B", pending[0].ID)
	assert.Equal(t, "01C", pending[1].ID)

	assert.ErrorIs(t, out.MarkDispatched(ctx, "nope", time.Now()), domain.ErrNotFound)
}

func TestStore_UnaOfertaEnviadaPorPar(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	offer := func(id string, status entity.OfferStatus) *entity.Offer {
		return &entity.Offer{ID: id, TenantID: tenantID, CustomerID: "c1", UnitID: "u1", Status: status}
	}

	require.NoError(t, s.Offers().Create(ctx, offer("o1", entity.OfferSent)))
	err := s.Offers().Create(ctx, offer("o2", entity.OfferSent))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Caso 2: otra oferta del par en un estado distinto de Sent sí se admite.
	require.NoError(t, s.Offers().Create(ctx, offer("o3", entity.OfferCancelled)))

	// Caso 3: cancelada la enviada, el par admite una nueva.
	o1, err := s.Offers().GetByID(ctx, tenantID, "o1")
	require.NoError(t, err)
	o1.Status = entity.OfferCancelled
	require.NoError(t, s.Offers().Update(ctx, o1))
	require.NoError(t, s.Offers().Create(ctx, offer("o4", entity.OfferSent)))
}
