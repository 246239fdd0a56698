package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

func TestDeposit_CancelarYReglasDeEstado(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, unitID, _ := e.saleWithUnit(t)
	o, err := e.pipeline.UpdateSaleToReservation(ctx, tenantID, actorID, saleID, sales.ReservationInput{
		UnitID:        unitID,
		Expiry:        e.expiry(),
		DepositAmount: decimal.NewFromInt(25_000),
		Currency:      "eur",
	})
	require.NoError(t, err)
	depositID := o.Deposit.ID
	assert.Equal(t, "EUR", o.Deposit.Currency)

	// Caso 1: devolución de una seña no pagada → InvalidTransition.
	_, err = e.deposits.StartRefund(ctx, tenantID, actorID, depositID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Caso 2: cancelar la seña pendiente no toca la venta.
	d, err := e.deposits.CancelDeposit(ctx, tenantID, actorID, depositID)
	require.NoError(t, err)
	assert.Equal(t, entity.DepositCancelled, d.Status)
	assert.Equal(t, entity.SaleOpsiyonDeposit, e.sale(t, saleID).Status)

	// Caso 3: una seña cancelada no se confirma ni se cancela otra vez.
	_, err = e.deposits.ConfirmDeposit(ctx, tenantID, actorID, depositID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = e.deposits.CancelDeposit(ctx, tenantID, actorID, depositID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Caso 4: seña inexistente → NotFound.
	_, err = e.deposits.ConfirmDeposit(ctx, tenantID, actorID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeposit_ConfirmarSinOpsiyonNoMueveLaVenta(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, unitID, _ := e.saleWithUnit(t)
	o, err := e.pipeline.UpdateSaleToReservation(ctx, tenantID, actorID, saleID, sales.ReservationInput{
		UnitID:        unitID,
		Expiry:        e.expiry(),
		DepositAmount: decimal.NewFromInt(25_000),
	})
	require.NoError(t, err)
	_, err = e.pipeline.UpdateSaleStatus(ctx, tenantID, actorID, saleID, "Proposal", "")
	require.NoError(t, err)

	o, err = e.deposits.ConfirmDeposit(ctx, tenantID, actorID, o.Deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DepositPaid, o.Deposit.Status)
	assert.Equal(t, entity.SaleProposal, o.Sale.Status)
}

func TestListDeposits_PorVentaOPorOferta(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, unitID, _ := e.saleWithUnit(t)
	_, err := e.pipeline.UpdateSaleToReservation(ctx, tenantID, actorID, saleID, sales.ReservationInput{
		UnitID:        unitID,
		Expiry:        e.expiry(),
		DepositAmount: decimal.NewFromInt(25_000),
	})
	require.NoError(t, err)

	list, err := e.deposits.ListDeposits(ctx, tenantID, saleID, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Caso 2: exactamente uno de los dos filtros.
	_, err = e.deposits.ListDeposits(ctx, tenantID, "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.deposits.ListDeposits(ctx, tenantID, saleID, "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
