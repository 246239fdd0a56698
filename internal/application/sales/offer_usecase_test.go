package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// proposal deja una venta en Proposal y devuelve venta, unidad y oferta.
func (e *env) proposal(t *testing.T) (saleID, unitID, offerID string) {
	t.Helper()
	saleID, unitID, _ = e.saleWithUnit(t)
	o, err := e.pipeline.UpdateSaleStatus(context.Background(), tenantID, actorID, saleID, "Proposal", "")
	require.NoError(t, err)
	require.NotNil(t, o.Offer)
	return saleID, unitID, o.Offer.ID
}

func (e *env) counter(t *testing.T, offerID string, price int64) string {
	t.Helper()
	n, err := e.offers.CreateNegotiation(context.Background(), tenantID, actorID, offerID, sales.NegotiationInput{
		Source:        entity.SourceCustomer,
		ProposedPrice: decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return n.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Contraofertas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateNegotiation_NoModificaLaOferta(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	_, _, offerID := e.proposal(t)

	validUntil := e.now.AddDate(0, 1, 0)
	n, err := e.offers.CreateNegotiation(ctx, tenantID, actorID, offerID, sales.NegotiationInput{
		ProposedPrice:      decimal.NewFromInt(900_000),
		ProposedValidUntil: &validUntil,
		Plan: &sales.PlanTerms{
			DownPayment:      decimal.NewFromInt(100_000),
			InstallmentCount: 8,
			StartDate:        e.now,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationPending, n.Status)
	assert.Equal(t, entity.SourceSales, n.Source)
	assert.Equal(t, "TRY", n.ProposedCurrency)
	require.NotNil(t, n.ProposedPaymentPlan)
	assert.True(t, n.ProposedPaymentPlan.Principal.Equal(decimal.NewFromInt(900_000)))

	off, err := e.offers.GetOffer(ctx, tenantID, offerID)
	require.NoError(t, err)
	assert.True(t, off.Price.Equal(decimal.NewFromInt(1_000_000)))
	assert.Equal(t, entity.OfferSent, off.Status)

	// Caso 2: precio no positivo → Validation.
	_, err = e.offers.CreateNegotiation(ctx, tenantID, actorID, offerID, sales.NegotiationInput{ProposedPrice: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Caso 3: plan que supera el precio → OverAllocated.
	_, err = e.offers.CreateNegotiation(ctx, tenantID, actorID, offerID, sales.NegotiationInput{
		ProposedPrice: decimal.NewFromInt(100_000),
		Plan:          &sales.PlanTerms{DownPayment: decimal.NewFromInt(200_000), StartDate: e.now},
	})
	assert.ErrorIs(t, err, domain.ErrOverAllocated)
}

func TestRejectNegotiation_SoloPendientes(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	_, _, offerID := e.proposal(t)
	negID := e.counter(t, offerID, 950_000)

	n, err := e.offers.RejectNegotiation(ctx, tenantID, actorID, negID, "muy bajo")
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationRejected, n.Status)
	assert.Equal(t, "muy bajo", n.Notes)
	assert.NotNil(t, n.DecidedAt)

	_, err = e.offers.RejectNegotiation(ctx, tenantID, actorID, negID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.offers.RejectNegotiation(ctx, tenantID, actorID, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApproveNegotiation_ConSena_FlujoHastaContrato(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, unitID, offerID := e.proposal(t)
	approved := e.counter(t, offerID, 900_000)
	competing := e.counter(t, offerID, 850_000)

	// Caso 1: aprobar con seña → oferta y venta esperan la seña.
	o, err := e.offers.ApproveNegotiation(ctx, tenantID, actorID, approved, decimal.NewFromInt(50_000))
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationApproved, o.Negotiation.Status)
	assert.Equal(t, entity.OfferDepositPending, o.Offer.Status)
	assert.True(t, o.Offer.Price.Equal(decimal.NewFromInt(900_000)))
	assert.Equal(t, entity.SaleTeklifDeposit, o.Sale.Status)
	assert.True(t, o.Sale.FinalPrice.Decimal.Equal(decimal.NewFromInt(900_000)))
	require.NotNil(t, o.Deposit)
	assert.Equal(t, offerID, o.Deposit.OfferID)
	assert.Empty(t, o.Deposit.SaleID)
	assert.Nil(t, o.Contract)

	// las demás contraofertas pendientes se rechazan
	list, err := e.offers.ListNegotiations(ctx, tenantID, offerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		if n.ID == competing {
			assert.Equal(t, entity.NegotiationRejected, n.Status)
		}
	}

	// Caso 2: confirmar la seña cierra la oferta: contrato, venta Sold, unidad vendida.
	o, err = e.deposits.ConfirmDeposit(ctx, tenantID, actorID, o.Deposit.ID)
	require.NoError(t, err)
	require.NotNil(t, o.Contract)
	assert.Equal(t, entity.ContractNumberFor(offerID), o.Contract.ContractNumber)
	assert.Equal(t, saleID, o.Contract.SaleID)
	assert.True(t, o.Contract.Amount.Equal(decimal.NewFromInt(900_000)))
	assert.Equal(t, entity.OfferAccepted, o.Offer.Status)
	assert.Equal(t, entity.SaleSold, e.sale(t, saleID).Status)
	assert.NotNil(t, e.sale(t, saleID).ContractDate)
	assert.Equal(t, entity.UnitSold, e.unitStatus(t, unitID))

	// Caso 3: cerrar otra vez devuelve el mismo contrato.
	again, err := e.offers.FinalizeOffer(ctx, tenantID, actorID, offerID)
	require.NoError(t, err)
	assert.Equal(t, o.Contract.ID, again.Contract.ID)
}

func TestApproveNegotiation_SinSena_CierraDirecto(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, unitID, offerID := e.proposal(t)
	negID := e.counter(t, offerID, 920_000)

	o, err := e.offers.ApproveNegotiation(ctx, tenantID, actorID, negID, decimal.Zero)
	require.NoError(t, err)
	require.NotNil(t, o.Contract)
	assert.Nil(t, o.Deposit)
	assert.Equal(t, entity.OfferAccepted, o.Offer.Status)
	assert.Equal(t, entity.SaleSold, e.sale(t, saleID).Status)
	assert.Equal(t, entity.UnitSold, e.unitStatus(t, unitID))

	// Caso 2: la oferta aceptada ya no admite contraofertas.
	_, err = e.offers.CreateNegotiation(ctx, tenantID, actorID, offerID, sales.NegotiationInput{ProposedPrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApproveOfferDirectly_CopiaUltimaContraoferta(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, unitID, offerID := e.proposal(t)
	e.counter(t, offerID, 980_000)
	e.counter(t, offerID, 960_000)

	off, err := e.offers.ApproveOfferDirectly(ctx, tenantID, actorID, offerID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferAccepted, off.Status)
	assert.True(t, off.Price.Equal(decimal.NewFromInt(960_000)))
	assert.NotNil(t, off.AcceptedAt)

	// no toca venta, unidad ni contrato
	assert.Equal(t, entity.SaleProposal, e.sale(t, saleID).Status)
	assert.Equal(t, entity.UnitReserved, e.unitStatus(t, unitID))
	c, err := e.store.Contracts().GetByNumber(ctx, tenantID, entity.ContractNumberFor(offerID))
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = e.offers.ApproveOfferDirectly(ctx, tenantID, actorID, offerID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDiscardOffers_ConservaOfertaConSenaPagada(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, _, offerID := e.proposal(t)
	negID := e.counter(t, offerID, 900_000)
	o, err := e.offers.ApproveNegotiation(ctx, tenantID, actorID, negID, decimal.NewFromInt(20_000))
	require.NoError(t, err)
	depositID := o.Deposit.ID

	// seña pendiente: al perder la venta se cancela junto con la oferta
	_, err = e.pipeline.UpdateSaleStatus(ctx, tenantID, actorID, saleID, "Lost", "")
	require.NoError(t, err)
	off, err := e.store.Offers().GetByID(ctx, tenantID, offerID)
	require.NoError(t, err)
	require.NotNil(t, off)
	assert.Equal(t, entity.OfferCancelled, off.Status)
	d, err := e.store.Deposits().GetByID(ctx, tenantID, depositID)
	require.NoError(t, err)
	assert.Equal(t, entity.DepositCancelled, d.Status)

	// Caso 2: con seña pagada la oferta se conserva.
	saleID2, _, offerID2 := e.proposal(t)
	negID2 := e.counter(t, offerID2, 700_000)
	o, err = e.offers.ApproveNegotiation(ctx, tenantID, actorID, negID2, decimal.NewFromInt(20_000))
	require.NoError(t, err)
	require.NoError(t, e.store.Deposits().Update(ctx, paid(o.Deposit, e.now)))

	_, err = e.pipeline.UpdateSaleStatus(ctx, tenantID, actorID, saleID2, "Prospect", "")
	require.NoError(t, err)
	off, err = e.store.Offers().GetByID(ctx, tenantID, offerID2)
	require.NoError(t, err)
	require.NotNil(t, off)
	assert.Equal(t, entity.OfferDepositPending, off.Status)
}

func paid(d *entity.Deposit, at time.Time) *entity.Deposit {
	d.Status = entity.DepositPaid
	d.PaidAt = &at
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre sin venta asociada
// ──────────────────────────────────────────────────────────────────────────────

func TestFinalizeOffer_OfertaCanceladaNoCierra(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, _, offerID := e.proposal(t)
	negID := e.counter(t, offerID, 900_000)
	_, err := e.offers.ApproveNegotiation(ctx, tenantID, actorID, negID, decimal.NewFromInt(20_000))
	require.NoError(t, err)
	_, err = e.pipeline.UpdateSaleStatus(ctx, tenantID, actorID, saleID, "Lost", "")
	require.NoError(t, err)

	_, err = e.offers.FinalizeOffer(ctx, tenantID, actorID, offerID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.offers.FinalizeOffer(ctx, tenantID, actorID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
