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
	"github.com/jhoicas/Emlak-api/internal/domain/schedule"
)

func terms(e *env) sales.PlanTerms {
	return sales.PlanTerms{
		DownPayment:      decimal.NewFromInt(100_000),
		MonthlyRate:      decimal.RequireFromString("1.5"),
		InstallmentCount: 12,
		StartDate:        e.now,
	}
}

func TestCreatePaymentPlan_CapitalPorDefectoEsElPrecio(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, _, _ := e.saleWithUnit(t)

	p, err := e.plans.CreatePaymentPlan(ctx, tenantID, actorID, saleID, decimal.Zero, terms(e))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, saleID, p.SaleID)
	assert.Equal(t, "Plan 12 cuotas", p.Name)
	assert.True(t, p.Principal.Equal(decimal.NewFromInt(1_000_000)))
	require.Len(t, p.Items, 13)

	principal, amount := decimal.Zero, decimal.Zero
	for _, it := range p.Items {
		assert.NotEmpty(t, it.ID)
		assert.Equal(t, p.ID, it.PaymentPlanID)
		principal = principal.Add(it.Principal)
		amount = amount.Add(it.Amount)
	}
	assert.True(t, principal.Equal(p.Principal), principal.String())
	assert.True(t, amount.Equal(p.GrandTotal), amount.String())
	assert.True(t, p.TotalInterest.IsPositive())

	// Caso 2: ventas cerradas no admiten planes.
	_, err = e.pipeline.UpdateSaleStatus(ctx, tenantID, actorID, saleID, "Lost", "")
	require.NoError(t, err)
	_, err = e.plans.CreatePaymentPlan(ctx, tenantID, actorID, saleID, decimal.Zero, terms(e))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCreatePaymentPlan_EnProposalRefrescaLaOfertaYSeVinculaAlContrato(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, _, offerID := e.proposal(t)

	p, err := e.plans.CreatePaymentPlan(ctx, tenantID, actorID, saleID, decimal.Zero, terms(e))
	require.NoError(t, err)

	off, err := e.offers.GetOffer(ctx, tenantID, offerID)
	require.NoError(t, err)
	require.NotNil(t, off.PaymentPlan)
	assert.True(t, off.PaymentPlan.GrandTotal.Equal(p.GrandTotal))

	o, err := e.offers.FinalizeOffer(ctx, tenantID, actorID, offerID)
	require.NoError(t, err)
	assert.True(t, o.Contract.TotalAmount.Equal(p.GrandTotal))

	linked, err := e.store.Plans().GetByContract(ctx, tenantID, o.Contract.ID)
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, p.ID, linked.ID)
}

func TestFinalizeOffer_MaterializaElPlanDeLaContraoferta(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	_, _, offerID := e.proposal(t)
	t2 := terms(e)
	n, err := e.offers.CreateNegotiation(ctx, tenantID, actorID, offerID, sales.NegotiationInput{
		ProposedPrice: decimal.NewFromInt(880_000),
		Plan:          &t2,
	})
	require.NoError(t, err)

	o, err := e.offers.ApproveNegotiation(ctx, tenantID, actorID, n.ID, decimal.Zero)
	require.NoError(t, err)
	require.NotNil(t, o.Contract)

	plan, err := e.store.Plans().GetByContract(ctx, tenantID, o.Contract.ID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.True(t, plan.Principal.Equal(decimal.NewFromInt(880_000)))
	assert.True(t, o.Contract.TotalAmount.Equal(plan.GrandTotal))
	assert.Equal(t, entity.KindDownPayment, plan.Items[0].Kind)
}

func TestPreviewSchedule_NoPersiste(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	tm := terms(e)
	res, err := e.plans.PreviewSchedule(schedule.Input{
		Principal:        decimal.NewFromInt(500_000),
		DownPayment:      tm.DownPayment,
		MonthlyRate:      tm.MonthlyRate,
		InstallmentCount: tm.InstallmentCount,
		StartDate:        tm.StartDate,
	})
	require.NoError(t, err)
	assert.Len(t, res.Items, 13)
	assert.Equal(t, entity.InterestFlat, res.Method)

	plans, err := e.store.Plans().GetLatestBySale(context.Background(), tenantID, "cualquiera")
	require.NoError(t, err)
	assert.Nil(t, plans)
}
