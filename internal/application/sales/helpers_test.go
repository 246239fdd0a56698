package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/memory"
)

const (
	tenantID = "tenant-1"
	actorID  = "user-1"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de pruebas: store en memoria + casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	store    *memory.Store
	pipeline *sales.PipelineUseCase
	offers   *sales.OfferUseCase
	deposits *sales.DepositUseCase
	plans    *sales.PaymentPlanUseCase
	assign   *sales.AssignmentUseCase
	now      time.Time
}

func newEnv(t *testing.T, policy sales.SideEffectPolicy) *env {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	deps := sales.Deps{
		Tx:     store,
		Policy: sales.Policy{SideEffects: policy, DefaultCurrency: "TRY"},
		Now:    func() time.Time { return now },
	}
	return &env{
		store:    store,
		pipeline: sales.NewPipelineUseCase(deps),
		offers:   sales.NewOfferUseCase(deps),
		deposits: sales.NewDepositUseCase(deps),
		plans:    sales.NewPaymentPlanUseCase(deps),
		assign:   sales.NewAssignmentUseCase(deps),
		now:      now,
	}
}

func (e *env) project(t *testing.T) string {
	t.Helper()
	p := &entity.Project{ID: uuid.NewString(), TenantID: tenantID, Name: "Deniz Konutları", CreatedAt: e.now}
	require.NoError(t, e.store.Projects().Create(context.Background(), p))
	return p.ID
}

func (e *env) unit(t *testing.T, projectID, code string, price int64) string {
	t.Helper()
	u := &entity.Unit{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ProjectID: projectID,
		Code:      code,
		Status:    entity.UnitForSale,
		Price:     decimal.NewFromInt(price),
		Currency:  "TRY",
		CreatedAt: e.now,
		UpdatedAt: e.now,
	}
	require.NoError(t, e.store.Units().Create(context.Background(), u))
	return u.ID
}

func (e *env) customer(t *testing.T, name string) string {
	t.Helper()
	c := &entity.Customer{ID: uuid.NewString(), TenantID: tenantID, Name: name, CreatedAt: e.now, UpdatedAt: e.now}
	require.NoError(t, e.store.Customers().Create(context.Background(), c))
	return c.ID
}

func (e *env) team(t *testing.T, projectID string, members ...string) {
	t.Helper()
	tm := &entity.Team{ID: uuid.NewString(), TenantID: tenantID, Name: "Equipo", ProjectIDs: []string{projectID}, MemberIDs: members, CreatedAt: e.now}
	require.NoError(t, e.store.Teams().Create(context.Background(), tm))
}

// saleWithUnit crea proyecto, unidad, cliente y una venta Prospect.
func (e *env) saleWithUnit(t *testing.T) (saleID, unitID, customerID string) {
	t.Helper()
	unitID = e.unit(t, e.project(t), "A-"+uuid.NewString()[:4], 1_000_000)
	customerID = e.customer(t, "Ayşe Yılmaz")
	o, err := e.pipeline.CreateSale(context.Background(), tenantID, actorID, sales.CreateSaleInput{CustomerID: customerID, UnitID: unitID})
	require.NoError(t, err)
	return o.Sale.ID, unitID, customerID
}

func (e *env) unitStatus(t *testing.T, unitID string) entity.UnitStatus {
	t.Helper()
	u, err := e.store.Units().GetByID(context.Background(), tenantID, unitID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.Status
}

func (e *env) sale(t *testing.T, saleID string) *entity.Sale {
	t.Helper()
	s, err := e.store.Sales().GetByID(context.Background(), tenantID, saleID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (e *env) expiry() time.Time {
	return e.now.AddDate(0, 0, 7)
}
