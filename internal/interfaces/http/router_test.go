package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/documents"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/application/inventory"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/memory"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Emlak-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	deps := sales.Deps{Tx: store, Policy: sales.Policy{DefaultCurrency: "TRY"}}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Pipeline:   sales.NewPipelineUseCase(deps),
		Offers:     sales.NewOfferUseCase(deps),
		Deposits:   sales.NewDepositUseCase(deps),
		Plans:      sales.NewPaymentPlanUseCase(deps),
		Assignment: sales.NewAssignmentUseCase(deps),
		Brokers:    broker.NewUseCase(store, nil, nil, nil, 0),
		Catalog:    inventory.NewCatalogUseCase(store.Projects(), store.Units(), store.Teams(), "TRY"),
		Customers:  inventory.NewCustomerUseCase(store.Customers()),
		SchedulePDF: documents.NewSchedulePDFUseCase(
			store.Contracts(), store.Plans(), store.Customers(), store.Units(),
			pdf.NewMarotoScheduleGenerator(language.Turkish),
		),
		JWTSecret: testJWTSecret,
	})
	return app
}

// call lanza la petición con el rol dado y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, role, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type fixture struct {
	projectID  string
	unitID     string
	customerID string
}

func seedCatalog(t *testing.T, app *fiber.App) fixture {
	t.Helper()
	var project dto.ProjectResponse
	require.Equal(t, http.StatusCreated, call(t, app, "admin", http.MethodPost, "/api/projects",
		dto.CreateProjectRequest{Name: "Deniz Konutları", City: "İzmir"}, &project))

	var unit dto.UnitResponse
	require.Equal(t, http.StatusCreated, call(t, app, "admin", http.MethodPost, "/api/units",
		map[string]any{"project_id": project.ID, "code": "A-101", "price": "2500000"}, &unit))

	var customer dto.CustomerResponse
	require.Equal(t, http.StatusCreated, call(t, app, "sales", http.MethodPost, "/api/customers",
		dto.CreateCustomerRequest{Name: "Ayşe Yılmaz", Phone: "05321234567"}, &customer))

	return fixture{projectID: project.ID, unitID: unit.ID, customerID: customer.ID}
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_SinToken_Retorna401(t *testing.T) {
	app := buildAPI(t)
	status := call(t, app, "", http.MethodGet, "/api/sales", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_BrokerNoCreaVentas(t *testing.T) {
	app := buildAPI(t)
	status := call(t, app, "broker", http.MethodPost, "/api/sales", dto.CreateSaleRequest{CustomerID: "x"}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRouter_FlujoVentaConUnidad(t *testing.T) {
	app := buildAPI(t)
	fx := seedCatalog(t, app)

	// Caso 1: venta con unidad → Prospect y la unidad sigue ForSale.
	var created dto.OutcomeResponse
	status := call(t, app, "sales", http.MethodPost, "/api/sales",
		dto.CreateSaleRequest{CustomerID: fx.customerID, UnitID: fx.unitID}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, created.Sale)
	assert.Equal(t, "Prospect", created.Sale.Status)
	assert.Equal(t, "TRY", created.Sale.Currency)
	assert.False(t, created.Partial)
	saleID := created.Sale.ID

	// Caso 2: segunda venta del mismo par → 409.
	var dupErr dto.ErrorResponse
	status = call(t, app, "sales", http.MethodPost, "/api/sales",
		dto.CreateSaleRequest{CustomerID: fx.customerID, UnitID: fx.unitID}, &dupErr)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", dupErr.Code)

	// Caso 3: pasar a Proposal reserva la unidad y crea la oferta.
	var moved dto.OutcomeResponse
	status = call(t, app, "sales", http.MethodPut, "/api/sales/"+saleID+"/status",
		dto.UpdateSaleStatusRequest{Status: "Proposal"}, &moved)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, moved.Offer)
	assert.Equal(t, "Proposal", moved.Sale.Status)
	assert.Equal(t, "Sent", moved.Offer.Status)

	var unit dto.UnitResponse
	require.Equal(t, http.StatusOK, call(t, app, "sales", http.MethodGet, "/api/units/"+fx.unitID, nil, &unit))
	assert.Equal(t, "Reserved", unit.Status)

	// Caso 4: estado desconocido → 400 VALIDATION.
	var badErr dto.ErrorResponse
	status = call(t, app, "sales", http.MethodPut, "/api/sales/"+saleID+"/status",
		dto.UpdateSaleStatusRequest{Status: "Archived"}, &badErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", badErr.Code)

	// Caso 5: listado filtrado por estado.
	var list dto.SaleListResponse
	require.Equal(t, http.StatusOK, call(t, app, "manager", http.MethodGet, "/api/sales?status=Proposal", nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, saleID, list.Items[0].ID)
}

func TestRouter_VentaInexistente_Retorna404(t *testing.T) {
	app := buildAPI(t)
	var errBody dto.ErrorResponse
	status := call(t, app, "sales", http.MethodGet, "/api/sales/no-existe", nil, &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}

func TestRouter_PreviewCronograma(t *testing.T) {
	app := buildAPI(t)

	// Caso 1: plan válido → cuotas cuyo capital suma el principal.
	var res dto.ScheduleResponse
	status := call(t, app, "sales", http.MethodPost, "/api/payment-plans/preview", map[string]any{
		"principal":         "120000",
		"down_payment":      "20000",
		"monthly_rate":      "0",
		"installment_count": 10,
		"start_date":        "2026-01-15",
	}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, res.Items, 11)
	assert.True(t, res.GrandTotal.Equal(decimal.NewFromInt(120000)), res.GrandTotal.String())

	// Caso 2: pagos que superan el capital → 422 OVER_ALLOCATED.
	var errBody dto.ErrorResponse
	status = call(t, app, "sales", http.MethodPost, "/api/payment-plans/preview", map[string]any{
		"principal":         "100000",
		"down_payment":      "90000",
		"monthly_rate":      "0",
		"installment_count": 2,
		"start_date":        "2026-01-15",
		"interims":          []map[string]any{{"month_offset": 1, "amount": "20000"}},
	}, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "OVER_ALLOCATED", errBody.Code)

	// Caso 3: fecha mal formada → 400.
	status = call(t, app, "sales", http.MethodPost, "/api/payment-plans/preview", map[string]any{
		"principal":         "100000",
		"installment_count": 2,
		"start_date":        "15/01/2026",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestStatusFor_MapeaErroresDeDominio(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Validation("x"), http.StatusBadRequest, "VALIDATION"},
		{domain.NotFound("sale", "1"), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("plan: %w", domain.ErrOverAllocated), http.StatusUnprocessableEntity, "OVER_ALLOCATED"},
		{fmt.Errorf("x: %w", domain.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrUnitUnavailable, http.StatusConflict, "UNIT_UNAVAILABLE"},
		{domain.ErrNoTeamAssigned, http.StatusConflict, "NO_TEAM_ASSIGNED"},
		{domain.ErrNoMembers, http.StatusConflict, "NO_MEMBERS"},
		{domain.ErrPhoneOwned, http.StatusConflict, "PHONE_OWNED"},
		{fmt.Errorf("x: %w", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
		{domain.Store("insert sale", errors.New("boom")), http.StatusInternalServerError, "STORE"},
		{errors.New("otro"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := apphttp.StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
