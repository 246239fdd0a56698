package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
	"github.com/jhoicas/Emlak-api/internal/domain/schedule"
)

// SaleHandler maneja las peticiones HTTP del pipeline de ventas (protegido).
type SaleHandler struct {
	pipeline *sales.PipelineUseCase
	assign   *sales.AssignmentUseCase
	plans    *sales.PaymentPlanUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(pipeline *sales.PipelineUseCase, assign *sales.AssignmentUseCase, plans *sales.PaymentPlanUseCase) *SaleHandler {
	return &SaleHandler{pipeline: pipeline, assign: assign, plans: plans}
}

func (h *SaleHandler) outcome(c *fiber.Ctx, status int, o *sales.Outcome, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(status).JSON(toOutcomeResponse(o))
}

// Create godoc
// @Summary      Crear venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Cliente y unidad opcional"
// @Success      201   {object}  dto.OutcomeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.pipeline.CreateSale(c.UserContext(), tenantID, userID, sales.CreateSaleInput{
		CustomerID: in.CustomerID,
		UnitID:     in.UnitID,
		AssignedTo: in.AssignedTo,
		Currency:   in.Currency,
	})
	return h.outcome(c, fiber.StatusCreated, o, err)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	s, err := h.pipeline.GetSale(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "Estado"
// @Param        assigned_to  query  string  false  "Vendedor"
// @Param        customer_id  query  string  false  "Cliente"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	page := pageParams(c)
	f := repository.SaleFilter{
		Status:     entity.SaleStatus(c.Query("status")),
		AssignedTo: c.Query("assigned_to"),
		CustomerID: c.Query("customer_id"),
	}
	list, err := h.pipeline.ListSales(c.UserContext(), tenantID, f, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.SaleListResponse{Items: make([]dto.SaleResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, s := range list {
		out.Items = append(out.Items, *toSaleResponse(s))
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OutcomeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/status [put]
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.UpdateSaleStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.pipeline.UpdateSaleStatus(c.UserContext(), tenantID, userID, c.Params("id"), in.Status, in.Notes)
	return h.outcome(c, fiber.StatusOK, o, err)
}

// MatchUnit PUT /api/sales/:id/unit
func (h *SaleHandler) MatchUnit(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.MatchUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.pipeline.MatchUnitToSale(c.UserContext(), tenantID, userID, c.Params("id"), in.UnitID)
	return h.outcome(c, fiber.StatusOK, o, err)
}

// UnmatchUnit DELETE /api/sales/:id/unit
func (h *SaleHandler) UnmatchUnit(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.pipeline.UnmatchUnitFromSale(c.UserContext(), tenantID, userID, c.Params("id"))
	return h.outcome(c, fiber.StatusOK, o, err)
}

// Reserve POST /api/sales/:id/reservation
func (h *SaleHandler) Reserve(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	expiry, err := parseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return respondError(c, err)
	}
	o, err := h.pipeline.UpdateSaleToReservation(c.UserContext(), tenantID, userID, c.Params("id"), sales.ReservationInput{
		UnitID:        in.UnitID,
		Expiry:        expiry,
		DepositAmount: in.DepositAmount,
		Currency:      in.Currency,
	})
	return h.outcome(c, fiber.StatusOK, o, err)
}

// CancelReservation DELETE /api/sales/:id/reservation
func (h *SaleHandler) CancelReservation(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.NotesRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	o, err := h.pipeline.CancelReservation(c.UserContext(), tenantID, userID, c.Params("id"), in.Notes)
	return h.outcome(c, fiber.StatusOK, o, err)
}

// Restart POST /api/sales/:id/restart
func (h *SaleHandler) Restart(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.pipeline.RestartSale(c.UserContext(), tenantID, userID, c.Params("id"))
	return h.outcome(c, fiber.StatusCreated, o, err)
}

// Assign POST /api/sales/:id/assign
func (h *SaleHandler) Assign(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.assign.AutoAssignLead(c.UserContext(), tenantID, userID, c.Params("id"))
	return h.outcome(c, fiber.StatusOK, o, err)
}

// CreatePaymentPlan godoc
// @Summary      Crear cronograma de pagos de la venta
// @Tags         payment-plans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la venta"
// @Param        body  body  dto.CreatePaymentPlanRequest  true  "Condiciones"
// @Success      201   {object}  dto.PaymentPlanResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/payment-plan [post]
func (h *SaleHandler) CreatePaymentPlan(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreatePaymentPlanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	terms, err := planTerms(in.PlanTermsRequest)
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.plans.CreatePaymentPlan(c.UserContext(), tenantID, userID, c.Params("id"), in.Principal, terms)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPaymentPlanResponse(p))
}

// PreviewSchedule POST /api/payment-plans/preview. Calcula sin persistir.
func (h *SaleHandler) PreviewSchedule(c *fiber.Ctx) error {
	var in dto.PreviewScheduleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Principal.IsZero() {
		return respondError(c, domain.Validation("principal es requerido"))
	}
	terms, err := planTerms(in.PlanTermsRequest)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.plans.PreviewSchedule(schedule.Input{
		Principal:        in.Principal,
		DownPayment:      terms.DownPayment,
		MonthlyRate:      terms.MonthlyRate,
		InstallmentCount: terms.InstallmentCount,
		StartDate:        terms.StartDate,
		Interims:         terms.Interims,
		Method:           terms.Method,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toScheduleResponse(res))
}
