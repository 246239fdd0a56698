package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
)

// BrokerHandler brokers y sus leads referidos (protegido).
type BrokerHandler struct {
	uc *broker.UseCase
}

// NewBrokerHandler construye el handler.
func NewBrokerHandler(uc *broker.UseCase) *BrokerHandler {
	return &BrokerHandler{uc: uc}
}

// CreateBroker POST /api/brokers
func (h *BrokerHandler) CreateBroker(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreateBrokerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateBroker(c.UserContext(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterLead godoc
// @Summary      Registrar lead referido por un broker
// @Tags         broker-leads
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterLeadRequest  true  "Broker y teléfono"
// @Success      201   {object}  dto.BrokerLeadResponse
// @Failure      409   {object}  dto.ErrorResponse  "teléfono con dueño vigente"
// @Router       /api/broker-leads [post]
func (h *BrokerHandler) RegisterLead(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.RegisterLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RegisterLead(c.UserContext(), tenantID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetLead GET /api/broker-leads/:id
func (h *BrokerHandler) GetLead(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetLead(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// History GET /api/broker-leads/:id/history
func (h *BrokerHandler) History(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	out, err := h.uc.History(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LinkCustomer PUT /api/broker-leads/:id/customer
func (h *BrokerHandler) LinkCustomer(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.LinkCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.LinkCustomer(c.UserContext(), tenantID, c.Params("id"), in.CustomerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus PUT /api/broker-leads/:id/status
func (h *BrokerHandler) UpdateStatus(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.UpdateLeadStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateLeadStatus(c.UserContext(), tenantID, userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
