package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
)

// DepositHandler señas (protegido).
type DepositHandler struct {
	uc *sales.DepositUseCase
}

// NewDepositHandler construye el handler.
func NewDepositHandler(uc *sales.DepositUseCase) *DepositHandler {
	return &DepositHandler{uc: uc}
}

// Confirm POST /api/deposits/:id/confirm
func (h *DepositHandler) Confirm(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.uc.ConfirmDeposit(c.UserContext(), tenantID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOutcomeResponse(o))
}

// StartRefund POST /api/deposits/:id/refund
func (h *DepositHandler) StartRefund(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	d, err := h.uc.StartRefund(c.UserContext(), tenantID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDepositResponse(d))
}

// ConfirmRefund POST /api/deposits/:id/refund/confirm
func (h *DepositHandler) ConfirmRefund(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.uc.ConfirmRefund(c.UserContext(), tenantID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOutcomeResponse(o))
}

// Cancel POST /api/deposits/:id/cancel
func (h *DepositHandler) Cancel(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	d, err := h.uc.CancelDeposit(c.UserContext(), tenantID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDepositResponse(d))
}

// List GET /api/deposits?sale_id=...|offer_id=...
func (h *DepositHandler) List(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	list, err := h.uc.ListDeposits(c.UserContext(), tenantID, c.Query("sale_id"), c.Query("offer_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.DepositResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDepositResponse(d))
	}
	return c.JSON(out)
}
