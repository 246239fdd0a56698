package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
)

// OfferHandler ofertas y contraofertas (protegido).
type OfferHandler struct {
	uc *sales.OfferUseCase
}

// NewOfferHandler construye el handler.
func NewOfferHandler(uc *sales.OfferUseCase) *OfferHandler {
	return &OfferHandler{uc: uc}
}

// GetByID GET /api/offers/:id
func (h *OfferHandler) GetByID(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.uc.GetOffer(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOfferResponse(o))
}

// CreateNegotiation godoc
// @Summary      Proponer contraoferta
// @Tags         offers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la oferta"
// @Param        body  body  dto.CreateNegotiationRequest  true  "Propuesta"
// @Success      201   {object}  dto.NegotiationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/offers/{id}/negotiations [post]
func (h *OfferHandler) CreateNegotiation(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreateNegotiationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	validUntil, err := parseOptionalDate("proposed_valid_until", in.ProposedValidUntil)
	if err != nil {
		return respondError(c, err)
	}
	neg := sales.NegotiationInput{
		Source:             negotiationSource(in.Source),
		ProposedPrice:      in.ProposedPrice,
		ProposedCurrency:   in.ProposedCurrency,
		ProposedValidUntil: validUntil,
		Notes:              in.Notes,
	}
	if in.PaymentPlan != nil {
		terms, err := planTerms(*in.PaymentPlan)
		if err != nil {
			return respondError(c, err)
		}
		neg.Plan = &terms
	}
	n, err := h.uc.CreateNegotiation(c.UserContext(), tenantID, userID, c.Params("id"), neg)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toNegotiationResponse(n))
}

// ListNegotiations GET /api/offers/:id/negotiations
func (h *OfferHandler) ListNegotiations(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	list, err := h.uc.ListNegotiations(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.NegotiationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, toNegotiationResponse(n))
	}
	return c.JSON(out)
}

// Finalize POST /api/offers/:id/finalize
func (h *OfferHandler) Finalize(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.uc.FinalizeOffer(c.UserContext(), tenantID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOutcomeResponse(o))
}

// Approve POST /api/offers/:id/approve
func (h *OfferHandler) Approve(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	o, err := h.uc.ApproveOfferDirectly(c.UserContext(), tenantID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOfferResponse(o))
}

// ApproveNegotiation POST /api/negotiations/:id/approve
func (h *OfferHandler) ApproveNegotiation(c *fiber.Ctx) error {
	tenantID, userID, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.ApproveNegotiationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	o, err := h.uc.ApproveNegotiation(c.UserContext(), tenantID, userID, c.Params("id"), in.DepositAmount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOutcomeResponse(o))
}

// RejectNegotiation POST /api/negotiations/:id/reject
func (h *OfferHandler) RejectNegotiation(c *fiber.Ctx) error {
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
	n, err := h.uc.RejectNegotiation(c.UserContext(), tenantID, userID, c.Params("id"), in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toNegotiationResponse(n))
}
