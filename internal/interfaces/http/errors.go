package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: los conflictos específicos antes que ErrConflict.
var errorMappings = []errorMapping{
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrOverAllocated, fiber.StatusUnprocessableEntity, "OVER_ALLOCATED"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrUnitUnavailable, fiber.StatusConflict, "UNIT_UNAVAILABLE"},
	{domain.ErrNoTeamAssigned, fiber.StatusConflict, "NO_TEAM_ASSIGNED"},
	{domain.ErrNoMembers, fiber.StatusConflict, "NO_MEMBERS"},
	{domain.ErrPhoneOwned, fiber.StatusConflict, "PHONE_OWNED"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrStore, fiber.StatusInternalServerError, "STORE"},
}

// StatusFor traduce un error de dominio a status HTTP y código.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// respondError escribe dto.ErrorResponse con el status que corresponde al error.
func respondError(c *fiber.Ctx, err error) error {
	status, code := StatusFor(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// actor devuelve tenant y usuario del token; responde 401 si faltan.
func actor(c *fiber.Ctx) (tenantID, userID string, ok bool) {
	tenantID, userID = GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "tenant_id y user_id requeridos"})
		return "", "", false
	}
	return tenantID, userID, true
}

func pageParams(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}
