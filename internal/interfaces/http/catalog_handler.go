package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/application/inventory"
)

// CatalogHandler proyectos, unidades, equipos y clientes (protegido).
type CatalogHandler struct {
	catalog   *inventory.CatalogUseCase
	customers *inventory.CustomerUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(catalog *inventory.CatalogUseCase, customers *inventory.CustomerUseCase) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, customers: customers}
}

// CreateProject POST /api/projects
func (h *CatalogHandler) CreateProject(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.catalog.CreateProject(c.UserContext(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateUnit godoc
// @Summary      Crear unidad
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUnitRequest  true  "Datos de la unidad"
// @Success      201   {object}  dto.UnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/units [post]
func (h *CatalogHandler) CreateUnit(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreateUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.catalog.CreateUnit(c.UserContext(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetUnit GET /api/units/:id
func (h *CatalogHandler) GetUnit(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	out, err := h.catalog.GetUnit(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListUnits GET /api/units?project_id=...&limit=20&offset=0
func (h *CatalogHandler) ListUnits(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	page := pageParams(c)
	out, err := h.catalog.ListUnits(c.UserContext(), tenantID, c.Query("project_id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateTeam POST /api/teams
func (h *CatalogHandler) CreateTeam(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreateTeamRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.catalog.CreateTeam(c.UserContext(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateCustomer POST /api/customers
func (h *CatalogHandler) CreateCustomer(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.customers.Create(c.UserContext(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCustomers GET /api/customers?limit=20&offset=0
func (h *CatalogHandler) ListCustomers(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	page := pageParams(c)
	out, err := h.customers.List(c.UserContext(), tenantID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
