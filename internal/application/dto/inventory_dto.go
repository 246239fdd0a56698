package dto

import "github.com/shopspring/decimal"

// CreateProjectRequest body para POST /api/projects.
type CreateProjectRequest struct {
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// ProjectResponse proyecto en respuestas.
type ProjectResponse struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CreateUnitRequest body para POST /api/units. La unidad nace ForSale.
type CreateUnitRequest struct {
	ProjectID string          `json:"project_id"`
	Code      string          `json:"code"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency,omitempty"`
}

// UnitResponse unidad en respuestas.
type UnitResponse struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Code      string          `json:"code"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
}

// UnitListResponse listado paginado de unidades de un proyecto.
type UnitListResponse struct {
	Items []UnitResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// CustomerListResponse listado paginado de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateTeamRequest body para POST /api/teams. El orden de MemberIDs decide los empates de asignación.
type CreateTeamRequest struct {
	Name       string   `json:"name"`
	ProjectIDs []string `json:"project_ids"`
	MemberIDs  []string `json:"member_ids"`
}

// TeamResponse equipo en respuestas.
type TeamResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ProjectIDs []string `json:"project_ids"`
	MemberIDs  []string `json:"member_ids"`
}
