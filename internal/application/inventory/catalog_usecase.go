package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

// CatalogUseCase proyectos, unidades y equipos de venta.
// El estado de las unidades solo lo cambia el pipeline; aquí nacen ForSale.
type CatalogUseCase struct {
	projects        repository.ProjectRepository
	units           repository.UnitRepository
	teams           repository.TeamRepository
	defaultCurrency string
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(projects repository.ProjectRepository, units repository.UnitRepository, teams repository.TeamRepository, defaultCurrency string) *CatalogUseCase {
	if defaultCurrency == "" {
		defaultCurrency = "TRY"
	}
	return &CatalogUseCase{projects: projects, units: units, teams: teams, defaultCurrency: defaultCurrency}
}

// CreateProject crea un proyecto.
func (uc *CatalogUseCase) CreateProject(ctx context.Context, tenantID string, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("name es requerido")
	}
	p := &entity.Project{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      strings.TrimSpace(in.Name),
		City:      in.City,
		CreatedAt: time.Now(),
	}
	if err := uc.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return &dto.ProjectResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Name:      p.Name,
		City:      p.City,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}, nil
}

// CreateUnit crea una unidad ForSale dentro de un proyecto del tenant.
func (uc *CatalogUseCase) CreateUnit(ctx context.Context, tenantID string, in dto.CreateUnitRequest) (*dto.UnitResponse, error) {
	if in.ProjectID == "" || strings.TrimSpace(in.Code) == "" {
		return nil, domain.Validation("project_id y code son requeridos")
	}
	if !in.Price.IsPositive() {
		return nil, domain.Validation("price debe ser mayor a 0")
	}
	code := strings.ToUpper(strings.TrimSpace(in.Currency))
	if code == "" {
		code = uc.defaultCurrency
	}
	cur, err := currency.ParseISO(code)
	if err != nil {
		return nil, domain.Validation("moneda inválida %q", in.Currency)
	}
	p, err := uc.projects.GetByID(ctx, tenantID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("project", in.ProjectID)
	}
	now := time.Now()
	u := &entity.Unit{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ProjectID: p.ID,
		Code:      strings.TrimSpace(in.Code),
		Status:    entity.UnitForSale,
		Price:     in.Price.Round(2),
		Currency:  cur.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.units.Create(ctx, u); err != nil {
		return nil, err
	}
	return toUnitResponse(u), nil
}

// GetUnit obtiene una unidad.
func (uc *CatalogUseCase) GetUnit(ctx context.Context, tenantID, id string) (*dto.UnitResponse, error) {
	u, err := uc.units.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("unit", id)
	}
	return toUnitResponse(u), nil
}

// ListUnits lista las unidades de un proyecto.
func (uc *CatalogUseCase) ListUnits(ctx context.Context, tenantID, projectID string, limit, offset int) (*dto.UnitListResponse, error) {
	if projectID == "" {
		return nil, domain.Validation("project_id es requerido")
	}
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.units.ListByProject(ctx, tenantID, projectID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UnitResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toUnitResponse(u))
	}
	return &dto.UnitListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// CreateTeam crea un equipo; los proyectos deben existir y los miembros no repetirse.
func (uc *CatalogUseCase) CreateTeam(ctx context.Context, tenantID string, in dto.CreateTeamRequest) (*dto.TeamResponse, error) {
	if strings.TrimSpace(in.Name) == "" || len(in.ProjectIDs) == 0 {
		return nil, domain.Validation("name y project_ids son requeridos")
	}
	for _, id := range in.ProjectIDs {
		p, err := uc.projects.GetByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFound("project", id)
		}
	}
	seen := make(map[string]bool, len(in.MemberIDs))
	members := make([]string, 0, len(in.MemberIDs))
	for _, m := range in.MemberIDs {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}
	t := &entity.Team{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Name:       strings.TrimSpace(in.Name),
		ProjectIDs: in.ProjectIDs,
		MemberIDs:  members,
		CreatedAt:  time.Now(),
	}
	if err := uc.teams.Create(ctx, t); err != nil {
		return nil, err
	}
	return &dto.TeamResponse{ID: t.ID, Name: t.Name, ProjectIDs: t.ProjectIDs, MemberIDs: t.MemberIDs}, nil
}

func toUnitResponse(u *entity.Unit) *dto.UnitResponse {
	return &dto.UnitResponse{
		ID:        u.ID,
		ProjectID: u.ProjectID,
		Code:      u.Code,
		Status:    string(u.Status),
		Price:     u.Price,
		Currency:  u.Currency,
	}
}
