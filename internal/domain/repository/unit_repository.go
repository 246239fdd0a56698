package repository

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// UnitRepository puerto de persistencia de unidades.
type UnitRepository interface {
	Create(ctx context.Context, u *entity.Unit) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Unit, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Unit, error)
	Update(ctx context.Context, u *entity.Unit) error
	ListByProject(ctx context.Context, tenantID, projectID string, limit, offset int) ([]*entity.Unit, error)
}

// ProjectRepository puerto de persistencia de proyectos.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Project, error)
}
