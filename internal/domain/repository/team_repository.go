package repository

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// TeamRepository puerto de persistencia de equipos de venta.
type TeamRepository interface {
	Create(ctx context.Context, t *entity.Team) error
	// ListByProject equipos del proyecto con sus miembros en orden de alta.
	ListByProject(ctx context.Context, tenantID, projectID string) ([]*entity.Team, error)
}
