package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// BrokerRepository puerto de persistencia de brokers.
type BrokerRepository interface {
	Create(ctx context.Context, b *entity.Broker) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Broker, error)
}

// BrokerLeadRepository puerto de persistencia de leads referidos y su historial.
type BrokerLeadRepository interface {
	Create(ctx context.Context, l *entity.BrokerLead) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.BrokerLead, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.BrokerLead, error)
	GetByCustomer(ctx context.Context, tenantID, customerID string) (*entity.BrokerLead, error)
	// GetOwnerOfPhone lead que mantiene la propiedad del teléfono en at; nil si está libre.
	GetOwnerOfPhone(ctx context.Context, tenantID, phone string, at time.Time) (*entity.BrokerLead, error)
	Update(ctx context.Context, l *entity.BrokerLead) error
	AppendHistory(ctx context.Context, h *entity.LeadHistory) error
	ListHistory(ctx context.Context, leadID string) ([]*entity.LeadHistory, error)
}

// CommissionRepository puerto de persistencia de comisiones.
type CommissionRepository interface {
	Create(ctx context.Context, c *entity.Commission) error
	GetByLead(ctx context.Context, tenantID, leadID string) (*entity.Commission, error)
	CountByBroker(ctx context.Context, tenantID, brokerID string) (int, error)
}
