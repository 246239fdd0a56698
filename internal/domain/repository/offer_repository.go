package repository

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// OfferRepository puerto de persistencia de ofertas.
type OfferRepository interface {
	Create(ctx context.Context, o *entity.Offer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Offer, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Offer, error)
	Update(ctx context.Context, o *entity.Offer) error
	Delete(ctx context.Context, tenantID, id string) error
	// ListByCustomerAndUnit ofertas del par ordenadas por creación.
	ListByCustomerAndUnit(ctx context.Context, tenantID, customerID, unitID string) ([]*entity.Offer, error)
}

// NegotiationRepository puerto de persistencia de contraofertas.
type NegotiationRepository interface {
	Create(ctx context.Context, n *entity.Negotiation) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Negotiation, error)
	Update(ctx context.Context, n *entity.Negotiation) error
	// ListByOffer en orden de creación (la última es la propuesta vigente).
	ListByOffer(ctx context.Context, tenantID, offerID string) ([]*entity.Negotiation, error)
}
