package sales

import "github.com/jhoicas/Emlak-api/internal/domain/entity"

// Pasos secundarios que pueden fallar sin abortar el comando (política best_effort).
const (
	StepTrackingOffer = "tracking_offer"
	StepCarryUnit     = "carry_unit"
)

// FailedStep paso secundario que no se aplicó.
type FailedStep struct {
	Step string
	Err  error
}

// Outcome resultado de un comando del pipeline.
type Outcome struct {
	Sale          *entity.Sale
	Offer         *entity.Offer
	Deposit       *entity.Deposit
	Contract      *entity.Contract
	Negotiation   *entity.Negotiation
	RefundStarted bool
	Failed        []FailedStep
}

// Partial true si algún paso secundario falló.
func (o *Outcome) Partial() bool {
	return len(o.Failed) > 0
}
