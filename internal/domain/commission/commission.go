// Package commission decide si un cierre genera comisión para el broker y por cuánto.
// Solo el punto de disparo; la liquidación vive fuera de este servicio.
package commission

import (
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Decision resultado de la evaluación.
type Decision struct {
	Eligible bool
	Rate     decimal.Decimal // %
	Amount   decimal.Decimal
}

// Evaluate aplica la política del broker. priorSuccesses son los cierres anteriores a este;
// en tiered se usa el tramo más alto cuyo mínimo alcanza priorSuccesses+1.
func Evaluate(b *entity.Broker, priorSuccesses int, base decimal.Decimal) Decision {
	if b == nil || !b.Active || !base.IsPositive() {
		return Decision{}
	}
	var rate decimal.Decimal
	switch b.CommissionType {
	case entity.CommissionFlat:
		rate = b.CommissionRate
	case entity.CommissionTiered:
		best := -1
		for _, t := range b.CommissionTiers {
			if t.MinSuccesses <= priorSuccesses+1 && t.MinSuccesses > best {
				best = t.MinSuccesses
				rate = t.Rate
			}
		}
		if best < 0 {
			return Decision{}
		}
	default:
		return Decision{}
	}
	if !rate.IsPositive() {
		return Decision{}
	}
	return Decision{
		Eligible: true,
		Rate:     rate,
		Amount:   base.Mul(rate).Div(hundred).Round(2),
	}
}
