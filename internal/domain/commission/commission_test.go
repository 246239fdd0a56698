package commission_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Emlak-api/internal/domain/commission"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

func TestEvaluate_Flat(t *testing.T) {
	b := &entity.Broker{Active: true, CommissionType: entity.CommissionFlat, CommissionRate: decimal.NewFromFloat(2.5)}
	dec := commission.Evaluate(b, 0, decimal.NewFromInt(1000000))
	assert.True(t, dec.Eligible)
	assert.True(t, dec.Amount.Equal(decimal.NewFromInt(25000)), "monto %s", dec.Amount)
}

func TestEvaluate_TieredPorCierres(t *testing.T) {
	b := &entity.Broker{
		Active:         true,
		CommissionType: entity.CommissionTiered,
		CommissionTiers: []entity.CommissionTier{
			{MinSuccesses: 1, Rate: decimal.NewFromInt(1)},
			{MinSuccesses: 5, Rate: decimal.NewFromInt(2)},
			{MinSuccesses: 10, Rate: decimal.NewFromInt(3)},
		},
	}
	base := decimal.NewFromInt(100000)

	assert.True(t, commission.Evaluate(b, 0, base).Rate.Equal(decimal.NewFromInt(1)))
	assert.True(t, commission.Evaluate(b, 4, base).Rate.Equal(decimal.NewFromInt(2)))
	assert.True(t, commission.Evaluate(b, 12, base).Amount.Equal(decimal.NewFromInt(3000)))
}

func TestEvaluate_SinDerecho(t *testing.T) {
	base := decimal.NewFromInt(100000)

	// broker inactivo
	assert.False(t, commission.Evaluate(&entity.Broker{CommissionType: entity.CommissionFlat, CommissionRate: decimal.NewFromInt(1)}, 0, base).Eligible)
	// sin tramo alcanzado
	tiered := &entity.Broker{Active: true, CommissionType: entity.CommissionTiered,
		CommissionTiers: []entity.CommissionTier{{MinSuccesses: 3, Rate: decimal.NewFromInt(2)}}}
	assert.False(t, commission.Evaluate(tiered, 0, base).Eligible)
	// sin monto base
	flat := &entity.Broker{Active: true, CommissionType: entity.CommissionFlat, CommissionRate: decimal.NewFromInt(1)}
	assert.False(t, commission.Evaluate(flat, 0, decimal.Zero).Eligible)
	assert.False(t, commission.Evaluate(nil, 0, base).Eligible)
}
