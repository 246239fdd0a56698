package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/schedule"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }

func sums(items []schedule.Item) (amount, principal decimal.Decimal) {
	amount, principal = decimal.Zero, decimal.Zero
	for _, it := range items {
		amount = amount.Add(it.Amount)
		principal = principal.Add(it.Principal)
	}
	return amount, principal
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: sin interés el total es el capital y las cuotas suman exactamente el capital.
func TestCalculate_SinInteres_TotalIgualCapital(t *testing.T) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:        d("1000000"),
		DownPayment:      d("100000"),
		InstallmentCount: 12,
		StartDate:        day(2025, time.January, 10),
		Interims:         []schedule.Interim{{MonthOffset: 6, Amount: d("200000")}},
	})
	require.NoError(t, err)

	assert.True(t, res.GrandTotal.Equal(d("1000000")))
	assert.True(t, res.TotalInterest.IsZero())
	assert.True(t, res.Financed.Equal(d("700000")))

	amount, principal := sums(res.Items)
	assert.True(t, amount.Equal(d("1000000")), "suma de cuotas %s", amount)
	assert.True(t, principal.Equal(d("1000000")))
	assert.Len(t, res.Items, 14)
}

// Caso 2: interés flat sobre el saldo; el capital sigue cuadrando y el total incluye interés.
func TestCalculate_InteresFlat(t *testing.T) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:        d("120000"),
		DownPayment:      d("20000"),
		MonthlyRate:      d("1"),
		InstallmentCount: 10,
		StartDate:        day(2025, time.March, 1),
	})
	require.NoError(t, err)

	// 100.000 × 1% × 10
	assert.True(t, res.TotalInterest.Equal(d("10000")), "interés %s", res.TotalInterest)
	assert.True(t, res.GrandTotal.Equal(d("130000")))

	amount, principal := sums(res.Items)
	assert.True(t, amount.Equal(res.GrandTotal))
	assert.True(t, principal.Equal(d("120000")))
	assert.True(t, res.Items[1].Amount.Equal(d("11000")))
}

// Caso 3: método annuity con interés compuesto; capital exacto y total = capital + interés.
func TestCalculate_Annuity(t *testing.T) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:        d("50000"),
		MonthlyRate:      d("2"),
		InstallmentCount: 24,
		StartDate:        day(2025, time.May, 15),
		Method:           entity.InterestAnnuity,
	})
	require.NoError(t, err)

	amount, principal := sums(res.Items)
	assert.True(t, principal.Equal(d("50000")), "capital %s", principal)
	assert.True(t, amount.Equal(res.GrandTotal))
	assert.True(t, res.TotalInterest.IsPositive())
	// cuota fija ≈ 2.643,56
	assert.True(t, res.Items[0].Amount.Sub(d("2643.56")).Abs().LessThanOrEqual(d("0.01")), "cuota %s", res.Items[0].Amount)
}

// Caso 4: el redondeo lo absorbe la última cuota.
func TestCalculate_RedondeoEnUltimaCuota(t *testing.T) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:        d("100"),
		InstallmentCount: 3,
		StartDate:        day(2025, time.January, 1),
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	assert.True(t, res.Items[0].Amount.Equal(d("33.33")))
	assert.True(t, res.Items[1].Amount.Equal(d("33.33")))
	assert.True(t, res.Items[2].Amount.Equal(d("33.34")))
}

// Caso 4b: saldos de pocos céntimos no dejan cuotas negativas.
func TestCalculate_CentimosSinCuotasNegativas(t *testing.T) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:        d("0.05"),
		MonthlyRate:      d("1"),
		InstallmentCount: 10,
		StartDate:        day(2025, time.January, 1),
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 10)

	for i, it := range res.Items {
		assert.False(t, it.Amount.IsNegative(), "cuota %d: %s", i+1, it.Amount)
		assert.False(t, it.Principal.IsNegative(), "capital %d: %s", i+1, it.Principal)
		assert.False(t, it.Interest.IsNegative(), "interés %d: %s", i+1, it.Interest)
	}
	amount, principal := sums(res.Items)
	assert.True(t, principal.Equal(d("0.05")), "capital %s", principal)
	assert.True(t, amount.Equal(res.GrandTotal))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones
// ──────────────────────────────────────────────────────────────────────────────

// Caso 5: inicial + intermedios por encima del capital → OverAllocated.
func TestCalculate_SobreAsignado(t *testing.T) {
	_, err := schedule.Calculate(schedule.Input{
		Principal:        d("1000"),
		DownPayment:      d("600"),
		InstallmentCount: 2,
		StartDate:        day(2025, time.January, 1),
		Interims:         []schedule.Interim{{MonthOffset: 1, Amount: d("400.02")}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOverAllocated))
}

// Caso 6: dentro de la tolerancia se acepta y los totales siguen cuadrando.
func TestCalculate_DentroDeTolerancia(t *testing.T) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:   d("1000"),
		DownPayment: d("600"),
		StartDate:   day(2025, time.January, 1),
		Interims:    []schedule.Interim{{MonthOffset: 1, Amount: d("400.01")}},
	})
	require.NoError(t, err)
	amount, principal := sums(res.Items)
	assert.True(t, amount.Equal(d("1000")))
	assert.True(t, principal.Equal(d("1000")))
}

func TestCalculate_EntradasInvalidas(t *testing.T) {
	start := day(2025, time.January, 1)
	cases := []struct {
		name string
		in   schedule.Input
	}{
		{"capital cero", schedule.Input{Principal: decimal.Zero, InstallmentCount: 1, StartDate: start}},
		{"saldo sin cuotas", schedule.Input{Principal: d("100"), StartDate: start}},
		{"cuotas negativas", schedule.Input{Principal: d("100"), InstallmentCount: -1, StartDate: start}},
		{"tasa negativa", schedule.Input{Principal: d("100"), MonthlyRate: d("-1"), InstallmentCount: 1, StartDate: start}},
		{"sin fecha", schedule.Input{Principal: d("100"), InstallmentCount: 1}},
		{"método desconocido", schedule.Input{Principal: d("100"), InstallmentCount: 1, StartDate: start, Method: "balloon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schedule.Calculate(tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation), "err = %v", err)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Fechas
// ──────────────────────────────────────────────────────────────────────────────

// Caso 7: cuotas desde la fecha de inicio, intermedios en su mes y todo ordenado por fecha.
func TestCalculate_FechasOrdenadas(t *testing.T) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:        d("10000"),
		DownPayment:      d("1000"),
		InstallmentCount: 4,
		StartDate:        day(2025, time.January, 31),
		Interims:         []schedule.Interim{{MonthOffset: 2, Amount: d("1000"), Description: "Entrega de llaves"}},
	})
	require.NoError(t, err)

	for i := 1; i < len(res.Items); i++ {
		assert.False(t, res.Items[i].DueDate.Before(res.Items[i-1].DueDate), "ítem %d fuera de orden", i)
	}
	assert.Equal(t, entity.KindDownPayment, res.Items[0].Kind)
	assert.Equal(t, day(2025, time.January, 31), res.Items[0].DueDate)
	assert.Equal(t, day(2025, time.February, 28), res.Items[2].DueDate)

	var interim *schedule.Item
	for i := range res.Items {
		if res.Items[i].Kind == entity.KindInterim {
			interim = &res.Items[i]
		}
	}
	require.NotNil(t, interim)
	assert.Equal(t, day(2025, time.March, 31), interim.DueDate)
	assert.Equal(t, "Entrega de llaves", interim.Description)
}

func TestAddMonths_FinDeMes(t *testing.T) {
	assert.Equal(t, day(2024, time.February, 29), schedule.AddMonths(day(2024, time.January, 31), 1))
	assert.Equal(t, day(2025, time.April, 30), schedule.AddMonths(day(2025, time.March, 31), 1))
	assert.Equal(t, day(2026, time.January, 15), schedule.AddMonths(day(2025, time.December, 15), 1))
}
