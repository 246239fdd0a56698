// Package schedule genera cronogramas de pago (cuota inicial, pagos intermedios y cuotas mensuales).
// Función pura: sin dependencias de infraestructura.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Tolerance margen permitido al validar que los pagos no superen el capital.
var Tolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Interim pago extraordinario a MonthOffset meses de la fecha de inicio.
type Interim struct {
	MonthOffset int
	Amount      decimal.Decimal
	Description string
}

// Input parámetros del cálculo. MonthlyRate es un porcentaje (1.5 = 1,5% mensual).
type Input struct {
	Principal        decimal.Decimal
	DownPayment      decimal.Decimal
	MonthlyRate      decimal.Decimal
	InstallmentCount int
	StartDate        time.Time
	Interims         []Interim
	Method           entity.InterestMethod
}

// Item cuota generada.
type Item struct {
	DueDate     time.Time
	Amount      decimal.Decimal
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Kind        entity.PaymentKind
	Description string
}

// Result cronograma ordenado por fecha y totales.
type Result struct {
	Items         []Item
	Principal     decimal.Decimal
	DownPayment   decimal.Decimal
	Financed      decimal.Decimal // saldo repartido en cuotas
	TotalInterest decimal.Decimal
	GrandTotal    decimal.Decimal
	Method        entity.InterestMethod
}

// Calculate valida la entrada y genera el cronograma.
// Σ Item.Principal == Principal y Σ Item.Amount == GrandTotal.
func Calculate(in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	method := in.Method
	if method == "" {
		method = entity.InterestFlat
	}

	allocated := in.DownPayment
	for _, ip := range in.Interims {
		allocated = allocated.Add(ip.Amount)
	}
	if allocated.Sub(in.Principal).GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: asignado %s, capital %s", domain.ErrOverAllocated, allocated.StringFixed(2), in.Principal.StringFixed(2))
	}
	remaining := in.Principal.Sub(allocated)
	if remaining.IsPositive() && in.InstallmentCount == 0 {
		return nil, domain.Validation("installment_count debe ser mayor a 0 si queda saldo %s", remaining.StringFixed(2))
	}

	start := dateOnly(in.StartDate)
	items := make([]Item, 0, len(in.Interims)+in.InstallmentCount+1)
	if in.DownPayment.IsPositive() {
		items = append(items, Item{
			DueDate:     start,
			Amount:      in.DownPayment,
			Principal:   in.DownPayment,
			Interest:    decimal.Zero,
			Kind:        entity.KindDownPayment,
			Description: "Cuota inicial",
		})
	}
	for i, ip := range in.Interims {
		desc := ip.Description
		if desc == "" {
			desc = fmt.Sprintf("Pago intermedio %d", i+1)
		}
		items = append(items, Item{
			DueDate:     AddMonths(start, ip.MonthOffset),
			Amount:      ip.Amount,
			Principal:   ip.Amount,
			Interest:    decimal.Zero,
			Kind:        entity.KindInterim,
			Description: desc,
		})
	}
	// dentro de la tolerancia: el exceso se descuenta del último pago asignado
	if remaining.IsNegative() && len(items) > 0 {
		last := &items[len(items)-1]
		last.Amount = last.Amount.Add(remaining)
		last.Principal = last.Principal.Add(remaining)
		remaining = decimal.Zero
	}

	totalInterest := decimal.Zero
	if remaining.IsPositive() {
		var inst []Item
		if method == entity.InterestAnnuity && in.MonthlyRate.IsPositive() {
			inst = annuity(start, remaining, in.MonthlyRate.Div(hundred), in.InstallmentCount)
		} else {
			inst = flat(start, remaining, in.MonthlyRate.Div(hundred), in.InstallmentCount)
		}
		for _, it := range inst {
			totalInterest = totalInterest.Add(it.Interest)
		}
		items = append(items, inst...)
	} else {
		remaining = decimal.Zero
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].DueDate.Before(items[j].DueDate) })

	return &Result{
		Items:         items,
		Principal:     in.Principal,
		DownPayment:   in.DownPayment,
		Financed:      remaining,
		TotalInterest: totalInterest,
		GrandTotal:    in.Principal.Add(totalInterest),
		Method:        method,
	}, nil
}

func validate(in Input) error {
	if !in.Principal.IsPositive() {
		return domain.Validation("principal debe ser mayor a 0")
	}
	if in.DownPayment.IsNegative() {
		return domain.Validation("down_payment no puede ser negativo")
	}
	if in.MonthlyRate.IsNegative() {
		return domain.Validation("monthly_rate no puede ser negativo")
	}
	if in.InstallmentCount < 0 {
		return domain.Validation("installment_count no puede ser negativo")
	}
	if in.StartDate.IsZero() {
		return domain.Validation("start_date es requerido")
	}
	switch in.Method {
	case "", entity.InterestFlat, entity.InterestAnnuity:
	default:
		return domain.Validation("interest_method desconocido %q", in.Method)
	}
	for i, ip := range in.Interims {
		if !ip.Amount.IsPositive() {
			return domain.Validation("interim %d: amount debe ser mayor a 0", i+1)
		}
		if ip.MonthOffset < 0 {
			return domain.Validation("interim %d: month_offset no puede ser negativo", i+1)
		}
	}
	return nil
}

// flat reparte el saldo en partes iguales; el interés add-on es saldo × tasa × n.
// Las cuotas base se truncan a céntimos y la última absorbe el resto, nunca negativo.
func flat(start time.Time, remaining, rate decimal.Decimal, n int) []Item {
	count := decimal.NewFromInt(int64(n))
	totalInterest := remaining.Mul(rate).Mul(count).Round(2)
	basePrincipal := remaining.Div(count).RoundFloor(2)
	baseInterest := totalInterest.Div(count).RoundFloor(2)

	items := make([]Item, 0, n)
	paidPrincipal, paidInterest := decimal.Zero, decimal.Zero
	for i := 0; i < n; i++ {
		p, in := basePrincipal, baseInterest
		if i == n-1 {
			p = remaining.Sub(paidPrincipal)
			in = totalInterest.Sub(paidInterest)
		}
		paidPrincipal = paidPrincipal.Add(p)
		paidInterest = paidInterest.Add(in)
		items = append(items, installment(start, i, n, p, in))
	}
	return items
}

// annuity cuota fija: P·r·(1+r)^n / ((1+r)^n − 1), interés sobre saldo vivo.
func annuity(start time.Time, remaining, rate decimal.Decimal, n int) []Item {
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(n)))
	payment := remaining.Mul(rate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))).Round(2)

	items := make([]Item, 0, n)
	balance := remaining
	for i := 0; i < n; i++ {
		in := balance.Mul(rate).Round(2)
		p := payment.Sub(in)
		if i == n-1 || p.GreaterThan(balance) {
			p = balance
		}
		balance = balance.Sub(p)
		items = append(items, installment(start, i, n, p, in))
	}
	return items
}

func installment(start time.Time, i, n int, principal, interest decimal.Decimal) Item {
	return Item{
		DueDate:     AddMonths(start, i),
		Amount:      principal.Add(interest),
		Principal:   principal,
		Interest:    interest,
		Kind:        entity.KindInstallment,
		Description: fmt.Sprintf("Cuota %d/%d", i+1, n),
	}
}

// AddMonths suma meses respetando el fin de mes (31-ene + 1 = 28/29-feb).
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
