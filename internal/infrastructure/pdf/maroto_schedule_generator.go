// Package pdf renderiza el cronograma de pagos de un contrato.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: N° Contrato + Fecha  │  Unidad                     │
//	│  COMPRADOR: Nombre + contacto                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Vencimiento | Concepto | Capital | Interés | Total│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Precio / Intereses / TOTAL A PAGAR                 │
//	│  FOOTER: QR con número de contrato y total                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/Emlak-api/internal/application/documents"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoScheduleGenerator implementa documents.ScheduleGenerator usando Maroto v2.
type MarotoScheduleGenerator struct {
	printer *message.Printer
}

var _ documents.ScheduleGenerator = (*MarotoScheduleGenerator)(nil)

// NewMarotoScheduleGenerator construye el generador; lang define el formato de los importes.
func NewMarotoScheduleGenerator(lang language.Tag) *MarotoScheduleGenerator {
	return &MarotoScheduleGenerator{printer: message.NewPrinter(lang)}
}

// GenerateSchedulePDF genera el PDF y devuelve sus bytes.
func (g *MarotoScheduleGenerator) GenerateSchedulePDF(_ context.Context, doc documents.ScheduleDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cronograma de pagos "+doc.Contract.ContractNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(buyerRow(doc.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(doc.Plan)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(doc.Plan))

	m.AddRows(line.NewRow(3))
	m.AddRows(g.footerRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoScheduleGenerator) headerRow(doc documents.ScheduleDocument) core.Row {
	unit := "—"
	if doc.Unit != nil {
		unit = doc.Unit.Code
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("CRONOGRAMA DE PAGOS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Unidad: "+unit, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(doc.Contract.ContractNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 3,
			}),
			text.New("Fecha: "+doc.Contract.ContractDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

func buyerRow(c *entity.Customer) core.Row {
	name, contact := "—", "—"
	if c != nil {
		name = c.Name
		contact = fmt.Sprintf("Email: %s   |   Tel: %s", nonEmpty(c.Email, "—"), nonEmpty(c.Phone, "—"))
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("COMPRADOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(contact, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Vencimiento", 2, align.Left),
		h("Concepto", 3, align.Left),
		h("Capital", 2, align.Right),
		h("Interés", 2, align.Right),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *MarotoScheduleGenerator) itemRows(p *entity.PaymentPlan) []core.Row {
	rows := make([]core.Row, 0, len(p.Items))
	for i, it := range p.Items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(it.DueDate.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(it.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(it.Principal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(it.Interest), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(it.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *MarotoScheduleGenerator) totalsRow(p *entity.PaymentPlan) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(4),
		col.New(4).Add(
			label("Precio:"),
			label("Intereses:"),
			text.New("TOTAL A PAGAR:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 10,
			}),
		),
		col.New(4).Add(
			value(g.money(p.Principal)+" "+p.Currency),
			text.New(g.money(p.TotalInterest)+" "+p.Currency, props.Text{Size: 9, Align: align.Right, Right: 1, Top: 5}),
			text.New(g.money(p.GrandTotal)+" "+p.Currency, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 10,
			}),
		),
	)
}

func (g *MarotoScheduleGenerator) footerRow(doc documents.ScheduleDocument) core.Row {
	qr := fmt.Sprintf("%s|%s|%s", doc.Contract.ContractNumber, doc.Plan.GrandTotal.StringFixed(2), doc.Plan.Currency)
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(fmt.Sprintf("Plan: %s (%d pagos)", doc.Plan.Name, len(doc.Plan.Items)), props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Las cuotas vencen en la fecha indicada; el último pago absorbe el redondeo.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separadores del idioma configurado. Ej (tr): 1.250.000,50
func (g *MarotoScheduleGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
