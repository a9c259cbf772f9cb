// Package pdf genera la lista de precios del catálogo de una empresa.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + contacto    │  LISTA DE PRECIOS + Fecha   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Código de barras | Unidad | Precio │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de productos + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/windi9/dwc-pos/internal/application/usecase"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

var _ usecase.PriceListGenerator = (*PriceListGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorZebra   = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// PriceListGenerator implementa usecase.PriceListGenerator con Maroto v2.
type PriceListGenerator struct{}

func NewPriceListGenerator() *PriceListGenerator { return &PriceListGenerator{} }

// GeneratePriceList genera el PDF y devuelve sus bytes.
func (g *PriceListGenerator) GeneratePriceList(
	_ context.Context,
	company *entity.Company,
	lines []usecase.PriceListLine,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de precios", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow(len(lines)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar lista de precios: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(company *entity.Company, generatedAt time.Time) core.Row {
	contact := strings.Join(nonEmptyParts(company.Address, company.PhoneNumber, company.Email), "   |   ")
	return row.New(18).Add(
		col.New(8).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(contact, "-"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("LISTA DE PRECIOS", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Código de barras", 3, align.Left),
		h("Unidad", 1, align.Center),
		h("Precio", 2, align.Right),
	)
}

func tableRows(lines []usecase.PriceListLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for i, l := range lines {
		p := l.Product
		barcode := "-"
		if p.Barcode != nil && *p.Barcode != "" {
			barcode = *p.Barcode
		}
		r := row.New(7).Add(
			col.New(2).Add(text.New(p.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(barcode, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(1).Add(text.New(nonEmpty(l.UOMSymbol, "-"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(p.BasePrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorZebra})
		}
		out = append(out, r)
	}
	return out
}

func footerRow(count int) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Productos activos: %d", count), props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 2,
		}),
		text.New("Precios base sin impuestos. Sujetos a cambio sin previo aviso.", props.Text{
			Size: 7, Top: 7, Color: colorGray,
		}),
	))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func nonEmptyParts(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// formatMoney redondea a 2 decimales con puntos de miles y coma decimal.
// Ej: 25000 → "25.000,00", 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	buf = append(buf, ',')
	buf = append(buf, frac...)
	return string(buf)
}
