// Package pdf genera el comprobante de pedido en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa                │  N° Pedido + Fecha + Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / Tel / Dirección                          │
//	│  AGENTE: Nombre / Región                                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Color | Cuello | Talla | Cant | P.Unit | Subtotal │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESGLOSE POR TALLA + TOTALES                               │
//	│  FOOTER: QR con el número de pedido + notas                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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

	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/order"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var statusLabels = map[string]string{
	entity.OrderStatusPending:   "PENDIENTE",
	entity.OrderStatusConfirmed: "CONFIRMADO",
	entity.OrderStatusShipped:   "ENVIADO",
	entity.OrderStatusDelivered: "ENTREGADO",
	entity.OrderStatusCancelled: "CANCELADO",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.OrderPDFRenderer = (*OrderReceiptGenerator)(nil)

// OrderReceiptGenerator implementa ports.OrderPDFRenderer usando Maroto v2.
type OrderReceiptGenerator struct {
	company string
}

// NewOrderReceiptGenerator company es el nombre que encabeza el comprobante.
func NewOrderReceiptGenerator(company string) *OrderReceiptGenerator {
	return &OrderReceiptGenerator{company: nonEmpty(company, "DressSync")}
}

// RenderOrder genera el PDF del pedido (ítems ya ordenados) y devuelve sus bytes.
func (g *OrderReceiptGenerator) RenderOrder(_ context.Context, o *entity.Order, agent *entity.Agent) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Pedido "+o.OrderNo, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(o))
	m.AddRows(agentRow(o, agent))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(o.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sizeBreakdownRows(o.Items)...)
	m.AddRows(totalsRow(o))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(o)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *OrderReceiptGenerator) headerRow(o *entity.Order) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.company, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Comprobante de pedido", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(o.OrderNo, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+o.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+nonEmpty(statusLabels[o.Status], strings.ToUpper(o.Status)), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 13, Color: colorPrimary,
			}),
		),
	)
}

func customerRow(o *entity.Order) core.Row {
	return row.New(15).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(o.CustomerName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Tel: %s   |   Dirección: %s",
				nonEmpty(o.CustomerPhone, "-"),
				nonEmpty(o.CustomerAddress, "-"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func agentRow(o *entity.Order, agent *entity.Agent) core.Row {
	name, region := o.AgentID, ""
	if agent != nil {
		name, region = agent.Name, agent.Region
	}
	return row.New(11).Add(
		col.New(12).Add(
			text.New("AGENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Región: %s", name, nonEmpty(region, "-")),
				props.Text{Size: 9, Top: 6}),
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
		h("Producto", 3, align.Left),
		h("Color", 2, align.Left),
		h("Cuello", 2, align.Left),
		h("Talla", 1, align.Center),
		h("Cant.", 1, align.Center),
		h("P. Unit.", 1, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func tableItemRows(items []entity.OrderItem) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(6).Add(
			cell(it.ProductType, 3, align.Left),
			cell(it.Color, 2, align.Left),
			cell(nonEmpty(it.NeckType, "-"), 2, align.Left),
			cell(it.Size, 1, align.Center),
			cell(fmt.Sprintf("%d", it.Quantity), 1, align.Center),
			cell(formatMoney(it.UnitPrice), 1, align.Right),
			cell(formatMoney(it.LineTotal), 2, align.Right),
		))
	}
	return result
}

// sizeBreakdownRows una línea "S: 2   M: 4   L: 1" con las unidades por talla del pedido.
func sizeBreakdownRows(items []entity.OrderItem) []core.Row {
	parts := make([]string, 0, 8)
	for _, st := range order.Breakdown(items, nil) {
		parts = append(parts, fmt.Sprintf("%s: %d", st.Size, st.Quantity))
	}
	return []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("UNIDADES POR TALLA", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
		row.New(6).Add(col.New(12).Add(text.New(strings.Join(parts, "   "), props.Text{
			Size: 9, Top: 1,
		}))),
	}
}

func totalsRow(o *entity.Order) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	grand := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top,
		})
	}
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			label("Unidades:"),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 6,
			}),
		),
		col.New(3).Add(
			text.New(fmt.Sprintf("%d", o.TotalQuantity), props.Text{Size: 9, Align: align.Right, Right: 1}),
			grand(formatMoney(o.TotalAmount), 6),
		),
	)
}

func footerRows(o *entity.Order) []core.Row {
	rows := []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr(o.OrderNo, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Número de pedido", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New(o.OrderNo, props.Text{Style: fontstyle.Bold, Size: 11, Top: 9, Left: 3, Color: colorPrimary}),
			),
		),
	}
	if o.Notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+o.Notes, props.Text{Size: 8, Color: colorGray, Top: 2}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney dos decimales con separador de miles.
// Ej: 25000 → "$25,000.00", -1234.5 → "-$1,234.50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + string(buf) + frac
}
