// Package order compone pedidos multi-producto: aplana las tallas de cada línea en
// ítems, calcula subtotales y el desglose por talla. Es cálculo puro, sin acceso a datos.
package order

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// DefaultSizeOrder orden de tallas cuando el catálogo no define uno.
var DefaultSizeOrder = []string{"XXS", "XS", "S", "M", "L", "XL", "XXL", "XXXL", "4XL", "5XL"}

// Line línea de producto tal como la arma el agente: un tipo/color/cuello con cantidades por talla.
type Line struct {
	ProductType string
	Color       string
	NeckType    string
	UnitPrice   decimal.Decimal
	Sizes       map[string]int
}

// LineSummary subtotal de una línea ya normalizada.
type LineSummary struct {
	ProductType string
	Color       string
	NeckType    string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
	Sizes       map[string]int
}

// SizeTotal cantidad total de una talla sumando todas las líneas.
type SizeTotal struct {
	Size     string
	Quantity int
}

// Composition resultado derivado del pedido.
type Composition struct {
	Items         []entity.OrderItem
	Lines         []LineSummary
	SizeBreakdown []SizeTotal
	TotalQuantity int
	TotalAmount   decimal.Decimal
}

// Catalog valores activos del catálogo por categoría. Una categoría vacía no se valida.
type Catalog struct {
	ProductTypes []string
	Colors       []string
	Sizes        []string // en orden de presentación
	NeckTypes    []string
}

// CatalogFrom agrupa las entradas activas de product_config (ya ordenadas por sort_order).
func CatalogFrom(entries []*entity.ProductConfig) Catalog {
	var c Catalog
	for _, e := range entries {
		if !e.Active {
			continue
		}
		switch e.Category {
		case entity.ConfigProductType:
			c.ProductTypes = append(c.ProductTypes, e.Value)
		case entity.ConfigColor:
			c.Colors = append(c.Colors, e.Value)
		case entity.ConfigSize:
			c.Sizes = append(c.Sizes, e.Value)
		case entity.ConfigNeckType:
			c.NeckTypes = append(c.NeckTypes, e.Value)
		}
	}
	return c
}

// NormalizeName recorta espacios y aplica mayúscula inicial por palabra ("navy  blue" -> "Navy Blue").
// cases.Caser guarda estado, por eso se crea uno por llamada.
func NormalizeName(s string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(s), " "))
}

// NormalizeSize recorta y pasa a mayúsculas ("xl " -> "XL").
func NormalizeSize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Compose valida y compone el pedido. Las líneas sin cantidad se descartan;
// si no queda ninguna unidad el pedido es inválido.
func Compose(lines []Line, catalog Catalog) (*Composition, error) {
	var msgs []string
	rank := sizeRank(catalog.Sizes)

	comp := &Composition{TotalAmount: decimal.Zero}
	bySize := map[string]int{}

	for i, in := range lines {
		pos := i + 1
		productType := NormalizeName(in.ProductType)
		color := NormalizeName(in.Color)
		neck := NormalizeName(in.NeckType)

		if productType == "" {
			msgs = append(msgs, fmt.Sprintf("línea %d: product_type es requerido", pos))
		} else if !allowed(catalog.ProductTypes, productType, NormalizeName) {
			msgs = append(msgs, fmt.Sprintf("línea %d: tipo de producto %q no está en el catálogo", pos, productType))
		}
		if color == "" {
			msgs = append(msgs, fmt.Sprintf("línea %d: color es requerido", pos))
		} else if !allowed(catalog.Colors, color, NormalizeName) {
			msgs = append(msgs, fmt.Sprintf("línea %d: color %q no está en el catálogo", pos, color))
		}
		if neck != "" && !allowed(catalog.NeckTypes, neck, NormalizeName) {
			msgs = append(msgs, fmt.Sprintf("línea %d: tipo de cuello %q no está en el catálogo", pos, neck))
		}
		if in.UnitPrice.IsNegative() {
			msgs = append(msgs, fmt.Sprintf("línea %d: unit_price no puede ser negativo", pos))
		}

		sizes := map[string]int{}
		qty := 0
		rawSizes := make([]string, 0, len(in.Sizes))
		for k := range in.Sizes {
			rawSizes = append(rawSizes, k)
		}
		sort.Strings(rawSizes)
		for _, rawSize := range rawSizes {
			q := in.Sizes[rawSize]
			size := NormalizeSize(rawSize)
			if q < 0 {
				msgs = append(msgs, fmt.Sprintf("línea %d: cantidad negativa en talla %s", pos, size))
				continue
			}
			if q == 0 {
				continue
			}
			if size == "" {
				msgs = append(msgs, fmt.Sprintf("línea %d: talla vacía", pos))
				continue
			}
			if len(catalog.Sizes) > 0 && !allowed(catalog.Sizes, size, NormalizeSize) {
				msgs = append(msgs, fmt.Sprintf("línea %d: talla %q no está en el catálogo", pos, size))
				continue
			}
			sizes[size] += q
			qty += q
		}
		if qty == 0 {
			continue
		}

		price := in.UnitPrice.Round(2)
		summary := LineSummary{
			ProductType: productType,
			Color:       color,
			NeckType:    neck,
			UnitPrice:   price,
			Quantity:    qty,
			Subtotal:    decimal.Zero,
			Sizes:       sizes,
		}
		for _, size := range sortSizes(keys(sizes), rank) {
			q := sizes[size]
			lineTotal := price.Mul(decimal.NewFromInt(int64(q)))
			comp.Items = append(comp.Items, entity.OrderItem{
				ProductType: productType,
				Color:       color,
				NeckType:    neck,
				Size:        size,
				Quantity:    q,
				UnitPrice:   price,
				LineTotal:   lineTotal,
			})
			summary.Subtotal = summary.Subtotal.Add(lineTotal)
			bySize[size] += q
		}
		comp.Lines = append(comp.Lines, summary)
		comp.TotalQuantity += qty
		comp.TotalAmount = comp.TotalAmount.Add(summary.Subtotal)
	}

	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}
	if comp.TotalQuantity == 0 {
		return nil, domain.NewValidationError("el pedido no tiene unidades")
	}

	for _, size := range sortSizes(keys(bySize), rank) {
		comp.SizeBreakdown = append(comp.SizeBreakdown, SizeTotal{Size: size, Quantity: bySize[size]})
	}
	comp.TotalAmount = comp.TotalAmount.Round(2)
	return comp, nil
}

func allowed(list []string, v string, norm func(string) string) bool {
	if len(list) == 0 {
		return true
	}
	for _, s := range list {
		if norm(s) == v {
			return true
		}
	}
	return false
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// sortSizes ordena según el rango conocido; las tallas desconocidas van al final en orden alfabético.
func sortSizes(sizes []string, rank map[string]int) []string {
	sort.SliceStable(sizes, func(i, j int) bool { return sizeLess(sizes[i], sizes[j], rank) })
	return sizes
}

func sizeLess(a, b string, rank map[string]int) bool {
	ra, okA := rank[a]
	rb, okB := rank[b]
	switch {
	case okA && okB:
		return ra < rb
	case okA:
		return true
	case okB:
		return false
	}
	return a < b
}

func sizeRank(sizeOrder []string) map[string]int {
	if len(sizeOrder) == 0 {
		sizeOrder = DefaultSizeOrder
	}
	rank := make(map[string]int, len(sizeOrder))
	for i, s := range sizeOrder {
		rank[NormalizeSize(s)] = i
	}
	return rank
}

// Breakdown desglose por talla de ítems ya guardados.
func Breakdown(items []entity.OrderItem, sizeOrder []string) []SizeTotal {
	bySize := map[string]int{}
	for _, it := range items {
		bySize[it.Size] += it.Quantity
	}
	var out []SizeTotal
	for _, size := range sortSizes(keys(bySize), sizeRank(sizeOrder)) {
		out = append(out, SizeTotal{Size: size, Quantity: bySize[size]})
	}
	return out
}

// SortItems ordena los ítems por producto (tipo, color, cuello) y luego por talla.
func SortItems(items []entity.OrderItem, sizeOrder []string) {
	rank := sizeRank(sizeOrder)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ProductType != b.ProductType {
			return a.ProductType < b.ProductType
		}
		if a.Color != b.Color {
			return a.Color < b.Color
		}
		if a.NeckType != b.NeckType {
			return a.NeckType < b.NeckType
		}
		return sizeLess(a.Size, b.Size, rank)
	})
}

// StockDemand unidades por clave de stock (tipo + color + talla); el cuello no distingue stock.
func StockDemand(items []entity.OrderItem) ([]entity.StockKey, map[entity.StockKey]int) {
	demand := map[entity.StockKey]int{}
	var order []entity.StockKey
	for _, it := range items {
		k := entity.StockKey{ProductType: it.ProductType, Color: it.Color, Size: it.Size}
		if _, ok := demand[k]; !ok {
			order = append(order, k)
		}
		demand[k] += it.Quantity
	}
	// orden fijo para bloquear filas siempre en la misma secuencia
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.ProductType != b.ProductType {
			return a.ProductType < b.ProductType
		}
		if a.Color != b.Color {
			return a.Color < b.Color
		}
		return a.Size < b.Size
	})
	return order, demand
}
