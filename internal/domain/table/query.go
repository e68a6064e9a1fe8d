package table

import (
	"strings"
)

// Row fila genérica: columna -> valor.
type Row map[string]any

// Operadores de comparación aceptados por el constructor de WHERE.
const (
	OpEq        = "="
	OpNe        = "!="
	OpNeAlt     = "<>"
	OpGt        = ">"
	OpGte       = ">="
	OpLt        = "<"
	OpLte       = "<="
	OpLike      = "like"
	OpIn        = "in"
	OpNotIn     = "not in"
	OpIsNull    = "is null"
	OpIsNotNull = "is not null"
)

var operators = map[string]bool{
	OpEq: true, OpNe: true, OpNeAlt: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpLike: true, OpIn: true, OpNotIn: true, OpIsNull: true, OpIsNotNull: true,
}

// NormalizeOp pasa el operador a minúsculas con espacios simples; ok=false si no es soportado.
func NormalizeOp(op string) (string, bool) {
	n := strings.Join(strings.Fields(strings.ToLower(op)), " ")
	if n == "" {
		n = OpEq
	}
	return n, operators[n]
}

// Condition filtro simple campo-operador-valor. Las condiciones se combinan con AND.
type Condition struct {
	Field string `json:"Field"`
	Op    string `json:"Op"`
	Value any    `json:"Value"`
}

// Scope restricción obligatoria añadida por el servidor (p. ej. pedidos del agente).
type Scope struct {
	Column string
	Value  string
	Via    *OwnerLink // si no es nil, Column se compara contra la clave de la tabla padre
}

// Empty indica si no hay restricción.
func (s Scope) Empty() bool { return s.Column == "" }

// Límites de paginación.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageQuery consulta paginada sobre una tabla.
type PageQuery struct {
	PageSize int
	PageNo   int // base 1
	Where    []Condition
	Keyword  string
	OrderBy  string
	Desc     bool
	Scope    Scope
}

// Normalize aplica valores por defecto y límites.
func (q *PageQuery) Normalize() {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.PageNo <= 0 {
		q.PageNo = 1
	}
}

// Offset desplazamiento para LIMIT/OFFSET.
func (q PageQuery) Offset() int {
	return (q.PageNo - 1) * q.PageSize
}

// TotalPages número de páginas para total filas.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
