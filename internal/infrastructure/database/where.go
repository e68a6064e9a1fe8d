package database

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/table"
)

// Where cláusula WHERE construida a partir de condiciones del cliente.
// SQL usa placeholders "?" (el Querier los reescribe por motor).
type Where struct {
	SQL  string // vacío o "WHERE ..."
	Args []any
}

// BuildWhere valida cada condición contra las columnas de la tabla y genera la cláusula.
// Los campos desconocidos u ocultos y los operadores no soportados devuelven ValidationError;
// los valores siempre van como parámetros, nunca concatenados.
func BuildWhere(d Dialect, def *table.Definition, conds []table.Condition, keyword string, scope table.Scope) (Where, error) {
	var (
		parts []string
		args  []any
		errs  []string
	)

	for _, c := range conds {
		col, ok := def.Column(c.Field)
		if !ok || def.IsHidden(c.Field) {
			errs = append(errs, fmt.Sprintf("campo no permitido: %q", c.Field))
			continue
		}
		op, ok := table.NormalizeOp(c.Op)
		if !ok {
			errs = append(errs, fmt.Sprintf("operador no soportado: %q", c.Op))
			continue
		}
		ident := d.QuoteIdent(col.Name)

		switch op {
		case table.OpIsNull, table.OpIsNotNull:
			parts = append(parts, ident+" "+strings.ToUpper(op))
		case table.OpLike:
			s := fmt.Sprint(c.Value)
			if c.Value == nil {
				s = ""
			}
			if !strings.Contains(s, "%") {
				s = "%" + s + "%"
			}
			parts = append(parts, d.LowerLike(ident))
			args = append(args, s)
		case table.OpIn, table.OpNotIn:
			values := listValues(c.Value)
			if len(values) == 0 {
				errs = append(errs, fmt.Sprintf("%s: la lista de valores está vacía", c.Field))
				continue
			}
			coerced := make([]any, 0, len(values))
			bad := false
			for _, v := range values {
				cv, err := table.Coerce(col.Kind, v)
				if err != nil {
					errs = append(errs, fmt.Sprintf("%s: %v", c.Field, err))
					bad = true
					break
				}
				coerced = append(coerced, cv)
			}
			if bad {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s (%s)", ident, strings.ToUpper(op), PlaceholderList(len(coerced))))
			args = append(args, coerced...)
		default:
			cv, err := table.Coerce(col.Kind, c.Value)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", c.Field, err))
				continue
			}
			if op == table.OpNeAlt {
				op = table.OpNe
			}
			parts = append(parts, ident+" "+op+" ?")
			args = append(args, cv)
		}
	}
	if len(errs) > 0 {
		return Where{}, domain.NewValidationError(errs...)
	}

	if kw := strings.TrimSpace(keyword); kw != "" && len(def.Searchable) > 0 {
		ors := make([]string, 0, len(def.Searchable))
		for _, s := range def.Searchable {
			ors = append(ors, d.LowerLike(d.QuoteIdent(s)))
			args = append(args, "%"+kw+"%")
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}

	if !scope.Empty() {
		sql, sargs := ScopeClause(d, scope)
		parts = append(parts, sql)
		args = append(args, sargs...)
	}

	if len(parts) == 0 {
		return Where{}, nil
	}
	return Where{SQL: "WHERE " + strings.Join(parts, " AND "), Args: args}, nil
}

// ScopeClause condición obligatoria de dueño (sin "WHERE").
func ScopeClause(d Dialect, scope table.Scope) (string, []any) {
	if scope.Via != nil {
		v := scope.Via
		return fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s = ?)",
			d.QuoteIdent(v.Column), d.QuoteIdent(v.ParentKey), d.QuoteIdent(v.ParentTable), d.QuoteIdent(v.ParentOwner),
		), []any{scope.Value}
	}
	return d.QuoteIdent(scope.Column) + " = ?", []any{scope.Value}
}

// listValues acepta un arreglo JSON o un texto separado por comas.
func listValues(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case string:
		var out []any
		for _, p := range strings.Split(t, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}
