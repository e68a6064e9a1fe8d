package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coerce convierte un valor decodificado de JSON (con UseNumber) al tipo Go que
// espera la columna. Todas las columnas son NOT NULL: nil se traduce al valor cero.
func Coerce(kind Kind, v any) (any, error) {
	switch kind {
	case KindText:
		return coerceText(v)
	case KindInt:
		return coerceInt(v)
	case KindDecimal:
		return coerceDecimal(v)
	case KindBool:
		b, err := coerceBool(v)
		if err != nil {
			return nil, err
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case KindTime:
		return coerceTime(v)
	}
	return v, nil
}

func coerceText(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int, int64:
		return fmt.Sprint(t), nil
	}
	return nil, fmt.Errorf("se esperaba texto, llegó %T", v)
}

func coerceInt(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return int64(0), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		return nil, fmt.Errorf("%q no es un entero", t.String())
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf("%v no es un entero", t)
		}
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q no es un entero", t)
		}
		return n, nil
	case bool:
		if t {
			return int64(1), nil
		}
		return int64(0), nil
	}
	return nil, fmt.Errorf("se esperaba entero, llegó %T", v)
}

func coerceDecimal(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("%q no es un número", t)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case decimal.Decimal:
		return t, nil
	}
	return nil, fmt.Errorf("se esperaba número, llegó %T", v)
}

func coerceBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return false, fmt.Errorf("%q no es booleano", t.String())
		}
		return n != 0, nil
	case float64:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case int32:
		return t != 0, nil
	case int:
		return t != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, fmt.Errorf("%q no es booleano", t)
		}
		return b, nil
	}
	return false, fmt.Errorf("se esperaba booleano, llegó %T", v)
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func coerceTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return nil, fmt.Errorf("%q no es una fecha válida", t)
	}
	return nil, fmt.Errorf("se esperaba fecha, llegó %T", v)
}

// NormalizeRow convierte los valores leídos de cualquier motor a una forma uniforme
// (bool para KindBool, int64 para KindInt, decimal para KindDecimal) y quita las columnas ocultas.
func (d *Definition) NormalizeRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		if d.IsHidden(k) {
			continue
		}
		col, ok := d.Column(k)
		if !ok {
			out[k] = v
			continue
		}
		out[k] = normalizeValue(col.Kind, v)
	}
	return out
}

func normalizeValue(kind Kind, v any) any {
	if v == nil {
		return nil
	}
	switch kind {
	case KindBool:
		if b, err := coerceBool(v); err == nil {
			return b
		}
	case KindInt:
		switch t := v.(type) {
		case int32:
			return int64(t)
		case int16:
			return int64(t)
		case int:
			return int64(t)
		case string:
			if n, err := strconv.ParseInt(t, 10, 64); err == nil {
				return n
			}
		}
	case KindDecimal:
		switch t := v.(type) {
		case decimal.Decimal:
			return t
		case string:
			if d, err := decimal.NewFromString(t); err == nil {
				return d
			}
		case float64:
			return decimal.NewFromFloat(t)
		case int64:
			return decimal.NewFromInt(t)
		}
	case KindTime:
		if t, ok := v.(time.Time); ok {
			return t.UTC()
		}
		if s, ok := v.(string); ok {
			if t, err := coerceTime(s); err == nil {
				return t
			}
		}
	}
	return v
}
