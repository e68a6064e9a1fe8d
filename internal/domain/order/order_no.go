package order

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// NewOrderNo genera un número de pedido DS-YYYYMMDD-XXXXXX (6 caracteres hexadecimales aleatorios).
func NewOrderNo(at time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return "DS-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b[:]))
}
