package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/pkg/config"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		OrderNo: "DS-20240701-ABC123", CustomerName: "Tienda & Central", TotalQuantity: 3,
		TotalAmount: decimal.RequireFromString("30"),
		Items: []entity.OrderItem{
			{ProductType: "Polo", Color: "Red", Size: "M", Quantity: 3, LineTotal: decimal.RequireFromString("30")},
		},
	}
}

func TestNewSMTPMailer_SinConfiguracion(t *testing.T) {
	assert.Nil(t, NewSMTPMailer(config.SMTPConfig{}))
	assert.Nil(t, NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com"}), "sin destinatarios no hay aviso")
}

func TestSendOrderCreated_ArmaMensaje(t *testing.T) {
	var sent []*gomail.Message
	m := newMailer(config.SMTPConfig{From: "no-reply@example.com", NotifyTo: []string{"jefe@example.com"}},
		func(msgs ...*gomail.Message) error {
			sent = append(sent, msgs...)
			return nil
		})

	err := m.SendOrderCreated(context.Background(), sampleOrder(), &entity.Agent{Name: "Luis", Email: "luis@example.com"})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	msg := sent[0]
	assert.Equal(t, []string{"jefe@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"luis@example.com"}, msg.GetHeader("Reply-To"))
	assert.Contains(t, msg.GetHeader("Subject")[0], "DS-20240701-ABC123")

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Luis")
	assert.Contains(t, raw.String(), "30.00")
	assert.Contains(t, raw.String(), "Tienda &amp; Central", "los datos del cliente se escapan")
}

func TestSendOrderCreated_ErrorYContexto(t *testing.T) {
	m := newMailer(config.SMTPConfig{From: "a@example.com", NotifyTo: []string{"b@example.com"}},
		func(...*gomail.Message) error { return errors.New("smtp caído") })
	err := m.SendOrderCreated(context.Background(), sampleOrder(), nil)
	assert.ErrorContains(t, err, "smtp caído")

	block := make(chan struct{})
	defer close(block)
	slow := newMailer(config.SMTPConfig{From: "a@example.com", NotifyTo: []string{"b@example.com"}},
		func(...*gomail.Message) error { <-block; return nil })
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, slow.SendOrderCreated(ctx, sampleOrder(), nil), context.DeadlineExceeded)
}
