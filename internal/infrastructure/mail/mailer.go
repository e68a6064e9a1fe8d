// Package mail envía avisos por SMTP con gomail.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/pkg/config"
)

var _ ports.Mailer = (*SMTPMailer)(nil)

var orderCreatedTmpl = template.Must(template.New("order_created").Parse(`<h2>Nuevo pedido {{.Order.OrderNo}}</h2>
<p><strong>Agente:</strong> {{.AgentName}}<br>
<strong>Cliente:</strong> {{.Order.CustomerName}}{{if .Order.CustomerPhone}} ({{.Order.CustomerPhone}}){{end}}<br>
<strong>Unidades:</strong> {{.Order.TotalQuantity}}<br>
<strong>Total:</strong> {{.Total}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Producto</th><th>Color</th><th>Cuello</th><th>Talla</th><th>Cant.</th><th>Subtotal</th></tr>
{{range .Order.Items}}<tr><td>{{.ProductType}}</td><td>{{.Color}}</td><td>{{.NeckType}}</td><td>{{.Size}}</td><td>{{.Quantity}}</td><td>{{.LineTotal.StringFixed 2}}</td></tr>
{{end}}</table>
{{if .Order.Notes}}<p><em>{{.Order.Notes}}</em></p>{{end}}`))

// SMTPMailer envía a los destinatarios configurados en MAIL_NOTIFY_TO.
type SMTPMailer struct {
	from string
	to   []string
	send func(msgs ...*gomail.Message) error
}

// NewSMTPMailer devuelve nil si SMTP no está configurado o no hay destinatarios.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if !cfg.Enabled() || len(cfg.NotifyTo) == 0 {
		return nil
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return newMailer(cfg, d.DialAndSend)
}

func newMailer(cfg config.SMTPConfig, send func(msgs ...*gomail.Message) error) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{from: from, to: cfg.NotifyTo, send: send}
}

// SendOrderCreated arma el aviso HTML del pedido y lo envía. gomail no acepta contexto,
// así que el envío corre aparte y se abandona si ctx vence.
func (m *SMTPMailer) SendOrderCreated(ctx context.Context, o *entity.Order, agent *entity.Agent) error {
	msg, err := m.orderCreatedMessage(o, agent)
	if err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- m.send(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: enviar aviso %s: %w", o.OrderNo, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SMTPMailer) orderCreatedMessage(o *entity.Order, agent *entity.Agent) (*gomail.Message, error) {
	agentName := o.AgentID
	if agent != nil {
		agentName = agent.Name
	}
	var body bytes.Buffer
	err := orderCreatedTmpl.Execute(&body, map[string]any{
		"Order":     o,
		"AgentName": agentName,
		"Total":     o.TotalAmount.StringFixed(2),
	})
	if err != nil {
		return nil, fmt.Errorf("mail: plantilla: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	if agent != nil && agent.Email != "" {
		msg.SetHeader("Reply-To", agent.Email)
	}
	msg.SetHeader("Subject", fmt.Sprintf("Nuevo pedido %s - %s", o.OrderNo, o.CustomerName))
	msg.SetBody("text/html", body.String())
	return msg, nil
}
