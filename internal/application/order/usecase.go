// Package order casos de uso de pedidos: creación con composición multi-producto,
// consulta, ciclo de estados con movimiento de stock y comprobante PDF.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	domorder "github.com/jhoicas/dresssync-api/internal/domain/order"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

// maxOrderNoAttempts reintentos ante colisión del número de pedido.
const maxOrderNoAttempts = 3

// mailTimeout tiempo máximo para el aviso por correo de un pedido nuevo.
const mailTimeout = 30 * time.Second

// OrderUseCase orquesta pedidos. Mailer y PDF pueden ser nil.
type OrderUseCase struct {
	tx         repository.TxRunner
	orders     repository.OrderRepository
	agents     repository.AgentRepository
	configRepo repository.ProductConfigRepository
	mailer     ports.Mailer
	pdf        ports.OrderPDFRenderer
	log        *logger.Logger
	now        func() time.Time
}

// NewOrderUseCase construye el caso de uso inyectando sus dependencias.
func NewOrderUseCase(
	tx repository.TxRunner,
	orders repository.OrderRepository,
	agents repository.AgentRepository,
	configRepo repository.ProductConfigRepository,
	mailer ports.Mailer,
	pdf ports.OrderPDFRenderer,
	log *logger.Logger,
) *OrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		tx:         tx,
		orders:     orders,
		agents:     agents,
		configRepo: configRepo,
		mailer:     mailer,
		pdf:        pdf,
		log:        log.Component("orders"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create valida y compone el pedido y lo guarda con sus ítems en una sola transacción.
// Un agente siempre crea a su nombre; un gerente debe indicar agent_id.
func (uc *OrderUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	// ── 1. Resolver agente ───────────────────────────────────────────────────
	agentID := strings.TrimSpace(in.AgentID)
	if !actor.IsManager() {
		if actor.AgentID == "" {
			return nil, domain.ErrForbidden
		}
		agentID = actor.AgentID
	}
	if agentID == "" {
		return nil, domain.NewValidationError("agent_id: es requerido")
	}
	agent, err := uc.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("order: obtener agente: %w", err)
	}
	if agent == nil {
		return nil, domain.NewValidationError("agent_id: el agente no existe")
	}
	if !agent.Active {
		return nil, domain.NewValidationError("agent_id: el agente está inactivo")
	}

	// ── 2. Componer contra el catálogo activo ────────────────────────────────
	entries, err := uc.configRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("order: cargar catálogo: %w", err)
	}
	catalog := domorder.CatalogFrom(entries)
	lines := make([]domorder.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, domorder.Line{
			ProductType: l.ProductType,
			Color:       l.Color,
			NeckType:    l.NeckType,
			UnitPrice:   l.UnitPrice,
			Sizes:       l.Sizes,
		})
	}
	comp, err := domorder.Compose(lines, catalog)
	if err != nil {
		return nil, err
	}

	// ── 3. Persistir ─────────────────────────────────────────────────────────
	now := uc.now()
	o := &entity.Order{
		ID:              uuid.New().String(),
		AgentID:         agent.ID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		CustomerAddress: strings.TrimSpace(in.CustomerAddress),
		Status:          entity.OrderStatusPending,
		TotalQuantity:   comp.TotalQuantity,
		TotalAmount:     comp.TotalAmount,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, it := range comp.Items {
		it.ID = uuid.New().String()
		it.OrderID = o.ID
		it.CreatedAt = now
		o.Items = append(o.Items, it)
	}

	for attempt := 1; ; attempt++ {
		o.OrderNo = domorder.NewOrderNo(now)
		err = uc.tx.Run(ctx, func(r repository.Repos) error {
			return r.Orders.Create(ctx, o)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt >= maxOrderNoAttempts {
			return nil, fmt.Errorf("order: guardar pedido: %w", err)
		}
		uc.log.Warn().Str("order_no", o.OrderNo).Int("attempt", attempt).Msg("número de pedido repetido, reintentando")
	}

	uc.log.Info().
		Str("order_id", o.ID).
		Str("order_no", o.OrderNo).
		Str("agent_id", o.AgentID).
		Int("total_quantity", o.TotalQuantity).
		Str("total_amount", o.TotalAmount.StringFixed(2)).
		Msg("pedido creado")

	uc.notify(o, agent)

	resp := ToOrderResponse(o, catalog.Sizes)
	return resp, nil
}

// notify envía el aviso fuera de la petición; un fallo solo se registra.
func (uc *OrderUseCase) notify(o *entity.Order, agent *entity.Agent) {
	if uc.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := uc.mailer.SendOrderCreated(ctx, o, agent); err != nil {
			uc.log.Error().Err(err).Str("order_no", o.OrderNo).Msg("no se pudo enviar el aviso de pedido")
		}
	}()
}

// load obtiene el pedido visible para el actor. Un pedido de otro agente se reporta como inexistente.
func (uc *OrderUseCase) load(ctx context.Context, actor entity.Actor, id string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order: obtener pedido: %w", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.IsManager() && o.AgentID != actor.AgentID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (uc *OrderUseCase) sizeOrder(ctx context.Context) []string {
	entries, err := uc.configRepo.ListActive(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo cargar el orden de tallas; se usa el orden por defecto")
		return nil
	}
	return domorder.CatalogFrom(entries).Sizes
}

// Get devuelve el pedido con ítems y desglose por talla.
func (uc *OrderUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o, uc.sizeOrder(ctx)), nil
}

// UpdateStatus cambia el estado del pedido. Confirmar descuenta stock; cancelar un pedido
// con stock descontado lo repone. Todo ocurre en la misma transacción que el cambio de estado.
// Un agente solo puede cancelar sus propios pedidos pendientes.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, actor entity.Actor, id string, in dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	next := in.Status

	var updated *entity.Order
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		o, err := r.Orders.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil || (!actor.IsManager() && o.AgentID != actor.AgentID) {
			return domain.ErrNotFound
		}
		if !actor.IsManager() && !(o.Status == entity.OrderStatusPending && next == entity.OrderStatusCancelled) {
			return domain.ErrForbidden
		}
		if !o.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, next)
		}

		switch {
		case next == entity.OrderStatusConfirmed:
			if err := deductStock(ctx, r.Stock, o.Items, uc.now()); err != nil {
				return err
			}
		case next == entity.OrderStatusCancelled && o.HoldsStock():
			if err := Restock(ctx, r.Stock, o.Items, uc.now()); err != nil {
				return err
			}
		}

		at := uc.now()
		if err := r.Orders.UpdateStatus(ctx, o.ID, o.Status, next, at); err != nil {
			return err
		}
		o.Status = next
		o.UpdatedAt = at
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", updated.ID).
		Str("status", updated.Status).
		Str("user_id", actor.UserID).
		Msg("estado de pedido actualizado")
	return ToOrderResponse(updated, uc.sizeOrder(ctx)), nil
}

// deductStock descuenta las unidades del pedido. Falla con ErrInsufficientStock si alguna
// combinación no tiene fila o no alcanza; en ese caso no se descuenta nada.
func deductStock(ctx context.Context, stock repository.StockRepository, items []entity.OrderItem, at time.Time) error {
	keys, demand := domorder.StockDemand(items)
	var short []string
	rows := make([]*entity.StockItem, 0, len(keys))
	for _, k := range keys {
		row, err := stock.GetByKeyForUpdate(ctx, k)
		if err != nil {
			return err
		}
		need := demand[k]
		if row == nil || row.Quantity < need {
			have := 0
			if row != nil {
				have = row.Quantity
			}
			short = append(short, fmt.Sprintf("%s/%s/%s (disponible %d, requerido %d)", k.ProductType, k.Color, k.Size, have, need))
			continue
		}
		rows = append(rows, row)
	}
	if len(short) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, strings.Join(short, "; "))
	}
	for _, row := range rows {
		row.Quantity -= demand[row.Key()]
		row.UpdatedAt = at
		if err := stock.Upsert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// Restock devuelve las unidades de items al inventario, creando la fila si ya no existe.
// Debe llamarse dentro de la transacción que cancela o borra el pedido.
func Restock(ctx context.Context, stock repository.StockRepository, items []entity.OrderItem, at time.Time) error {
	keys, demand := domorder.StockDemand(items)
	for _, k := range keys {
		row, err := stock.GetByKeyForUpdate(ctx, k)
		if err != nil {
			return err
		}
		if row == nil {
			row = &entity.StockItem{ProductType: k.ProductType, Color: k.Color, Size: k.Size, CreatedAt: at}
		}
		row.Quantity += demand[k]
		row.UpdatedAt = at
		if err := stock.Upsert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// PDF genera el comprobante del pedido y el nombre sugerido del archivo.
func (uc *OrderUseCase) PDF(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("order: generador de PDF no configurado")
	}
	o, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	domorder.SortItems(o.Items, uc.sizeOrder(ctx))
	agent, err := uc.agents.GetByID(ctx, o.AgentID)
	if err != nil {
		return nil, "", fmt.Errorf("order: obtener agente: %w", err)
	}
	data, err := uc.pdf.RenderOrder(ctx, o, agent)
	if err != nil {
		return nil, "", fmt.Errorf("order: generar pdf: %w", err)
	}
	return data, o.OrderNo + ".pdf", nil
}

// ToOrderResponse convierte la entidad a DTO con los ítems ordenados y el desglose por talla.
func ToOrderResponse(o *entity.Order, sizeOrder []string) *dto.OrderResponse {
	items := make([]entity.OrderItem, len(o.Items))
	copy(items, o.Items)
	domorder.SortItems(items, sizeOrder)

	resp := &dto.OrderResponse{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		AgentID:         o.AgentID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Status:          o.Status,
		TotalQuantity:   o.TotalQuantity,
		TotalAmount:     o.TotalAmount,
		Notes:           o.Notes,
		Items:           make([]dto.OrderItemResponse, 0, len(items)),
		SizeBreakdown:   []dto.SizeTotalResponse{},
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:          it.ID,
			ProductType: it.ProductType,
			Color:       it.Color,
			NeckType:    it.NeckType,
			Size:        it.Size,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	for _, st := range domorder.Breakdown(items, sizeOrder) {
		resp.SizeBreakdown = append(resp.SizeBreakdown, dto.SizeTotalResponse{Size: st.Size, Quantity: st.Quantity})
	}
	return resp
}
