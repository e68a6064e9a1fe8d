// Package tableapi implementa el CRUD genérico de /api/table/:tableId sobre el registro de tablas:
// permisos por rol, restricción de filas por agente, conversión de valores y hash de contraseñas.
// Pedidos e ítems siguen las reglas del ciclo de vida: totales derivados de los ítems,
// ítems editables solo en pedidos pendientes y reposición de stock al borrar.
package tableapi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dresssync-api/internal/application/auth"
	"github.com/jhoicas/dresssync-api/internal/application/dto"
	apporder "github.com/jhoicas/dresssync-api/internal/application/order"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/order"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/domain/table"
)

// passwordField campo de entrada que se convierte en hash.
const passwordField = "password"

// TableUseCase casos de uso del CRUD genérico. Las lecturas usan repo; las escrituras corren
// en una transacción para mantener pedidos, ítems, stock y fichas de agente consistentes.
type TableUseCase struct {
	repo repository.TableRepository
	tx   repository.TxRunner
	now  func() time.Time
}

// NewTableUseCase construye el caso de uso.
func NewTableUseCase(repo repository.TableRepository, tx repository.TxRunner) *TableUseCase {
	return &TableUseCase{repo: repo, tx: tx, now: func() time.Time { return time.Now().UTC() }}
}

func lookup(tableID int) (*table.Definition, error) {
	def, ok := table.Lookup(tableID)
	if !ok {
		return nil, domain.ErrTableNotFound
	}
	return def, nil
}

func scopeFor(def *table.Definition, actor entity.Actor) table.Scope {
	if actor.IsManager() {
		return table.Scope{}
	}
	return def.OwnerScope(actor.AgentID)
}

// Page lista filas paginadas.
func (uc *TableUseCase) Page(ctx context.Context, actor entity.Actor, tableID int, in dto.TablePageRequest) (*dto.TablePageResponse, error) {
	def, err := lookup(tableID)
	if err != nil {
		return nil, err
	}
	if !def.CanRead(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	q := table.PageQuery{
		PageSize: in.PageSize,
		PageNo:   in.PageNo,
		Where:    in.Where,
		Keyword:  in.Keyword,
		OrderBy:  in.OrderBy,
		Desc:     in.OrderDir == "" || strings.EqualFold(in.OrderDir, "desc"),
		Scope:    scopeFor(def, actor),
	}
	q.Normalize()

	rows, total, err := uc.repo.Page(ctx, def, q)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []table.Row{}
	}
	return &dto.TablePageResponse{
		Data:       rows,
		Total:      total,
		PageNo:     q.PageNo,
		PageSize:   q.PageSize,
		TotalPages: table.TotalPages(total, q.PageSize),
	}, nil
}

// Create inserta una fila y la devuelve tal como quedó guardada.
func (uc *TableUseCase) Create(ctx context.Context, actor entity.Actor, tableID int, in dto.TableCreateRequest) (*dto.TableRowResponse, error) {
	def, err := lookup(tableID)
	if err != nil {
		return nil, err
	}
	if !def.CanWrite(actor.Role) {
		return nil, domain.ErrForbidden
	}
	values, err := uc.convert(def, in.Data)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	pk := def.PrimaryKey
	if v, ok := values[pk]; !ok || v == "" {
		values[pk] = uuid.New().String()
	}
	for _, c := range []string{"created_at", "updated_at"} {
		if def.HasColumn(c) {
			values[c] = now
		}
	}

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := checkRequired(def, values); err != nil {
			return err
		}
		if err := applyDefaults(ctx, r, def, actor, values, now); err != nil {
			return err
		}
		if err := r.Tables.Insert(ctx, def, values); err != nil {
			return err
		}
		if def.ID == table.IDOrderItems {
			return r.Orders.RefreshTotals(ctx, fmt.Sprint(values["order_id"]), now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	row, err := uc.repo.GetByID(ctx, def, fmt.Sprint(values[pk]), table.Scope{})
	if err != nil {
		return nil, err
	}
	return &dto.TableRowResponse{Data: row}, nil
}

// applyDefaults reglas por tabla al crear.
func applyDefaults(ctx context.Context, r repository.Repos, def *table.Definition, actor entity.Actor, values map[string]any, now time.Time) error {
	switch def.ID {
	case table.IDUsers:
		if _, ok := values[def.PasswordColumn]; !ok {
			return domain.NewValidationError("password: es requerido")
		}
		if v, ok := values["status"]; !ok || v == "" {
			values["status"] = entity.UserStatusActive
		}
		role, _ := values["role"].(string)
		agentID, _ := values["agent_id"].(string)
		name, _ := values["name"].(string)
		email, _ := values["email"].(string)
		return linkAgent(ctx, r, values, role, agentID, name, email, now)
	case table.IDOrders:
		if st, ok := values["status"].(string); ok && st != "" && st != entity.OrderStatusPending {
			return domain.NewValidationError("status: un pedido nuevo siempre es pending; usar PATCH /api/orders/:id/status")
		}
		if err := rejectDerived(values, "total_quantity", "total_amount"); err != nil {
			return err
		}
		values["status"] = entity.OrderStatusPending
		values["total_quantity"] = int64(0)
		values["total_amount"] = decimal.Zero
		if !actor.IsManager() {
			values["agent_id"] = actor.AgentID
		} else if err := checkAgent(ctx, r, values["agent_id"], true); err != nil {
			return err
		}
		if v, ok := values["order_no"]; !ok || v == "" {
			values["order_no"] = order.NewOrderNo(now)
		}
	case table.IDOrderItems:
		if err := rejectDerived(values, "line_total"); err != nil {
			return err
		}
		if _, err := pendingParent(ctx, r, actor, fmt.Sprint(values["order_id"])); err != nil {
			return err
		}
		return normalizeItem(values, nil)
	case table.IDAgents:
		if _, ok := values["active"]; !ok {
			values["active"] = int64(1)
		}
	case table.IDProductConfig:
		if _, ok := values["active"]; !ok {
			values["active"] = int64(1)
		}
	}
	return nil
}

// linkAgent garantiza que un usuario agente quede ligado a una ficha de agents:
// si trae agent_id debe existir; si no, se crea la ficha como en el registro público.
func linkAgent(ctx context.Context, r repository.Repos, values map[string]any, role, agentID, name, email string, now time.Time) error {
	if role != entity.RoleAgent {
		return nil
	}
	if agentID != "" {
		return checkAgent(ctx, r, agentID, true)
	}
	agent := auth.NewAgentProfile(name, email, "", "", now)
	if err := r.Agents.Create(ctx, agent); err != nil {
		return err
	}
	values["agent_id"] = agent.ID
	return nil
}

// checkAgent verifica que v sea el ID de una ficha de agents existente.
func checkAgent(ctx context.Context, r repository.Repos, v any, required bool) error {
	id, _ := v.(string)
	if id == "" {
		if required {
			return domain.NewValidationError("agent_id: es requerido")
		}
		return nil
	}
	agent, err := r.Agents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if agent == nil {
		return domain.NewValidationError(fmt.Sprintf("agent_id: el agente %q no existe", id))
	}
	return nil
}

// pendingParent bloquea el pedido padre de un ítem y exige que esté pendiente.
// Un agente no puede tocar ítems de pedidos ajenos.
func pendingParent(ctx context.Context, r repository.Repos, actor entity.Actor, orderID string) (*entity.Order, error) {
	parent, err := r.Orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		if !actor.IsManager() {
			return nil, domain.ErrForbidden
		}
		return nil, domain.NewValidationError(fmt.Sprintf("order_id: el pedido %q no existe", orderID))
	}
	if !actor.IsManager() && parent.AgentID != actor.AgentID {
		return nil, domain.ErrForbidden
	}
	if parent.Status != entity.OrderStatusPending {
		return nil, notPending(parent)
	}
	return parent, nil
}

func notPending(o *entity.Order) error {
	return fmt.Errorf("%w: el pedido %s está %s; solo se modifican pedidos pendientes", domain.ErrConflict, o.OrderNo, o.Status)
}

// normalizeItem normaliza los atributos de producto y recalcula line_total.
// current aporta cantidad y precio cuando la actualización no los trae.
func normalizeItem(values map[string]any, current *entity.OrderItem) error {
	for _, c := range []string{"product_type", "color", "neck_type"} {
		if v, ok := values[c].(string); ok {
			values[c] = order.NormalizeName(v)
		}
	}
	if v, ok := values["size"].(string); ok {
		values["size"] = order.NormalizeSize(v)
	}

	qty, price := int64(0), decimal.Zero
	if current != nil {
		qty, price = int64(current.Quantity), current.UnitPrice
	}
	if v, ok := values["quantity"].(int64); ok {
		qty = v
	}
	if v, ok := values["unit_price"].(decimal.Decimal); ok {
		price = v
	}
	var msgs []string
	if qty < 1 {
		msgs = append(msgs, "quantity: debe ser al menos 1")
	}
	if price.IsNegative() {
		msgs = append(msgs, "unit_price: no puede ser negativo")
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	values["line_total"] = price.Round(2).Mul(decimal.NewFromInt(qty))
	return nil
}

// rejectDerived rechaza columnas que el servidor calcula.
func rejectDerived(values map[string]any, cols ...string) error {
	var msgs []string
	for _, c := range cols {
		if _, ok := values[c]; ok {
			msgs = append(msgs, c+": se calcula a partir de los ítems del pedido")
		}
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}

// Update modifica una fila. id y created_at no son modificables; updated_at se refresca.
func (uc *TableUseCase) Update(ctx context.Context, actor entity.Actor, tableID int, in dto.TableUpdateRequest) (*dto.TableRowResponse, error) {
	def, err := lookup(tableID)
	if err != nil {
		return nil, err
	}
	if !def.CanWrite(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	values, err := uc.convert(def, in.Data)
	if err != nil {
		return nil, err
	}
	delete(values, def.PrimaryKey)
	delete(values, "created_at")
	scope := scopeFor(def, actor)
	if !scope.Empty() {
		// un agente no puede reasignar la fila
		delete(values, scope.Column)
	}
	if len(values) == 0 {
		return nil, domain.NewValidationError("Data: no hay campos para actualizar")
	}
	now := uc.now()
	if def.HasColumn("updated_at") {
		values["updated_at"] = now
	}

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		var parentID string
		switch def.ID {
		case table.IDUsers:
			if err := uc.relinkUser(ctx, r, in.ID, values, now); err != nil {
				return err
			}
		case table.IDOrders:
			if _, ok := values["status"]; ok {
				return domain.NewValidationError("status: usar PATCH /api/orders/:id/status")
			}
			if err := rejectDerived(values, "total_quantity", "total_amount"); err != nil {
				return err
			}
			if v, ok := values["agent_id"]; ok {
				if err := checkAgent(ctx, r, v, true); err != nil {
					return err
				}
			}
		case table.IDOrderItems:
			if _, ok := values["order_id"]; ok {
				return domain.NewValidationError("order_id: no es modificable")
			}
			if err := rejectDerived(values, "line_total"); err != nil {
				return err
			}
			row, err := r.Tables.GetByID(ctx, def, in.ID, scope)
			if err != nil {
				return err
			}
			if row == nil {
				return domain.ErrNotFound
			}
			parentID = fmt.Sprint(row["order_id"])
			parent, err := pendingParent(ctx, r, actor, parentID)
			if err != nil {
				return err
			}
			if err := normalizeItem(values, findItem(parent, in.ID)); err != nil {
				return err
			}
		}

		n, err := r.Tables.Update(ctx, def, in.ID, values, scope)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		if parentID != "" {
			return r.Orders.RefreshTotals(ctx, parentID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	row, err := uc.repo.GetByID(ctx, def, in.ID, table.Scope{})
	if err != nil {
		return nil, err
	}
	return &dto.TableRowResponse{Data: row}, nil
}

// relinkUser mantiene el vínculo usuario-agente cuando cambian role o agent_id.
func (uc *TableUseCase) relinkUser(ctx context.Context, r repository.Repos, id string, values map[string]any, now time.Time) error {
	_, roleSet := values["role"]
	_, agentSet := values["agent_id"]
	if !roleSet && !agentSet {
		return nil
	}
	current, err := r.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	role, agentID, name, email := current.Role, current.AgentID, current.Name, current.Email
	if v, ok := values["role"].(string); ok {
		role = v
	}
	if v, ok := values["agent_id"].(string); ok {
		agentID = v
	}
	if v, ok := values["name"].(string); ok && v != "" {
		name = v
	}
	if v, ok := values["email"].(string); ok && v != "" {
		email = v
	}
	return linkAgent(ctx, r, values, role, agentID, name, email, now)
}

func findItem(o *entity.Order, id string) *entity.OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// Delete borra una fila. Un pedido se borra con sus ítems y, si tenía stock descontado,
// lo repone en la misma transacción; un agente solo borra pedidos pendientes.
func (uc *TableUseCase) Delete(ctx context.Context, actor entity.Actor, tableID int, in dto.TableDeleteRequest) (*dto.TableDeleteResponse, error) {
	def, err := lookup(tableID)
	if err != nil {
		return nil, err
	}
	if !def.CanWrite(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	scope := scopeFor(def, actor)
	now := uc.now()

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		switch def.ID {
		case table.IDOrders:
			return deleteOrder(ctx, r, actor, in.ID, now)
		case table.IDOrderItems:
			row, err := r.Tables.GetByID(ctx, def, in.ID, scope)
			if err != nil {
				return err
			}
			if row == nil {
				return domain.ErrNotFound
			}
			parentID := fmt.Sprint(row["order_id"])
			if _, err := pendingParent(ctx, r, actor, parentID); err != nil {
				return err
			}
			if _, err := r.Tables.Delete(ctx, def, in.ID, scope); err != nil {
				return err
			}
			return r.Orders.RefreshTotals(ctx, parentID, now)
		}
		n, err := r.Tables.Delete(ctx, def, in.ID, scope)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.TableDeleteResponse{Success: true}, nil
}

func deleteOrder(ctx context.Context, r repository.Repos, actor entity.Actor, id string, now time.Time) error {
	o, err := r.Orders.GetByIDForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if o == nil || (!actor.IsManager() && o.AgentID != actor.AgentID) {
		return domain.ErrNotFound
	}
	if !actor.IsManager() && o.Status != entity.OrderStatusPending {
		return notPending(o)
	}
	if o.HoldsStock() {
		if err := apporder.Restock(ctx, r.Stock, o.Items, now); err != nil {
			return err
		}
	}
	return r.Orders.Delete(ctx, id)
}

// convert valida los nombres de campo y convierte cada valor al tipo de su columna.
// "password" se hashea en la columna de contraseña de la tabla.
func (uc *TableUseCase) convert(def *table.Definition, data map[string]any) (map[string]any, error) {
	if data == nil {
		return nil, domain.NewValidationError("Data: es requerido")
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(map[string]any, len(data))
	var msgs []string
	for _, k := range keys {
		v := data[k]
		if k == passwordField && def.PasswordColumn != "" {
			pw, _ := v.(string)
			if len(pw) < 8 {
				msgs = append(msgs, "password: debe tener al menos 8 caracteres")
				continue
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return nil, err
			}
			values[def.PasswordColumn] = hash
			continue
		}
		col, ok := def.Column(k)
		if !ok || def.IsHidden(k) {
			msgs = append(msgs, fmt.Sprintf("campo no permitido: %q", k))
			continue
		}
		cv, err := table.Coerce(col.Kind, v)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("%s: %v", k, err))
			continue
		}
		values[k] = cv
	}
	if def.ID == table.IDUsers {
		if email, ok := values["email"].(string); ok {
			values["email"] = auth.NormalizeEmail(email)
		}
		if role, ok := values["role"].(string); ok && !entity.ValidRole(role) {
			msgs = append(msgs, "role: debe ser uno de: manager agent")
		}
	}
	if def.ID == table.IDOrders {
		if st, ok := values["status"].(string); ok && st != "" && !validOrderStatus(st) {
			msgs = append(msgs, "status: estado de pedido inválido")
		}
	}
	if def.ID == table.IDProductConfig {
		if c, ok := values["category"].(string); ok && !entity.ValidConfigCategory(c) {
			msgs = append(msgs, "category: debe ser uno de: "+strings.Join(entity.ConfigCategories, " "))
		}
	}
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}
	return values, nil
}

func checkRequired(def *table.Definition, values map[string]any) error {
	var msgs []string
	for _, r := range def.Required {
		v, ok := values[r]
		if !ok || v == "" {
			msgs = append(msgs, r+": es requerido")
		}
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}

func validOrderStatus(s string) bool {
	for _, v := range entity.OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}
