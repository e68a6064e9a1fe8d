// Package table describe las tablas expuestas por la API genérica /api/table/:tableId:
// el mapa de IDs numéricos a nombres, las columnas permitidas y quién puede leer o escribir.
package table

import (
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// Kind tipo lógico de una columna; determina la conversión de valores JSON.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindDecimal
	KindBool
	KindTime
)

// Column columna declarada de una tabla.
type Column struct {
	Name string
	Kind Kind
}

// IDs numéricos de las tablas (contrato con el frontend).
const (
	IDUsers         = 1
	IDAgents        = 2
	IDOrders        = 3
	IDOrderItems    = 4
	IDStockItems    = 5
	IDProductConfig = 6
	IDMigrations    = 7
)

// Definition metadatos de una tabla accesible por la API genérica.
type Definition struct {
	ID         int
	Name       string
	PrimaryKey string
	Columns    []Column
	Hidden     []string // nunca se devuelven ni se filtran
	Searchable []string // columnas de texto usadas por Keyword
	Required   []string // obligatorias al crear por la API genérica
	ReadRoles  []string
	WriteRoles []string // vacío = solo lectura
	// OwnerColumn columna que restringe las filas visibles para agentes (vacío = sin restricción).
	OwnerColumn string
	// OwnerVia restringe por una tabla padre cuando la fila no guarda el dueño (order_items).
	OwnerVia *OwnerLink
	// PasswordColumn si no está vacío, el campo "password" de entrada se hashea en esta columna.
	PasswordColumn string
}

// OwnerLink relación hija -> padre usada para restringir filas por dueño.
type OwnerLink struct {
	Column      string // columna local (order_id)
	ParentTable string // orders
	ParentKey   string // id
	ParentOwner string // agent_id
}

// OwnerScope restricción que aplica a un agente sobre esta tabla; vacía si la tabla no tiene dueño.
func (d *Definition) OwnerScope(agentID string) Scope {
	switch {
	case d.OwnerColumn != "":
		return Scope{Column: d.OwnerColumn, Value: agentID}
	case d.OwnerVia != nil:
		return Scope{Column: d.OwnerVia.Column, Value: agentID, Via: d.OwnerVia}
	}
	return Scope{}
}

var (
	readAll   = []string{entity.RoleManager, entity.RoleAgent}
	managers  = []string{entity.RoleManager}
	writeBoth = []string{entity.RoleManager, entity.RoleAgent}
)

var definitions = map[int]*Definition{
	IDUsers: {
		ID: IDUsers, Name: "users", PrimaryKey: "id",
		Columns: []Column{
			{"id", KindText}, {"email", KindText}, {"password_hash", KindText}, {"name", KindText},
			{"role", KindText}, {"status", KindText}, {"agent_id", KindText},
			{"created_at", KindTime}, {"updated_at", KindTime},
		},
		Hidden:         []string{"password_hash"},
		Searchable:     []string{"email", "name"},
		Required:       []string{"email", "name", "role"},
		ReadRoles:      managers,
		WriteRoles:     managers,
		PasswordColumn: "password_hash",
	},
	IDAgents: {
		ID: IDAgents, Name: "agents", PrimaryKey: "id",
		Columns: []Column{
			{"id", KindText}, {"name", KindText}, {"email", KindText}, {"phone", KindText},
			{"region", KindText}, {"commission_rate", KindDecimal}, {"active", KindBool},
			{"created_at", KindTime}, {"updated_at", KindTime},
		},
		Searchable: []string{"name", "email", "phone", "region"},
		Required:   []string{"name"},
		ReadRoles:  readAll,
		WriteRoles: managers,
	},
	IDOrders: {
		ID: IDOrders, Name: "orders", PrimaryKey: "id",
		Columns: []Column{
			{"id", KindText}, {"order_no", KindText}, {"agent_id", KindText},
			{"customer_name", KindText}, {"customer_phone", KindText}, {"customer_address", KindText},
			{"status", KindText}, {"total_quantity", KindInt}, {"total_amount", KindDecimal},
			{"notes", KindText}, {"created_at", KindTime}, {"updated_at", KindTime},
		},
		Searchable:  []string{"order_no", "customer_name", "customer_phone"},
		Required:    []string{"customer_name"},
		ReadRoles:   readAll,
		WriteRoles:  writeBoth,
		OwnerColumn: "agent_id",
	},
	IDOrderItems: {
		ID: IDOrderItems, Name: "order_items", PrimaryKey: "id",
		Columns: []Column{
			{"id", KindText}, {"order_id", KindText}, {"product_type", KindText}, {"color", KindText},
			{"neck_type", KindText}, {"size", KindText}, {"quantity", KindInt},
			{"unit_price", KindDecimal}, {"line_total", KindDecimal}, {"created_at", KindTime},
		},
		Searchable: []string{"product_type", "color", "size"},
		Required:   []string{"order_id", "product_type", "color", "size"},
		ReadRoles:  readAll,
		WriteRoles: writeBoth,
		OwnerVia:   &OwnerLink{Column: "order_id", ParentTable: "orders", ParentKey: "id", ParentOwner: "agent_id"},
	},
	IDStockItems: {
		ID: IDStockItems, Name: "stock_items", PrimaryKey: "id",
		Columns: []Column{
			{"id", KindText}, {"product_type", KindText}, {"color", KindText}, {"size", KindText},
			{"quantity", KindInt}, {"reorder_level", KindInt},
			{"created_at", KindTime}, {"updated_at", KindTime},
		},
		Searchable: []string{"product_type", "color", "size"},
		Required:   []string{"product_type", "color", "size"},
		ReadRoles:  readAll,
		WriteRoles: managers,
	},
	IDProductConfig: {
		ID: IDProductConfig, Name: "product_config", PrimaryKey: "id",
		Columns: []Column{
			{"id", KindText}, {"category", KindText}, {"value", KindText}, {"sort_order", KindInt},
			{"active", KindBool}, {"created_at", KindTime}, {"updated_at", KindTime},
		},
		Searchable: []string{"category", "value"},
		Required:   []string{"category", "value"},
		ReadRoles:  readAll,
		WriteRoles: managers,
	},
	IDMigrations: {
		ID: IDMigrations, Name: "migrations", PrimaryKey: "name",
		Columns:    []Column{{"name", KindText}, {"executed_at", KindTime}},
		Searchable: []string{"name"},
		ReadRoles:  managers,
	},
}

// Lookup devuelve la definición de la tabla con ese ID.
func Lookup(id int) (*Definition, bool) {
	d, ok := definitions[id]
	return d, ok
}

// All devuelve todas las definiciones ordenadas por ID.
func All() []*Definition {
	out := make([]*Definition, 0, len(definitions))
	for id := IDUsers; id <= IDMigrations; id++ {
		if d, ok := definitions[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Column devuelve la columna name si está declarada.
func (d *Definition) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn indica si name es una columna declarada.
func (d *Definition) HasColumn(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// IsHidden indica si la columna nunca debe exponerse.
func (d *Definition) IsHidden(name string) bool {
	return contains(d.Hidden, name)
}

// Visible columnas que se devuelven al cliente, en orden de declaración.
func (d *Definition) Visible() []string {
	out := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if !d.IsHidden(c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

// ColumnNames todas las columnas declaradas.
func (d *Definition) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// CanRead indica si el rol puede leer la tabla.
func (d *Definition) CanRead(role string) bool { return contains(d.ReadRoles, role) }

// CanWrite indica si el rol puede crear/editar/borrar filas.
func (d *Definition) CanWrite(role string) bool { return contains(d.WriteRoles, role) }

// DefaultOrder columna de ordenamiento por defecto.
func (d *Definition) DefaultOrder() string {
	if d.HasColumn("created_at") {
		return "created_at"
	}
	if d.HasColumn("executed_at") {
		return "executed_at"
	}
	return d.Columns[0].Name
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
