package entity

import "time"

// Roles válidos para User.
const (
	RoleManager = "manager"
	RoleAgent   = "agent"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema. Los usuarios con rol agent apuntan a su ficha en agents.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // manager, agent
	Status       string // active, inactive
	AgentID      string // vacío para gerentes
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsManager indica si el usuario tiene acceso administrativo.
func (u *User) IsManager() bool { return u.Role == RoleManager }

// ValidRole indica si role es uno de los roles soportados.
func ValidRole(role string) bool {
	return role == RoleManager || role == RoleAgent
}
