package entity

// Actor usuario autenticado que ejecuta una operación (se arma desde el JWT).
type Actor struct {
	UserID  string
	Role    string
	AgentID string
}

// IsManager indica si el actor tiene rol de gerente.
func (a Actor) IsManager() bool { return a.Role == RoleManager }
