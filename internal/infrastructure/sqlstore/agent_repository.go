package sqlstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
)

var _ repository.AgentRepository = (*AgentRepo)(nil)

const agentColumns = `id, name, email, phone, region, commission_rate, active, created_at, updated_at`

// AgentRepo implementación del puerto AgentRepository.
type AgentRepo struct {
	q database.Querier
}

// NewAgentRepository construye el repositorio de agentes.
func NewAgentRepository(q database.Querier) *AgentRepo {
	return &AgentRepo{q: q}
}

// Create persiste un agente.
func (r *AgentRepo) Create(ctx context.Context, a *entity.Agent) error {
	query := `INSERT INTO agents (` + agentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.Name, a.Email, a.Phone, a.Region, a.CommissionRate, boolToInt(a.Active),
		a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

// GetByID obtiene un agente por ID; (nil, nil) si no existe.
func (r *AgentRepo) GetByID(ctx context.Context, id string) (*entity.Agent, error) {
	a, err := scanAgent(r.q.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

// List lista los agentes ordenados por nombre.
func (r *AgentRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`
	rows, err := r.q.QueryRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()
	var list []*entity.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanAgent(row database.Row) (*entity.Agent, error) {
	var a entity.Agent
	var active int
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Region, &a.CommissionRate, &active,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Active = active != 0
	return &a, nil
}
