package repository

import (
	"context"

	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// AgentRepository puerto de persistencia para Agent.
type AgentRepository interface {
	Create(ctx context.Context, agent *entity.Agent) error
	GetByID(ctx context.Context, id string) (*entity.Agent, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Agent, error)
}
