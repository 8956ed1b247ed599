// Package agents exposes the directory of users that can own leads.
package agents

import (
	"context"
	"fmt"

	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgxpool"
)

const opListAgents = "agents.repository.list"

// Directory lists agents. Implemented by Repository and CachedDirectory.
type Directory interface {
	ListAgents(ctx context.Context) ([]domain.Agent, error)
}

// Repository reads agents from the users table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an agent repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListAgents returns every agent and admin, inactive ones included, so
// historical leads still resolve to a name.
func (r *Repository) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role, is_active
		FROM users
		WHERE role IN ('agent', 'admin')
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, apperr.Unavailable("failed to load agents", err).WithOp(opListAgents)
	}
	defer rows.Close()

	items := make([]domain.Agent, 0)
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.IsActive); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan agent failed: %v", err)).WithOp(opListAgents)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to load agents", err).WithOp(opListAgents)
	}

	return items, nil
}
