package repository

import (
	"context"
	"fmt"
	"time"

	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/phone"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opListLeads      = "leads.repository.list"
	opListActivities = "leads.repository.list_activities"

	errLeadStoreUnavailable = "lead store unavailable, please retry"
)

// LeadLister reads the lead collection for one visibility scope.
type LeadLister interface {
	ListLeads(ctx context.Context, scope Scope) ([]domain.Lead, error)
}

// Scope restricts a listing to one agent's leads. The zero value lists all.
type Scope struct {
	AgentID string
}

// Key identifies the scope for caching.
func (s Scope) Key() string {
	if s.AgentID == "" {
		return "all"
	}
	return "agent:" + s.AgentID
}

// Store reads leads and their activity logs from PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	phone phone.Normalizer
}

// NewStore creates a lead store. Phone numbers are normalized to E.164 with
// the given normalizer on the way out.
func NewStore(pool *pgxpool.Pool, normalizer phone.Normalizer) *Store {
	return &Store{pool: pool, phone: normalizer}
}

// ListLeads returns the leads in scope, newest first, each with its
// activities sorted newest first.
func (s *Store) ListLeads(ctx context.Context, scope Scope) ([]domain.Lead, error) {
	query := `
		SELECT id, name, primary_phone, secondary_phone, primary_email, secondary_email,
			status, lead_score, lead_type, source, property_type, budget_range, budget::float8,
			preferred_locations, assigned_agent, created_by, created_at, received_date,
			assigned_date, updated_at
		FROM leads`
	args := []interface{}{}
	if scope.AgentID != "" {
		query += " WHERE assigned_agent = $1"
		args = append(args, scope.AgentID)
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable(errLeadStoreUnavailable, err).WithOp(opListLeads)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	index := make(map[string]int)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan lead failed: %v", err)).WithOp(opListLeads)
		}
		lead.PrimaryPhone = s.phone.NormalizeE164(lead.PrimaryPhone)
		lead.SecondaryPhone = s.phone.NormalizeE164(lead.SecondaryPhone)
		index[lead.ID] = len(leads)
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable(errLeadStoreUnavailable, err).WithOp(opListLeads)
	}

	if len(leads) == 0 {
		return leads, nil
	}
	if err := s.attachActivities(ctx, leads, index); err != nil {
		return nil, err
	}
	return leads, nil
}

func (s *Store) attachActivities(ctx context.Context, leads []domain.Lead, index map[string]int) error {
	ids := make([]string, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}

	rows, err := s.pool.Query(ctx, `
		SELECT lead_id, id, type, description, occurred_at, agent, from_status, to_status
		FROM lead_activities
		WHERE lead_id = ANY($1)
		ORDER BY occurred_at DESC, id ASC
	`, ids)
	if err != nil {
		return apperr.Unavailable(errLeadStoreUnavailable, err).WithOp(opListActivities)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			leadID     string
			a          domain.Activity
			activity   string
			fromStatus *string
			toStatus   *string
		)
		if err := rows.Scan(&leadID, &a.ID, &activity, &a.Description, &a.Date, &a.Agent, &fromStatus, &toStatus); err != nil {
			return apperr.Internal(fmt.Sprintf("scan activity failed: %v", err)).WithOp(opListActivities)
		}
		a.Type = domain.ActivityType(activity)
		a.FromStatus = toStatusPtr(fromStatus)
		a.ToStatus = toStatusPtr(toStatus)

		i, ok := index[leadID]
		if !ok {
			continue
		}
		leads[i].Activities = append(leads[i].Activities, a)
	}
	if err := rows.Err(); err != nil {
		return apperr.Unavailable(errLeadStoreUnavailable, err).WithOp(opListActivities)
	}

	for i := range leads {
		if leads[i].Activities == nil {
			leads[i].Activities = []domain.Activity{}
		}
		domain.SortActivities(leads[i].Activities)
	}
	return nil
}

func scanLead(rows pgx.Rows) (domain.Lead, error) {
	var (
		l            domain.Lead
		status       string
		score        string
		leadType     string
		propertyType string
		receivedDate *time.Time
		assignedDate *time.Time
	)
	err := rows.Scan(
		&l.ID, &l.Name, &l.PrimaryPhone, &l.SecondaryPhone, &l.PrimaryEmail, &l.SecondaryEmail,
		&status, &score, &leadType, &l.Source, &propertyType, &l.BudgetRange, &l.Budget,
		&l.PreferredLocations, &l.AssignedAgent, &l.CreatedBy, &l.CreatedAt, &receivedDate,
		&assignedDate, &l.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	l.Status = domain.CanonicalStatus(status)
	l.LeadScore = domain.LeadScore(score)
	l.LeadType = domain.LeadType(leadType)
	l.PropertyType = domain.PropertyType(propertyType)
	l.ReceivedDate = receivedDate
	l.AssignedDate = assignedDate
	if l.PreferredLocations == nil {
		l.PreferredLocations = []string{}
	}
	return l, nil
}

func toStatusPtr(value *string) *domain.Status {
	if value == nil || *value == "" {
		return nil
	}
	s := domain.CanonicalStatus(*value)
	return &s
}
