package analytics

import (
	"context"
	"time"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/internal/leads/repository"
	"estate_portal_backend/internal/leads/snapshot"
	"estate_portal_backend/platform/apperr"
)

const opLoad = "analytics.service.load"

// SnapshotSource supplies the lead and agent collections for a scope.
type SnapshotSource interface {
	Get(ctx context.Context, scope repository.Scope, refresh bool) (snapshot.Snapshot, error)
}

// Request describes whose view to build and how to narrow it.
type Request struct {
	Principal access.Principal
	Criteria  filter.Criteria
	Refresh   bool
	// Location overrides the service default for "now" and month boundaries.
	Location *time.Location
}

// Dataset is the visible, filtered lead set for one request.
type Dataset struct {
	Leads  []domain.Lead
	Agents []domain.Agent
	Now    time.Time
	// OwnLeadsOnly is true when the principal was restricted to its own leads.
	OwnLeadsOnly bool
}

// Service loads datasets for a principal. Aggregates are computed per call
// from the dataset; nothing derived is stored.
type Service struct {
	source SnapshotSource
	policy *access.Policy
	now    func() time.Time
	loc    *time.Location
}

// NewService creates the analytics service. loc is the default reporting
// time zone.
func NewService(source SnapshotSource, policy *access.Policy, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{source: source, policy: policy, now: time.Now, loc: loc}
}

// WithClock returns a copy of s using now instead of time.Now.
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

// Now returns the current time in loc, or in the default reporting zone
// when loc is nil.
func (s *Service) Now(loc *time.Location) time.Time {
	if loc == nil {
		loc = s.loc
	}
	return s.now().In(loc)
}

// Policy exposes the access policy the service enforces.
func (s *Service) Policy() *access.Policy {
	return s.policy
}

// Load fetches the principal's visible leads and applies the criteria.
func (s *Service) Load(ctx context.Context, req Request) (Dataset, error) {
	p := req.Principal
	if p.UserID == "" {
		return Dataset{}, apperr.Unauthorized("unauthorized").WithOp(opLoad)
	}
	if !s.policy.Can(p, access.ResourceLeads, access.ActionRead) {
		return Dataset{}, apperr.Forbidden("you do not have access to leads").WithOp(opLoad)
	}

	ownOnly := !s.policy.SeesAllLeads(p)
	scope := repository.Scope{}
	if ownOnly {
		scope.AgentID = p.UserID
	}

	snap, err := s.source.Get(ctx, scope, req.Refresh)
	if err != nil {
		if apperr.GetKind(err) != apperr.KindUnknown {
			return Dataset{}, err
		}
		return Dataset{}, apperr.Unavailable("failed to load leads, please retry", err).WithOp(opLoad)
	}

	visible := VisibleLeads(snap.Leads, p, s.policy)
	return Dataset{
		Leads:        filter.Apply(visible, req.Criteria),
		Agents:       snap.Agents,
		Now:          s.Now(req.Location),
		OwnLeadsOnly: ownOnly,
	}, nil
}

// VisibleLeads applies the role restriction: principals allowed to view all
// leads get the full set, everyone else only the leads assigned to them.
func VisibleLeads(leads []domain.Lead, p access.Principal, policy *access.Policy) []domain.Lead {
	if policy.SeesAllLeads(p) {
		return leads
	}
	out := make([]domain.Lead, 0)
	for _, l := range leads {
		if l.IsAssignedTo(p.UserID) {
			out = append(out, l)
		}
	}
	return out
}

// Dashboard computes the headline KPIs of the dataset.
func (d Dataset) Dashboard() DashboardMetrics { return Dashboard(d.Leads, d.Now) }

// Sources computes per-source analytics.
func (d Dataset) Sources() []SourceAnalytics { return BySource(d.Leads) }

// AgentPerformance computes per-agent analytics.
func (d Dataset) AgentPerformance() []AgentPerformance { return ByAgent(d.Leads, d.Agents) }

// Funnel computes the status funnel.
func (d Dataset) Funnel() []StatusFunnelEntry { return Funnel(d.Leads, d.Now) }

// Activities counts activities by type.
func (d Dataset) Activities() []ActivityCount { return ActivityCounts(d.Leads) }

// Overview computes the landing page bundle.
func (d Dataset) Overview() Overview { return BuildOverview(d.Leads, d.Now) }
