package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Lead is a prospective buyer or tenant tracked through the pipeline.
type Lead struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	PrimaryPhone       string       `json:"primaryPhone"`
	SecondaryPhone     string       `json:"secondaryPhone,omitempty"`
	PrimaryEmail       string       `json:"primaryEmail"`
	SecondaryEmail     string       `json:"secondaryEmail,omitempty"`
	Status             Status       `json:"status"`
	LeadScore          LeadScore    `json:"leadScore"`
	LeadType           LeadType     `json:"leadType"`
	Source             string       `json:"source"`
	PropertyType       PropertyType `json:"propertyType"`
	BudgetRange        string       `json:"budgetRange,omitempty"`
	Budget             *float64     `json:"budget,omitempty"`
	PreferredLocations []string     `json:"preferredLocations"`
	AssignedAgent      *string      `json:"assignedAgent,omitempty"`
	CreatedBy          string       `json:"createdBy"`
	CreatedAt          time.Time    `json:"createdAt"`
	ReceivedDate       *time.Time   `json:"receivedDate,omitempty"`
	AssignedDate       *time.Time   `json:"assignedDate,omitempty"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	Activities         []Activity   `json:"activities"`
}

// ActivityType classifies an entry in a lead's activity log.
type ActivityType string

const (
	ActivityCall          ActivityType = "Call"
	ActivityEmail         ActivityType = "Email"
	ActivityMeeting       ActivityType = "Meeting"
	ActivityNote          ActivityType = "Note"
	ActivityStatusChange  ActivityType = "Status Change"
	ActivityPropertyShown ActivityType = "Property Shown"
)

// ActivityTypes lists activity types in display order.
var ActivityTypes = []ActivityType{
	ActivityCall,
	ActivityEmail,
	ActivityMeeting,
	ActivityNote,
	ActivityStatusChange,
	ActivityPropertyShown,
}

// Activity is one entry in a lead's log. Status Change entries may carry the
// transition explicitly; older rows only describe it in prose.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Agent       string       `json:"agent"`
	FromStatus  *Status      `json:"fromStatus,omitempty"`
	ToStatus    *Status      `json:"toStatus,omitempty"`
}

var statusChangePattern = regexp.MustCompile(`(?i)status\s+changed\s+from\s+"?([^"]+?)"?\s+to\s+"?([^"]+?)"?\s*\.?$`)

// Transition returns the from/to stages of a Status Change entry. The
// explicit fields win; otherwise the description is parsed.
func (a Activity) Transition() (from Status, to Status, ok bool) {
	if a.Type != ActivityStatusChange {
		return "", "", false
	}
	if a.ToStatus != nil {
		if a.FromStatus != nil {
			from = *a.FromStatus
		}
		return from, *a.ToStatus, true
	}

	m := statusChangePattern.FindStringSubmatch(strings.TrimSpace(a.Description))
	if m == nil {
		return "", "", false
	}
	from, to = CanonicalStatus(m[1]), CanonicalStatus(m[2])
	if !to.IsValid() {
		return "", "", false
	}
	return from, to, true
}

// CanonicalStatus maps raw onto a known status ignoring case and surrounding
// space. Unknown values are returned trimmed and fail IsValid.
func CanonicalStatus(raw string) Status {
	raw = strings.TrimSpace(raw)
	for _, s := range Statuses {
		if strings.EqualFold(string(s), raw) {
			return s
		}
	}
	return Status(raw)
}

// SortActivities orders a lead's activities newest-first. Equal dates keep
// their stored order.
func SortActivities(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
}

// StatusVisit is one contiguous stay in a stage.
type StatusVisit struct {
	Status  Status
	Entered time.Time
	// Left is nil for the current stage.
	Left *time.Time
}

// Timeline reconstructs the stages a lead passed through, oldest first.
// The lead enters its first known stage at CreatedAt; each Status Change
// entry closes the open visit and starts the next one.
func (l Lead) Timeline() []StatusVisit {
	changes := make([]Activity, 0)
	for _, a := range l.Activities {
		if _, _, ok := a.Transition(); ok {
			changes = append(changes, a)
		}
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Date.Before(changes[j].Date)
	})

	first := l.Status
	if len(changes) > 0 {
		if from, _, _ := changes[0].Transition(); from.IsValid() {
			first = from
		} else {
			first = StatusNew
		}
	}

	visits := []StatusVisit{{Status: first, Entered: l.CreatedAt}}
	for _, change := range changes {
		_, to, _ := change.Transition()
		left := change.Date
		visits[len(visits)-1].Left = &left
		visits = append(visits, StatusVisit{Status: to, Entered: change.Date})
	}
	return visits
}

// ConvertedAt returns the time of the latest transition into Converted.
func (l Lead) ConvertedAt() (time.Time, bool) {
	var latest time.Time
	found := false
	for _, a := range l.Activities {
		_, to, ok := a.Transition()
		if !ok || to != StatusConverted {
			continue
		}
		if !found || a.Date.After(latest) {
			latest = a.Date
			found = true
		}
	}
	return latest, found
}

// HighestRank is the furthest funnel rank the lead has reached, looking at
// its current stage and every stage in its history.
func (l Lead) HighestRank() int {
	best := l.Status.Rank()
	for _, a := range l.Activities {
		from, to, ok := a.Transition()
		if !ok {
			continue
		}
		if r := from.Rank(); r > best {
			best = r
		}
		if r := to.Rank(); r > best {
			best = r
		}
	}
	return best
}

// HasVisited reports whether the lead is or ever was in stage s.
func (l Lead) HasVisited(s Status) bool {
	if l.Status == s {
		return true
	}
	for _, a := range l.Activities {
		from, to, ok := a.Transition()
		if ok && (from == s || to == s) {
			return true
		}
	}
	return false
}

// IsAssignedTo reports whether agentID owns the lead.
func (l Lead) IsAssignedTo(agentID string) bool {
	return l.AssignedAgent != nil && *l.AssignedAgent == agentID
}

// Agent is a user that can own leads.
type Agent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// UnknownAgentName is shown for leads whose agent is missing from the directory.
const UnknownAgentName = "Unknown Agent"
