package filter

import (
	"net/url"
	"strings"
	"time"

	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// Query is the raw filter state as sent by the client. Enumerated
// multi-select dimensions accept repeated parameters or comma separated
// values. Source is free text, so only repeated parameters split it.
type Query struct {
	Search         string   `validate:"max=200"`
	Status         []string `validate:"dive,lead_status"`
	Source         []string `validate:"dive,max=100"`
	PropertyType   []string `validate:"dive,property_type"`
	LeadScore      []string `validate:"dive,lead_score"`
	LeadType       []string `validate:"dive,lead_type"`
	AssignedAgent  string   `validate:"max=100"`
	BudgetRange    string   `validate:"max=100"`
	DateFilterType string   `validate:"omitempty,oneof=receivedDate createdAt"`
	DatePreset     string   `validate:"omitempty,oneof=today yesterday last7days last30days thisMonth lastMonth last3months thisYear custom"`
	StartDate      string   `validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `validate:"omitempty,datetime=2006-01-02"`
}

// QueryFromValues reads the filter parameters from a URL query.
func QueryFromValues(values url.Values) Query {
	return Query{
		Search:         strings.TrimSpace(values.Get("search")),
		Status:         multi(values, "status"),
		Source:         repeated(values, "source"),
		PropertyType:   multi(values, "propertyType"),
		LeadScore:      multi(values, "leadScore"),
		LeadType:       multi(values, "leadType"),
		AssignedAgent:  strings.TrimSpace(values.Get("assignedAgent")),
		BudgetRange:    strings.TrimSpace(values.Get("budgetRange")),
		DateFilterType: strings.TrimSpace(values.Get("dateFilterType")),
		DatePreset:     strings.TrimSpace(values.Get("datePreset")),
		StartDate:      strings.TrimSpace(values.Get("startDate")),
		EndDate:        strings.TrimSpace(values.Get("endDate")),
	}
}

// RegisterValidations adds the lead enumeration rules used by Query.
func RegisterValidations(v *validator.Validator) error {
	rules := map[string]govalidator.Func{
		"lead_status": func(fl govalidator.FieldLevel) bool {
			return domain.Status(fl.Field().String()).IsValid()
		},
		"lead_score": func(fl govalidator.FieldLevel) bool {
			return contains(domain.LeadScores, domain.LeadScore(fl.Field().String()))
		},
		"lead_type": func(fl govalidator.FieldLevel) bool {
			return contains(domain.LeadTypes, domain.LeadType(fl.Field().String()))
		},
		"property_type": func(fl govalidator.FieldLevel) bool {
			return contains(domain.PropertyTypes, domain.PropertyType(fl.Field().String()))
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// Build validates q and resolves it into Criteria. Dates are interpreted in
// now's location. A custom range that is incomplete or inverted leaves the
// date filter inactive rather than failing the request.
func (q Query) Build(v *validator.Validator, now time.Time) (Criteria, error) {
	if err := v.Struct(q); err != nil {
		return Criteria{}, apperr.Validation("invalid filter").WithDetails(validator.Describe(err))
	}

	c := Criteria{
		Search:        q.Search,
		Sources:       q.Source,
		AssignedAgent: q.AssignedAgent,
		BudgetRange:   q.BudgetRange,
		DateField:     DateField(q.DateFilterType),
	}
	if c.DateField == "" {
		c.DateField = DateFieldCreated
	}
	for _, s := range q.Status {
		c.Statuses = append(c.Statuses, domain.Status(s))
	}
	for _, s := range q.PropertyType {
		c.PropertyTypes = append(c.PropertyTypes, domain.PropertyType(s))
	}
	for _, s := range q.LeadScore {
		c.LeadScores = append(c.LeadScores, domain.LeadScore(s))
	}
	for _, s := range q.LeadType {
		c.LeadTypes = append(c.LeadTypes, domain.LeadType(s))
	}

	preset := Preset(q.DatePreset)
	if preset == "" && (q.StartDate != "" || q.EndDate != "") {
		preset = PresetCustom
	}

	if preset == PresetCustom {
		start := parseDay(q.StartDate, now.Location())
		end := parseDay(q.EndDate, now.Location())
		if r, ok := CustomRange(start, end); ok {
			c.DateRange = &r
		}
	} else if r, ok := ResolvePreset(preset, now); ok {
		c.DateRange = &r
	}

	return c, nil
}

func parseDay(value string, loc *time.Location) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil
	}
	return &t
}

func multi(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func repeated(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
