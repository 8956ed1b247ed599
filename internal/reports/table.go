package reports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/leads/domain"
)

// NotAvailable is written for missing values.
const NotAvailable = "N/A"

// Table is a report ready for encoding. Rows follow the order of the
// aggregate they were built from.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// IsEmpty reports whether the table has no data rows.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Build renders the aggregate for t from the dataset.
func Build(t Type, ds analytics.Dataset) (Table, error) {
	switch t {
	case TypeOverview:
		return overviewTable(ds), nil
	case TypeLeads:
		return leadsTable(ds), nil
	case TypeAgents, TypePerformance:
		return agentsTable(ds), nil
	case TypeSources:
		return sourcesTable(ds), nil
	case TypeActivities:
		return activitiesTable(ds), nil
	case TypeFunnel:
		return funnelTable(ds), nil
	}
	return Table{}, fmt.Errorf("unknown report type %q", t)
}

// overviewTable has no rows for an empty lead set; zero KPIs over nothing
// are not worth a file.
func overviewTable(ds analytics.Dataset) Table {
	t := Table{Title: "Overview", Header: []string{"Metric", "Value"}}
	if len(ds.Leads) == 0 {
		return t
	}
	m := ds.Dashboard()
	t.Rows = [][]string{
		{"Total Leads", strconv.Itoa(m.TotalLeads)},
		{"Converted Leads", strconv.Itoa(m.ConvertedLeads)},
		{"Conversion Rate (%)", percent(m.ConversionRate)},
		{"Active Leads", strconv.Itoa(m.ActiveLeads)},
		{"New Leads This Month", strconv.Itoa(m.NewLeadsThisMonth)},
		{"Avg. Days To Convert", strconv.Itoa(m.AverageTimeToConvert)},
	}
	return t
}

func leadsTable(ds analytics.Dataset) Table {
	t := Table{Title: "Leads", Header: []string{
		"Name", "Primary Phone", "Primary Email", "Status", "Lead Score", "Lead Type",
		"Source", "Property Type", "Budget Range", "Preferred Locations",
		"Assigned Agent", "Received Date", "Created At",
	}}
	names := agentNames(ds.Agents)
	loc := ds.Now.Location()

	for _, l := range ds.Leads {
		t.Rows = append(t.Rows, []string{
			orNA(l.Name),
			orNA(l.PrimaryPhone),
			orNA(l.PrimaryEmail),
			orNA(string(l.Status)),
			orNA(string(l.LeadScore)),
			orNA(string(l.LeadType)),
			orNA(l.Source),
			orNA(string(l.PropertyType)),
			orNA(l.BudgetRange),
			orNA(strings.Join(nonEmpty(l.PreferredLocations), "; ")),
			agentName(l, names),
			dateOrNA(l.ReceivedDate, loc),
			dateOrNA(&l.CreatedAt, loc),
		})
	}
	return t
}

func agentsTable(ds analytics.Dataset) Table {
	t := Table{Title: "Agent Performance", Header: []string{
		"Agent", "Total Leads", "Converted Leads", "Active Leads", "Conversion Rate (%)",
		"Avg. Days To Convert", "Calls", "Emails", "Meetings", "Notes", "Total Activities",
	}}
	for _, p := range ds.AgentPerformance() {
		t.Rows = append(t.Rows, []string{
			p.AgentName,
			strconv.Itoa(p.TotalLeads),
			strconv.Itoa(p.ConvertedLeads),
			strconv.Itoa(p.ActiveLeads),
			percent(p.ConversionRate),
			strconv.Itoa(p.AverageTimeToConvert),
			strconv.Itoa(p.CallsCount),
			strconv.Itoa(p.EmailsCount),
			strconv.Itoa(p.MeetingsCount),
			strconv.Itoa(p.NotesCount),
			strconv.Itoa(p.TotalActivities),
		})
	}
	return t
}

func sourcesTable(ds analytics.Dataset) Table {
	t := Table{Title: "Sources", Header: []string{
		"Source", "Total Leads", "Converted Leads", "Qualified Leads", "Conversion Rate (%)", "Avg. Days To Convert",
	}}
	for _, s := range ds.Sources() {
		t.Rows = append(t.Rows, []string{
			s.Source,
			strconv.Itoa(s.TotalLeads),
			strconv.Itoa(s.ConvertedLeads),
			strconv.Itoa(s.QualifiedLeads),
			percent(s.ConversionRate),
			strconv.Itoa(s.AverageTimeToConvert),
		})
	}
	return t
}

// activitiesTable lists the activity log newest first.
func activitiesTable(ds analytics.Dataset) Table {
	t := Table{Title: "Activities", Header: []string{"Date", "Lead", "Type", "Description", "Agent"}}
	loc := ds.Now.Location()
	for _, e := range analytics.ActivityLog(ds.Leads) {
		a := e.Activity
		t.Rows = append(t.Rows, []string{
			timestampOrNA(a.Date, loc),
			orNA(e.LeadName),
			orNA(string(a.Type)),
			orNA(a.Description),
			orNA(a.Agent),
		})
	}
	return t
}

func funnelTable(ds analytics.Dataset) Table {
	t := Table{Title: "Status Funnel", Header: []string{
		"Status", "Count", "Percentage", "Avg. Days In Status", "Conversion Rate (%)", "Drop-off Rate (%)",
	}}
	if len(ds.Leads) == 0 {
		return t
	}
	for _, e := range ds.Funnel() {
		t.Rows = append(t.Rows, []string{
			string(e.Status),
			strconv.Itoa(e.Count),
			percent(e.Percentage),
			percent(e.AverageTimeInStatus),
			percent(e.ConversionRate),
			percent(e.DropOffRate),
		})
	}
	return t
}

func agentNames(agents []domain.Agent) map[string]string {
	names := make(map[string]string, len(agents))
	for _, a := range agents {
		names[a.ID] = a.Name
	}
	return names
}

func agentName(l domain.Lead, names map[string]string) string {
	if l.AssignedAgent == nil || *l.AssignedAgent == "" {
		return NotAvailable
	}
	if n := names[*l.AssignedAgent]; n != "" {
		return n
	}
	return domain.UnknownAgentName
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func dateOrNA(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.In(loc).Format("2006-01-02")
}

func timestampOrNA(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
