// Package reports turns analytics aggregates into downloadable files and
// archives queued reports in object storage.
package reports

import (
	"strings"
	"time"
)

// Messages shown to users when an export is refused.
const (
	MsgNoPermission = "You do not have permission to export reports"
	MsgNoData       = "No data available to export"
)

// Type names a report. Performance is an alias of agents kept for the file
// name the caller asked for.
type Type string

const (
	TypeOverview    Type = "overview"
	TypeLeads       Type = "leads"
	TypeAgents      Type = "agents"
	TypePerformance Type = "performance"
	TypeSources     Type = "sources"
	TypeActivities  Type = "activities"
	TypeFunnel      Type = "funnel"
)

// Types lists the report types in menu order.
var Types = []Type{TypeOverview, TypeLeads, TypeAgents, TypePerformance, TypeSources, TypeActivities, TypeFunnel}

// ParseType resolves a report name, ignoring case.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Types {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Format is the file encoding of a report.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a format name. Empty means CSV.
func ParseFormat(raw string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// ContentType returns the MIME type of files in this format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds {my_}{type}_report_{YYYY-MM-DD}.{ext}. The my_ prefix marks
// exports limited to the caller's own leads.
func FileName(t Type, f Format, ownLeadsOnly bool, at time.Time) string {
	prefix := ""
	if ownLeadsOnly {
		prefix = "my_"
	}
	return prefix + string(t) + "_report_" + at.Format("2006-01-02") + "." + string(f)
}
