package filter

import "time"

// Preset names a quick date range offered by the filter controls.
type Preset string

const (
	PresetToday       Preset = "today"
	PresetYesterday   Preset = "yesterday"
	PresetLast7Days   Preset = "last7days"
	PresetLast30Days  Preset = "last30days"
	PresetThisMonth   Preset = "thisMonth"
	PresetLastMonth   Preset = "lastMonth"
	PresetLast3Months Preset = "last3months"
	PresetThisYear    Preset = "thisYear"
	PresetCustom      Preset = "custom"
)

// Presets lists the presets in the order the controls show them.
var Presets = []Preset{
	PresetToday,
	PresetYesterday,
	PresetLast7Days,
	PresetLast30Days,
	PresetThisMonth,
	PresetLastMonth,
	PresetLast3Months,
	PresetThisYear,
	PresetCustom,
}

// Range is an inclusive time interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// ResolvePreset turns a preset into concrete bounds relative to now, in now's
// location. Custom and unknown presets resolve to nothing; the caller must
// supply explicit bounds for those.
func ResolvePreset(p Preset, now time.Time) (Range, bool) {
	today := StartOfDay(now)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch p {
	case PresetToday:
		return Range{Start: today, End: EndOfDay(now)}, true
	case PresetYesterday:
		y := today.AddDate(0, 0, -1)
		return Range{Start: y, End: EndOfDay(y)}, true
	case PresetLast7Days:
		return Range{Start: today.AddDate(0, 0, -6), End: EndOfDay(now)}, true
	case PresetLast30Days:
		return Range{Start: today.AddDate(0, 0, -29), End: EndOfDay(now)}, true
	case PresetThisMonth:
		return Range{Start: firstOfMonth, End: firstOfMonth.AddDate(0, 1, 0).Add(-time.Millisecond)}, true
	case PresetLastMonth:
		return Range{Start: firstOfMonth.AddDate(0, -1, 0), End: firstOfMonth.Add(-time.Millisecond)}, true
	case PresetLast3Months:
		return Range{Start: today.AddDate(0, -3, 0), End: now}, true
	case PresetThisYear:
		return Range{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), End: now}, true
	default:
		return Range{}, false
	}
}

// CustomRange builds a range from user-picked days. Both days are required
// and start must not be after end; the end day is included in full.
func CustomRange(start, end *time.Time) (Range, bool) {
	if start == nil || end == nil {
		return Range{}, false
	}
	r := Range{Start: StartOfDay(*start), End: EndOfDay(*end)}
	if r.Start.After(r.End) {
		return Range{}, false
	}
	return r, true
}
