package filter

import (
	"testing"
	"time"
)

var refNow = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

func TestResolvePreset_Today(t *testing.T) {
	r, ok := ResolvePreset(PresetToday, refNow)
	if !ok {
		t.Fatalf("expected today to resolve")
	}
	if !r.Start.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", r.Start)
	}
	if !r.End.Equal(time.Date(2024, 3, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC)) {
		t.Fatalf("unexpected end %v", r.End)
	}
}

func TestResolvePreset_Yesterday(t *testing.T) {
	r, _ := ResolvePreset(PresetYesterday, refNow)
	if r.Start.Day() != 14 || r.End.Day() != 14 || r.End.Hour() != 23 {
		t.Fatalf("unexpected yesterday range %v - %v", r.Start, r.End)
	}
}

func TestResolvePreset_LastNDaysIncludesToday(t *testing.T) {
	r7, _ := ResolvePreset(PresetLast7Days, refNow)
	if !r7.Start.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last7days start %v", r7.Start)
	}
	r30, _ := ResolvePreset(PresetLast30Days, refNow)
	if !r30.Start.Equal(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last30days start %v", r30.Start)
	}
	if !r30.Contains(EndOfDay(refNow)) {
		t.Fatalf("last30days must include the end of today")
	}
}

func TestResolvePreset_MonthBoundaries(t *testing.T) {
	this, _ := ResolvePreset(PresetThisMonth, refNow)
	if !this.Start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || this.End.Day() != 31 {
		t.Fatalf("unexpected thisMonth %v - %v", this.Start, this.End)
	}
	last, _ := ResolvePreset(PresetLastMonth, refNow)
	if !last.Start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected lastMonth start %v", last.Start)
	}
	if last.End.Month() != time.February || last.End.Day() != 29 {
		t.Fatalf("lastMonth should end on Feb 29 in a leap year, got %v", last.End)
	}
}

func TestResolvePreset_Last3MonthsAndThisYearEndNow(t *testing.T) {
	r, _ := ResolvePreset(PresetLast3Months, refNow)
	if !r.Start.Equal(time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)) || !r.End.Equal(refNow) {
		t.Fatalf("unexpected last3months %v - %v", r.Start, r.End)
	}
	y, _ := ResolvePreset(PresetThisYear, refNow)
	if !y.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !y.End.Equal(refNow) {
		t.Fatalf("unexpected thisYear %v - %v", y.Start, y.End)
	}
}

func TestResolvePreset_CustomAndUnknownResolveToNothing(t *testing.T) {
	if _, ok := ResolvePreset(PresetCustom, refNow); ok {
		t.Fatalf("custom must not resolve on its own")
	}
	if _, ok := ResolvePreset(Preset("fortnight"), refNow); ok {
		t.Fatalf("unknown presets must not resolve")
	}
}

func TestResolvePreset_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 15, 1, 0, 0, 0, loc)
	r, _ := ResolvePreset(PresetToday, now)
	if r.Start.Location() != loc || r.Start.Day() != 15 {
		t.Fatalf("expected IST midnight, got %v", r.Start)
	}
}

func TestCustomRange(t *testing.T) {
	a := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	if _, ok := CustomRange(&a, nil); ok {
		t.Fatalf("missing end must be inactive")
	}
	if _, ok := CustomRange(&b, &a); ok {
		t.Fatalf("inverted range must be inactive")
	}
	r, ok := CustomRange(&a, &b)
	if !ok || !r.Contains(time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC)) {
		t.Fatalf("custom range must include the whole end day")
	}
	if r, ok := CustomRange(&a, &a); !ok || !r.Contains(a.Add(12*time.Hour)) {
		t.Fatalf("single-day custom range must be valid")
	}
}
