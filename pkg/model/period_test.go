package model

import "testing"

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		year    int
		month   int
		wantErr bool
	}{
		{"2006-01", 2006, 1, false},
		{"1994-12", 1994, 12, false},
		{" 2010-06 ", 2010, 6, false},
		{"2006-13", 0, 0, true},
		{"2006-00", 0, 0, true},
		{"2006", 0, 0, true},
		{"abcd-01", 0, 0, true},
	}

	for _, tt := range tests {
		p, err := ParsePeriod(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePeriod(%q) expected error, got %v", tt.input, p)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePeriod(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if p.Year() != tt.year || p.Month() != tt.month {
			t.Errorf("ParsePeriod(%q) = %d-%d, want %d-%d", tt.input, p.Year(), p.Month(), tt.year, tt.month)
		}
	}
}

func TestPeriodString(t *testing.T) {
	p := NewPeriod(2006, 1)
	if got := p.String(); got != "2006-01" {
		t.Errorf("String() = %q, want %q", got, "2006-01")
	}
	if got := NewPeriod(1994, 12).String(); got != "1994-12" {
		t.Errorf("String() = %q, want %q", got, "1994-12")
	}
}

func TestPeriodAdd(t *testing.T) {
	p := NewPeriod(2006, 11)

	next := p.Add(2)
	if next.Year() != 2007 || next.Month() != 1 {
		t.Errorf("Add(2) = %s, want 2007-01", next)
	}

	prev := p.Add(-11)
	if prev.Year() != 2005 || prev.Month() != 12 {
		t.Errorf("Add(-11) = %s, want 2005-12", prev)
	}
}

func TestPeriodOrdering(t *testing.T) {
	a := NewPeriod(2005, 12)
	b := NewPeriod(2006, 1)
	if !a.Before(b) {
		t.Error("2005-12 should be before 2006-01")
	}
	if b.Before(a) {
		t.Error("2006-01 should not be before 2005-12")
	}
}

func TestPeriodRange(t *testing.T) {
	start := NewPeriod(2005, 11)
	end := NewPeriod(2006, 2)

	got := PeriodRange(start, end)
	want := []string{"2005-11", "2005-12", "2006-01", "2006-02"}
	if len(got) != len(want) {
		t.Fatalf("PeriodRange returned %d periods, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.String() != want[i] {
			t.Errorf("PeriodRange[%d] = %s, want %s", i, p, want[i])
		}
	}

	if got := PeriodRange(end, start); got != nil {
		t.Errorf("reversed range should be nil, got %v", got)
	}
}
