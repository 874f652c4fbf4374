package domain

import (
	"errors"
	"testing"
	"time"
)

func period(status PeriodStatus, start, end string) FinancialPeriod {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	return FinancialPeriod{Code: "2026-03", StartDate: s, EndDate: e, Status: status}
}

func TestPeriodContains(t *testing.T) {
	p := period(PeriodStatusOpen, "2026-03-01", "2026-03-31")

	in := []string{"2026-03-01", "2026-03-15", "2026-03-31"}
	for _, d := range in {
		date, _ := time.Parse("2006-01-02", d)
		if !p.Contains(date) {
			t.Errorf("expected %s inside period", d)
		}
	}

	out := []string{"2026-02-28", "2026-04-01"}
	for _, d := range out {
		date, _ := time.Parse("2006-01-02", d)
		if p.Contains(date) {
			t.Errorf("expected %s outside period", d)
		}
	}
}

func TestPeriodOverlaps(t *testing.T) {
	mar := period(PeriodStatusOpen, "2026-03-01", "2026-03-31")
	apr := period(PeriodStatusOpen, "2026-04-01", "2026-04-30")
	overlapping := period(PeriodStatusOpen, "2026-03-20", "2026-04-10")

	if mar.Overlaps(&apr) {
		t.Error("contiguous periods must not overlap")
	}
	if !mar.Overlaps(&overlapping) {
		t.Error("expected overlap with 2026-03-20..2026-04-10")
	}
	if !apr.Overlaps(&overlapping) {
		t.Error("expected overlap with 2026-03-20..2026-04-10")
	}
}

func TestPeriodCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    PeriodStatus
		to      PeriodStatus
		wantErr error
	}{
		{"open to closed", PeriodStatusOpen, PeriodStatusClosed, nil},
		{"closed to locked", PeriodStatusClosed, PeriodStatusLocked, nil},
		{"closed reopen", PeriodStatusClosed, PeriodStatusOpen, nil},
		{"open to locked", PeriodStatusOpen, PeriodStatusLocked, ErrValidation},
		{"locked reopen", PeriodStatusLocked, PeriodStatusOpen, ErrPeriodLocked},
		{"locked to closed", PeriodStatusLocked, PeriodStatusClosed, ErrPeriodLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := period(tt.from, "2026-03-01", "2026-03-31")
			err := p.CanTransition(tt.to)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
