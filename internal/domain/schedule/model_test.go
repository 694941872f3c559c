package schedule_test

import (
	"errors"
	"testing"
	"time"

	"studio/internal/domain/day"
	"studio/internal/domain/errs"
	"studio/internal/domain/schedule"
)

func validSchedule() schedule.Schedule {
	return schedule.Schedule{
		ID:            "s1",
		ServiceID:     "svc-hatha",
		TrainerID:     "tr-1",
		Rule:          schedule.WeeklyOn(time.Monday, time.Wednesday),
		StartTime:     "07:00",
		EndTime:       "08:15",
		EffectiveFrom: day.Date(2025, 1, 1),
		IsActive:      true,
	}
}

// TestSchedule_Validate tests validation of Schedule.
func TestSchedule_Validate(t *testing.T) {
	before := day.Date(2024, 12, 1)

	tests := []struct {
		name    string
		mutate  func(s *schedule.Schedule)
		wantErr error
	}{
		{"valid weekly", func(s *schedule.Schedule) {}, nil},
		{"valid monthly", func(s *schedule.Schedule) { s.Rule = schedule.Monthly{DayOfMonth: 31} }, nil},
		{"valid custom", func(s *schedule.Schedule) {
			s.Rule = schedule.Custom{Dates: []time.Time{day.Date(2025, 2, 2)}}
		}, nil},
		{"empty service", func(s *schedule.Schedule) { s.ServiceID = "" }, schedule.ErrEmptyServiceID},
		{"no rule", func(s *schedule.Schedule) { s.Rule = nil }, schedule.ErrMissingRule},
		{"weekly without days", func(s *schedule.Schedule) { s.Rule = schedule.Weekly{} }, schedule.ErrNoWeekdays},
		{"day of month zero", func(s *schedule.Schedule) { s.Rule = schedule.Monthly{} }, schedule.ErrInvalidDayOfMonth},
		{"day of month 32", func(s *schedule.Schedule) { s.Rule = schedule.Monthly{DayOfMonth: 32} }, schedule.ErrInvalidDayOfMonth},
		{"custom without dates", func(s *schedule.Schedule) { s.Rule = schedule.Custom{} }, schedule.ErrNoCustomDates},
		{"empty start time", func(s *schedule.Schedule) { s.StartTime = "" }, schedule.ErrEmptyStartTime},
		{"empty end time", func(s *schedule.Schedule) { s.EndTime = "" }, schedule.ErrEmptyEndTime},
		{"zero effective from", func(s *schedule.Schedule) { s.EffectiveFrom = time.Time{} }, schedule.ErrEmptyEffectiveFrom},
		{"until before from", func(s *schedule.Schedule) { s.EffectiveUntil = &before }, schedule.ErrInvalidEffective},
		{"negative capacity", func(s *schedule.Schedule) { s.MaxParticipants = -1 }, schedule.ErrNegativeCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchedule()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !errs.IsValidation(err) {
				t.Errorf("expected validation kind, got %v", err)
			}
		})
	}
}

func TestSchedule_Validate_BadTimeFormat(t *testing.T) {
	s := validSchedule()
	s.StartTime = "7am"
	if err := s.Validate(); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSchedule_DurationHours(t *testing.T) {
	tests := []struct {
		start, end string
		want       float64
	}{
		{"07:00", "08:15", 1.25},
		{"18:00", "19:30", 1.5},
		{"23:00", "00:30", 1.5},
	}
	for _, tt := range tests {
		s := schedule.Schedule{StartTime: tt.start, EndTime: tt.end}
		got, err := s.DurationHours()
		if err != nil {
			t.Fatalf("DurationHours(%s-%s) error: %v", tt.start, tt.end, err)
		}
		if got != tt.want {
			t.Errorf("DurationHours(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestSchedule_HasCapacity(t *testing.T) {
	s := validSchedule()
	if !s.HasCapacity(1000) {
		t.Error("unlimited schedule should always have capacity")
	}
	s.MaxParticipants = 12
	if !s.HasCapacity(11) {
		t.Error("11 of 12 should have capacity")
	}
	if s.HasCapacity(12) {
		t.Error("12 of 12 should be full")
	}
}

func TestWeeklyFromNames(t *testing.T) {
	w, err := schedule.WeeklyFromNames([]string{"wednesday", "Monday"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := w.DayNames()
	if len(got) != 2 || got[0] != schedule.Monday || got[1] != schedule.Wednesday {
		t.Errorf("DayNames() = %v, want [monday wednesday]", got)
	}
	if _, err := schedule.WeeklyFromNames([]string{"funday"}); !errors.Is(err, schedule.ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}
}

func TestParseRecurrenceType(t *testing.T) {
	for _, in := range []string{"weekly", "MONTHLY", "custom"} {
		if _, err := schedule.ParseRecurrenceType(in); err != nil {
			t.Errorf("ParseRecurrenceType(%q) error: %v", in, err)
		}
	}
	if _, err := schedule.ParseRecurrenceType("daily"); !errs.IsValidation(err) {
		t.Errorf("expected validation error for daily, got %v", err)
	}
}

func TestBuildRule(t *testing.T) {
	w, err := schedule.BuildRule(schedule.RecurrenceWeekly, []string{"monday", "friday"}, 9, nil)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if weekly, ok := w.(schedule.Weekly); !ok || !weekly.Days[time.Friday] || weekly.Days[time.Tuesday] {
		t.Errorf("weekly rule = %#v", w)
	}

	m, _ := schedule.BuildRule(schedule.RecurrenceMonthly, []string{"monday"}, 15, nil)
	if m != (schedule.Monthly{DayOfMonth: 15}) {
		t.Errorf("monthly rule = %#v", m)
	}

	c, _ := schedule.BuildRule(schedule.RecurrenceCustom, nil, 0, []time.Time{time.Date(2025, 4, 2, 18, 0, 0, 0, time.UTC)})
	if custom := c.(schedule.Custom); !custom.Dates[0].Equal(day.Date(2025, 4, 2)) {
		t.Errorf("custom dates not truncated: %v", custom.Dates)
	}

	if _, err := schedule.BuildRule("yearly", nil, 0, nil); !errs.IsValidation(err) {
		t.Errorf("unknown type: got %v", err)
	}
}
