package projections

import (
	"context"
	"time"

	"studio/internal/domain/day"
	"studio/internal/domain/schedule"
)

// AvailableDatesQuery carries query parameters.
type AvailableDatesQuery struct {
	ScheduleID string
	Horizon    string // optional YYYY-MM-DD; required for open-ended weekly and monthly schedules
}

// AvailableDatesResult carries the query result.
type AvailableDatesResult struct {
	ScheduleID     string
	RecurrenceType string
	Dates          []string
}

// AvailableDatesDeps holds dependencies for QueryAvailableDates.
type AvailableDatesDeps struct {
	Schedules ScheduleStore
	Closures  ClosureStore // optional: nil ignores closures
}

// QueryAvailableDates expands a schedule into its class dates, minus studio
// closures, up to the schedule end or the given horizon.
// PRE: schedule exists
// POST: Returns sorted ISO dates; ErrHorizonRequired when nothing bounds the expansion
func QueryAvailableDates(ctx context.Context, query AvailableDatesQuery, deps AvailableDatesDeps) (AvailableDatesResult, error) {
	horizon, err := day.ParseOptional(query.Horizon)
	if err != nil {
		return AvailableDatesResult{}, err
	}
	s, err := deps.Schedules.GetByID(ctx, query.ScheduleID)
	if err != nil {
		return AvailableDatesResult{}, err
	}

	opts := schedule.ResolveOptions{Horizon: horizon}
	if deps.Closures != nil {
		if until := closureWindowEnd(s, horizon); until != nil {
			if opts.Closures, err = deps.Closures.ListOverlapping(ctx, s.EffectiveFrom, *until); err != nil {
				return AvailableDatesResult{}, err
			}
		}
	}
	dates, err := s.AvailableDates(opts)
	if err != nil {
		return AvailableDatesResult{}, err
	}
	return AvailableDatesResult{
		ScheduleID:     s.ID,
		RecurrenceType: string(s.RecurrenceType()),
		Dates:          day.FormatAll(dates),
	}, nil
}

// closureWindowEnd is the last date closures can matter for, or nil when the
// expansion itself will be rejected for lack of a bound.
func closureWindowEnd(s schedule.Schedule, horizon *time.Time) *time.Time {
	switch {
	case horizon != nil:
		return horizon
	case s.EffectiveUntil != nil:
		return s.EffectiveUntil
	}
	if custom, ok := s.Rule.(schedule.Custom); ok && len(custom.Dates) > 0 {
		last := custom.Dates[0]
		for _, d := range custom.Dates[1:] {
			if d.After(last) {
				last = d
			}
		}
		return &last
	}
	return nil
}
