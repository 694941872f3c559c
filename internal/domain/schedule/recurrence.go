package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"studio/internal/domain/day"
	"studio/internal/domain/errs"
	"studio/internal/domain/holiday"
)

// RecurrenceType tags the variant of a Rule.
type RecurrenceType string

// Recurrence types.
const (
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// MaxExpansionDays bounds a single expansion so an open-ended schedule can
// never produce an unbounded date list.
const MaxExpansionDays = 3660

// Resolver errors
var (
	ErrHorizonRequired = fmt.Errorf("%w: open-ended schedule needs an explicit horizon", errs.ErrValidation)
	ErrHorizonTooFar   = fmt.Errorf("%w: expansion window exceeds %d days", errs.ErrValidation, MaxExpansionDays)
)

// Rule is one of Weekly, Monthly or Custom. The unexported methods close the
// set, so a schedule always carries exactly one recurrence mechanism.
type Rule interface {
	Type() RecurrenceType
	validate() error
	occursOn(d time.Time) bool
}

// Weekly recurs on the flagged weekdays, indexed by time.Weekday.
type Weekly struct {
	Days [7]bool
}

// WeeklyOn builds a Weekly rule for the given weekdays.
func WeeklyOn(days ...time.Weekday) Weekly {
	var w Weekly
	for _, d := range days {
		w.Days[d] = true
	}
	return w
}

// WeeklyFromNames builds a Weekly rule from lowercase day names.
// PRE: names are members of ValidDays
// POST: Returns the rule or ErrInvalidDay
func WeeklyFromNames(names []string) (Weekly, error) {
	var w Weekly
	for _, n := range names {
		wd, err := ParseWeekday(n)
		if err != nil {
			return Weekly{}, err
		}
		w.Days[wd] = true
	}
	return w, nil
}

// Type implements Rule.
func (w Weekly) Type() RecurrenceType { return RecurrenceWeekly }

// DayNames lists the flagged days, Monday first.
func (w Weekly) DayNames() []string {
	return lo.Filter(ValidDays, func(name string, _ int) bool {
		return w.Days[dayToWeekday[name]]
	})
}

func (w Weekly) validate() error {
	if !lo.Contains(w.Days[:], true) {
		return ErrNoWeekdays
	}
	return nil
}

func (w Weekly) occursOn(d time.Time) bool { return w.Days[d.Weekday()] }

// Monthly recurs on one day of every month. Months without that day
// (31 in April, 30 in February) have no occurrence; nothing is rounded.
type Monthly struct {
	DayOfMonth int
}

// Type implements Rule.
func (m Monthly) Type() RecurrenceType { return RecurrenceMonthly }

func (m Monthly) validate() error {
	if m.DayOfMonth < 1 || m.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	return nil
}

func (m Monthly) occursOn(d time.Time) bool { return d.Day() == m.DayOfMonth }

// Custom recurs on an explicit list of dates.
type Custom struct {
	Dates []time.Time
}

// Type implements Rule.
func (c Custom) Type() RecurrenceType { return RecurrenceCustom }

func (c Custom) validate() error {
	if len(c.Dates) == 0 {
		return ErrNoCustomDates
	}
	return nil
}

func (c Custom) occursOn(d time.Time) bool {
	return lo.ContainsBy(c.Dates, func(cd time.Time) bool { return day.Of(cd).Equal(d) })
}

// ParseRecurrenceType validates a recurrence type tag.
func ParseRecurrenceType(s string) (RecurrenceType, error) {
	switch t := RecurrenceType(strings.ToLower(s)); t {
	case RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown recurrence type %q", errs.ErrValidation, s)
}

// BuildRule assembles the Rule variant named by t from the flattened fields
// used in storage and on the wire. Fields belonging to other variants are ignored.
// PRE: t is a valid RecurrenceType
// POST: Returns the rule; variant invariants are checked by Validate
func BuildRule(t RecurrenceType, weekdays []string, dayOfMonth int, customDates []time.Time) (Rule, error) {
	switch t {
	case RecurrenceWeekly:
		return WeeklyFromNames(weekdays)
	case RecurrenceMonthly:
		return Monthly{DayOfMonth: dayOfMonth}, nil
	case RecurrenceCustom:
		return Custom{Dates: lo.Map(customDates, func(d time.Time, _ int) time.Time { return day.Of(d) })}, nil
	}
	return nil, fmt.Errorf("%w: unknown recurrence type %q", errs.ErrValidation, t)
}

// ClipDates truncates dates to calendar days, drops those outside
// [from, until] and returns the rest sorted without duplicates.
// A nil until leaves the window open-ended.
func ClipDates(dates []time.Time, from time.Time, until *time.Time) []time.Time {
	clipped := lo.Uniq(lo.FilterMap(dates, func(d time.Time, _ int) (time.Time, bool) {
		d = day.Of(d)
		return d, day.Within(d, from, until)
	}))
	slices.SortFunc(clipped, time.Time.Compare)
	return clipped
}

// ResolveOptions tunes AvailableDates.
type ResolveOptions struct {
	// From raises the start of the expansion above EffectiveFrom.
	From *time.Time
	// Horizon caps the expansion; nil falls back to EffectiveUntil.
	Horizon *time.Time
	// Closures removes dates on which the studio is shut.
	Closures []holiday.Holiday
}

// AvailableDates expands the schedule into its sorted, de-duplicated class
// dates between the later of EffectiveFrom and From and the earlier of
// EffectiveUntil and Horizon.
// PRE: schedule passes Validate
// POST: Returns dates at midnight UTC; the schedule is not mutated
// INVARIANT: result depends only on the schedule fields and opts
func (s Schedule) AvailableDates(opts ResolveOptions) ([]time.Time, error) {
	if s.Rule == nil {
		return nil, ErrMissingRule
	}
	from := day.Of(s.EffectiveFrom)
	if opts.From != nil && day.Of(*opts.From).After(from) {
		from = day.Of(*opts.From)
	}
	until := s.EffectiveUntil
	if opts.Horizon != nil && (until == nil || opts.Horizon.Before(*until)) {
		until = opts.Horizon
	}

	var dates []time.Time
	if custom, ok := s.Rule.(Custom); ok {
		dates = ClipDates(custom.Dates, from, until)
	} else {
		if until == nil {
			return nil, ErrHorizonRequired
		}
		end := day.Of(*until)
		if end.Before(from) {
			return []time.Time{}, nil
		}
		if int(end.Sub(from).Hours()/24) > MaxExpansionDays {
			return nil, ErrHorizonTooFar
		}
		for d := from; !d.After(end); d = d.AddDate(0, 0, 1) {
			if s.Rule.occursOn(d) {
				dates = append(dates, d)
			}
		}
	}

	if len(opts.Closures) > 0 && len(dates) > 0 {
		first, last := dates[0], dates[len(dates)-1]
		closures := lo.Filter(opts.Closures, func(h holiday.Holiday, _ int) bool { return h.Overlaps(first, last) })
		dates = lo.Reject(dates, func(d time.Time, _ int) bool {
			return lo.ContainsBy(closures, func(h holiday.Holiday) bool { return h.Contains(d) })
		})
	}
	if dates == nil {
		dates = []time.Time{}
	}
	return dates, nil
}

// OccursOn reports whether the schedule has a class on d, ignoring the horizon.
func (s Schedule) OccursOn(d time.Time) bool {
	d = day.Of(d)
	return s.Rule != nil && day.Within(d, s.EffectiveFrom, s.EffectiveUntil) && s.Rule.occursOn(d)
}
