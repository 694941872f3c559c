package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"studio/internal/domain/customer"
	"studio/internal/domain/day"
	"studio/internal/domain/holiday"
	"studio/internal/domain/schedule"
	"studio/internal/domain/service"
)

// CatalogueDeps holds dependencies for the studio set-up workflows.
type CatalogueDeps struct {
	Tx    TxRunner
	Clock Clock
}

// --- Customers ---

// CreateCustomerInput carries input for the create customer orchestrator.
type CreateCustomerInput struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"omitempty,email"`
	Phone string `validate:"max=30"`
}

// ExecuteCreateCustomer registers a converted lead as a customer.
// PRE: Name is non-empty
// POST: Customer exists with inactive membership until a subscription is created
func ExecuteCreateCustomer(ctx context.Context, input CreateCustomerInput, deps CatalogueDeps) (customer.Customer, error) {
	if err := validateInput(input); err != nil {
		return customer.Customer{}, err
	}
	c := customer.Customer{
		ID:               deps.Clock.newID(),
		Name:             strings.TrimSpace(input.Name),
		Email:            strings.TrimSpace(input.Email),
		Phone:            strings.TrimSpace(input.Phone),
		MembershipStatus: customer.MembershipInactive,
	}
	if err := c.Validate(); err != nil {
		return customer.Customer{}, err
	}
	if err := deps.Tx.InTx(ctx, func(st Stores) error { return st.Customers.Save(ctx, c) }); err != nil {
		return customer.Customer{}, err
	}
	slog.Info("customer_event", "event", "customer_created", "customer_id", c.ID)
	return c, nil
}

// --- Services ---

// CreateServiceInput carries input for the create service orchestrator.
type CreateServiceInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	Level       string `validate:"omitempty,oneof=beginner intermediate advanced all"`
}

// ExecuteCreateService adds an active class offering.
func ExecuteCreateService(ctx context.Context, input CreateServiceInput, deps CatalogueDeps) (service.Service, error) {
	if err := validateInput(input); err != nil {
		return service.Service{}, err
	}
	s := service.Service{
		ID:          deps.Clock.newID(),
		Name:        strings.TrimSpace(input.Name),
		IsActive:    true,
		Description: input.Description,
		Level:       input.Level,
	}
	if err := s.Validate(); err != nil {
		return service.Service{}, err
	}
	if err := deps.Tx.InTx(ctx, func(st Stores) error { return st.Services.Save(ctx, s) }); err != nil {
		return service.Service{}, err
	}
	slog.Info("service_event", "event", "service_created", "service_id", s.ID, "name", s.Name)
	return s, nil
}

// --- Schedules ---

// SaveScheduleInput carries input for the save schedule orchestrator.
// An empty ID creates a new schedule.
type SaveScheduleInput struct {
	ID              string
	ServiceID       string   `validate:"required"`
	TrainerID       string   `validate:"max=100"`
	RecurrenceType  string   `validate:"required,oneof=weekly monthly custom"`
	Weekdays        []string `validate:"required_if=RecurrenceType weekly,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	DayOfMonth      int      `validate:"required_if=RecurrenceType monthly,gte=0,lte=31"`
	CustomDates     []string `validate:"required_if=RecurrenceType custom,dive,datetime=2006-01-02"`
	StartTime       string   `validate:"required,datetime=15:04"`
	EndTime         string   `validate:"required,datetime=15:04"`
	EffectiveFrom   string   `validate:"required,datetime=2006-01-02"`
	EffectiveUntil  string   `validate:"omitempty,datetime=2006-01-02"`
	MaxParticipants int      `validate:"gte=0"`
	IsActive        *bool    // nil keeps the current flag; new schedules default to active
}

// ExecuteSaveSchedule creates or edits a schedule. Existing bookings are not
// touched; they pick the change up on their next update or refresh.
// PRE: service exists; the rule carries exactly one recurrence mechanism
// POST: schedule stored
func ExecuteSaveSchedule(ctx context.Context, input SaveScheduleInput, deps CatalogueDeps) (schedule.Schedule, error) {
	if err := validateInput(input); err != nil {
		return schedule.Schedule{}, err
	}
	customDates := make([]time.Time, 0, len(input.CustomDates))
	for _, raw := range input.CustomDates {
		d, err := day.Parse(raw)
		if err != nil {
			return schedule.Schedule{}, err
		}
		customDates = append(customDates, d)
	}
	from, err := day.Parse(input.EffectiveFrom)
	if err != nil {
		return schedule.Schedule{}, err
	}
	until, err := parseOptionalDay(input.EffectiveUntil)
	if err != nil {
		return schedule.Schedule{}, err
	}
	rule, err := schedule.BuildRule(schedule.RecurrenceType(input.RecurrenceType), input.Weekdays, input.DayOfMonth, schedule.ClipDates(customDates, from, until))
	if err != nil {
		return schedule.Schedule{}, err
	}

	var saved schedule.Schedule
	err = deps.Tx.InTx(ctx, func(st Stores) error {
		if _, err := st.Services.GetByID(ctx, input.ServiceID); err != nil {
			return err
		}
		s := schedule.Schedule{ID: input.ID, IsActive: true}
		if input.ID != "" {
			if s, err = st.Schedules.GetByID(ctx, input.ID); err != nil {
				return err
			}
		} else {
			s.ID = deps.Clock.newID()
		}
		s.ServiceID = input.ServiceID
		s.TrainerID = input.TrainerID
		s.Rule = rule
		s.StartTime = input.StartTime
		s.EndTime = input.EndTime
		s.EffectiveFrom = from
		s.EffectiveUntil = until
		s.MaxParticipants = input.MaxParticipants
		if input.IsActive != nil {
			s.IsActive = *input.IsActive
		}
		if err := s.Validate(); err != nil {
			return err
		}
		saved = s
		return st.Schedules.Save(ctx, s)
	})
	if err != nil {
		return schedule.Schedule{}, err
	}

	slog.Info("schedule_event", "event", "schedule_saved", "schedule_id", saved.ID, "recurrence_type", string(saved.RecurrenceType()), "is_active", saved.IsActive)
	return saved, nil
}

// --- Closures ---

// CreateClosureInput carries input for the create closure orchestrator.
type CreateClosureInput struct {
	Name      string `validate:"required,max=200"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"` // defaults to StartDate
}

// ExecuteCreateClosure records a studio closure. Booking dates are not
// recomputed here; run ExecuteRefreshBookingDates for affected schedules.
func ExecuteCreateClosure(ctx context.Context, input CreateClosureInput, deps CatalogueDeps) (holiday.Holiday, error) {
	if err := validateInput(input); err != nil {
		return holiday.Holiday{}, err
	}
	start, err := day.Parse(input.StartDate)
	if err != nil {
		return holiday.Holiday{}, err
	}
	var end *time.Time
	if input.EndDate != "" {
		d, err := day.Parse(input.EndDate)
		if err != nil {
			return holiday.Holiday{}, err
		}
		end = &d
	}
	h, err := holiday.New(deps.Clock.newID(), input.Name, start, end)
	if err != nil {
		return holiday.Holiday{}, err
	}
	if err := deps.Tx.InTx(ctx, func(st Stores) error { return st.Closures.Save(ctx, h) }); err != nil {
		return holiday.Holiday{}, err
	}
	slog.Info("closure_event", "event", "closure_created", "closure_id", h.ID, "days", h.Days(), "start", day.Format(h.StartDate), "end", day.Format(h.EndDate))
	return h, nil
}

// DeleteClosureInput carries input for the delete closure orchestrator.
type DeleteClosureInput struct {
	ID string `validate:"required"`
}

// ExecuteDeleteClosure removes a studio closure.
// PRE: closure exists
func ExecuteDeleteClosure(ctx context.Context, input DeleteClosureInput, deps CatalogueDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	err := deps.Tx.InTx(ctx, func(st Stores) error {
		if _, err := st.Closures.GetByID(ctx, input.ID); err != nil {
			return err
		}
		return st.Closures.Delete(ctx, input.ID)
	})
	if err != nil {
		return err
	}
	slog.Info("closure_event", "event", "closure_deleted", "closure_id", input.ID)
	return nil
}
