package web

import (
	"net/http"

	customerStore "studio/internal/adapters/storage/customer"
	"studio/internal/application/listutil"
	"studio/internal/application/orchestrators"
	"studio/internal/domain/customer"
	"studio/internal/domain/schedule"
)

// maxPageSize bounds GET /api/customers listings.
const maxPageSize = 200

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// handleCreateCustomer handles POST /api/customers
func handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := orchestrators.ExecuteCreateCustomer(r.Context(), orchestrators.CreateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}, catalogueDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(c))
}

// handleListCustomers handles GET /api/customers?membership_status=active&limit=50&offset=0
func handleListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := customerStore.ListFilter{MembershipStatus: q.Get("membership_status")}
	if filter.MembershipStatus != "" && filter.MembershipStatus != customer.MembershipActive && filter.MembershipStatus != customer.MembershipInactive {
		writeError(w, customer.ErrInvalidMembership)
		return
	}
	page, err := listutil.ParsePage(q, 50, maxPageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	filter.Limit, filter.Offset = page.Limit, page.Offset

	customers, err := stores.CustomerStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(customers, toCustomerResponse))
}

type createServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       string `json:"level"`
}

// handleCreateService handles POST /api/services
func handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := orchestrators.ExecuteCreateService(r.Context(), orchestrators.CreateServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
	}, catalogueDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceResponse(s))
}

// handleListServices handles GET /api/services
func handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := stores.ServiceStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(services, toServiceResponse))
}

type saveScheduleRequest struct {
	ServiceID       string   `json:"service_id"`
	TrainerID       string   `json:"trainer_id"`
	RecurrenceType  string   `json:"recurrence_type"`
	Weekdays        []string `json:"weekdays"`
	DayOfMonth      int      `json:"day_of_month"`
	CustomDates     []string `json:"custom_dates"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	EffectiveFrom   string   `json:"effective_from"`
	EffectiveUntil  string   `json:"effective_until"`
	MaxParticipants int      `json:"max_participants"`
	IsActive        *bool    `json:"is_active"`
}

// handleSaveSchedule handles POST /api/schedules and PUT /api/schedules/{id}
func handleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	var req saveScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	s, err := orchestrators.ExecuteSaveSchedule(r.Context(), orchestrators.SaveScheduleInput{
		ID:              id,
		ServiceID:       req.ServiceID,
		TrainerID:       req.TrainerID,
		RecurrenceType:  req.RecurrenceType,
		Weekdays:        req.Weekdays,
		DayOfMonth:      req.DayOfMonth,
		CustomDates:     req.CustomDates,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		EffectiveFrom:   req.EffectiveFrom,
		EffectiveUntil:  req.EffectiveUntil,
		MaxParticipants: req.MaxParticipants,
		IsActive:        req.IsActive,
	}, catalogueDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, toScheduleResponse(s))
}

// handleListSchedules handles GET /api/schedules?service_id=
func handleListSchedules(w http.ResponseWriter, r *http.Request) {
	var (
		schedules []schedule.Schedule
		err       error
	)
	if serviceID := r.URL.Query().Get("service_id"); serviceID != "" {
		schedules, err = stores.ScheduleStore.ListByServiceID(r.Context(), serviceID)
	} else {
		schedules, err = stores.ScheduleStore.List(r.Context())
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(schedules, toScheduleResponse))
}

type createHolidayRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// handleCreateHoliday handles POST /api/holidays
func handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req createHolidayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h, err := orchestrators.ExecuteCreateClosure(r.Context(), orchestrators.CreateClosureInput{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, catalogueDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayResponse(h))
}

// handleListHolidays handles GET /api/holidays
func handleListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := stores.HolidayStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(holidays, toHolidayResponse))
}

// handleDeleteHoliday handles DELETE /api/holidays/{id}
func handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteClosure(r.Context(), orchestrators.DeleteClosureInput{ID: r.PathValue("id")}, catalogueDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCustomerBookings handles GET /api/customers/{id}/bookings
func handleCustomerBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.CustomerStore.GetByID(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	bookings, err := stores.ClassBookingStore.ListByCustomer(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(bookings, toClassBookingResponse))
}

// handleCustomerPayments handles GET /api/customers/{id}/payments
func handleCustomerPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.CustomerStore.GetByID(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	payments, err := stores.PaymentStore.ListByCustomer(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(payments, toPaymentResponse))
}
