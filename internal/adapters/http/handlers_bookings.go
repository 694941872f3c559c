package web

import (
	"encoding/json"
	"net/http"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
)

type availableDatesResponse struct {
	ScheduleID     string   `json:"schedule_id"`
	RecurrenceType string   `json:"recurrence_type"`
	Dates          []string `json:"dates"`
}

// handleAvailableDates handles GET /api/schedules/{id}/available-dates?horizon=YYYY-MM-DD
func handleAvailableDates(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryAvailableDates(r.Context(), projections.AvailableDatesQuery{
		ScheduleID: r.PathValue("id"),
		Horizon:    r.URL.Query().Get("horizon"),
	}, projections.AvailableDatesDeps{
		Schedules: stores.ScheduleStore,
		Closures:  stores.HolidayStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	dates := result.Dates
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, availableDatesResponse{
		ScheduleID:     result.ScheduleID,
		RecurrenceType: result.RecurrenceType,
		Dates:          dates,
	})
}

// handleRefreshBookings handles POST /api/schedules/{id}/refresh-bookings
func handleRefreshBookings(w http.ResponseWriter, r *http.Request) {
	result, err := orchestrators.ExecuteRefreshBookingDates(r.Context(), orchestrators.RefreshBookingDatesInput{
		ScheduleID: r.PathValue("id"),
	}, bookingDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"schedule_id": result.ScheduleID,
		"refreshed":   result.Refreshed,
	})
}

type createClassBookingRequest struct {
	CustomerID string `json:"customer_id"`
	ScheduleID string `json:"schedule_id"`
	ServiceID  string `json:"service_id"`
	StartsOn   string `json:"starts_on"`
	EndsOn     string `json:"ends_on"`
}

// handleCreateClassBooking handles POST /api/class-bookings
func handleCreateClassBooking(w http.ResponseWriter, r *http.Request) {
	var req createClassBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := orchestrators.ExecuteCreateClassBooking(r.Context(), orchestrators.CreateClassBookingInput{
		CustomerID: req.CustomerID,
		ScheduleID: req.ScheduleID,
		ServiceID:  req.ServiceID,
		StartsOn:   req.StartsOn,
		EndsOn:     req.EndsOn,
	}, bookingDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClassBookingResponse(b))
}

// updateClassBookingRequest distinguishes an absent ends_on from an explicit
// null, which makes the booking open-ended.
type updateClassBookingRequest struct {
	StartsOn string   `json:"starts_on"`
	EndsOn   nullable `json:"ends_on"`
	Status   string   `json:"status"`
}

// nullable records whether a string field was present and whether it was null.
type nullable struct {
	Set   bool
	Null  bool
	Value string
}

func (n *nullable) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Null = true
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// handleUpdateClassBooking handles PATCH /api/class-bookings/{id}
func handleUpdateClassBooking(w http.ResponseWriter, r *http.Request) {
	var req updateClassBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := orchestrators.ExecuteUpdateClassBooking(r.Context(), orchestrators.UpdateClassBookingInput{
		ID:          r.PathValue("id"),
		StartsOn:    req.StartsOn,
		EndsOn:      req.EndsOn.Value,
		ClearEndsOn: req.EndsOn.Null,
		Status:      req.Status,
	}, bookingDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassBookingResponse(b))
}

// handleCancelClassBooking handles POST /api/class-bookings/{id}/cancel
func handleCancelClassBooking(w http.ResponseWriter, r *http.Request) {
	b, err := orchestrators.ExecuteCancelClassBooking(r.Context(), orchestrators.CancelClassBookingInput{
		ID: r.PathValue("id"),
	}, bookingDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassBookingResponse(b))
}
