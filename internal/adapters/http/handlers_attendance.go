package web

import (
	"net/http"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	"studio/internal/domain/errs"
)

// maxBulkItems bounds one bulk attendance request.
const maxBulkItems = 200

type markAttendanceRequest struct {
	CustomerID     string `json:"customer_id"`
	ScheduleID     string `json:"schedule_id"`
	SubscriptionID string `json:"subscription_id"`
	ClassDate      string `json:"class_date"`
	Status         string `json:"status"`
	MarkedBy       string `json:"marked_by"`
	Notes          string `json:"notes"`
}

func (req markAttendanceRequest) input() orchestrators.MarkAttendanceInput {
	return orchestrators.MarkAttendanceInput{
		CustomerID:     req.CustomerID,
		ScheduleID:     req.ScheduleID,
		SubscriptionID: req.SubscriptionID,
		ClassDate:      req.ClassDate,
		Status:         req.Status,
		MarkedBy:       req.MarkedBy,
		Notes:          req.Notes,
	}
}

type markAttendanceResponse struct {
	Attendance        attendanceResponse `json:"attendance"`
	PreviousStatus    string             `json:"previous_status,omitempty"`
	SessionDelta      int                `json:"session_delta"`
	SessionsCompleted int                `json:"sessions_completed"`
}

func toMarkAttendanceResponse(res orchestrators.MarkAttendanceResult) markAttendanceResponse {
	return markAttendanceResponse{
		Attendance:        toAttendanceResponse(res.Attendance),
		PreviousStatus:    res.PreviousStatus,
		SessionDelta:      res.SessionDelta,
		SessionsCompleted: res.SessionsCompleted,
	}
}

// handleMarkAttendance handles POST /api/attendance
func handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req markAttendanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := orchestrators.ExecuteMarkAttendance(r.Context(), req.input(), attendanceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarkAttendanceResponse(res))
}

type bulkMarkRequest struct {
	Items []markAttendanceRequest `json:"items"`
}

type bulkItemResponse struct {
	Index  int                     `json:"index"`
	OK     bool                    `json:"ok"`
	Result *markAttendanceResponse `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

type bulkMarkResponse struct {
	Items     []bulkItemResponse `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// handleBulkMarkAttendance handles POST /api/attendance/bulk
// Each item succeeds or fails on its own; the reply is 200 either way.
func handleBulkMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req bulkMarkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 || len(req.Items) > maxBulkItems {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "items must hold between 1 and 200 entries"})
		return
	}

	inputs := make([]orchestrators.MarkAttendanceInput, len(req.Items))
	for i, item := range req.Items {
		inputs[i] = item.input()
	}
	result := orchestrators.ExecuteBulkMarkAttendance(r.Context(), inputs, attendanceDeps())

	out := bulkMarkResponse{Items: make([]bulkItemResponse, 0, len(result.Items)), Succeeded: result.Succeeded, Failed: result.Failed}
	for _, item := range result.Items {
		resp := bulkItemResponse{Index: item.Index, OK: item.Err == nil}
		switch {
		case item.Err == nil:
			mark := toMarkAttendanceResponse(item.Result)
			resp.Result = &mark
		case errs.IsValidation(item.Err), errs.IsNotFound(item.Err), errs.IsConflict(item.Err):
			resp.Error = item.Err.Error()
		default:
			resp.Error = "internal server error"
		}
		out.Items = append(out.Items, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

type attendanceSheetRow struct {
	CustomerID       string `json:"customer_id"`
	CustomerName     string `json:"customer_name"`
	SubscriptionID   string `json:"subscription_id"`
	ClassBookingID   string `json:"class_booking_id"`
	AttendanceStatus string `json:"attendance_status"`
	SessionsDone     int    `json:"sessions_done"`
	SessionsLeft     *int   `json:"sessions_left"`
}

// handleCustomersForAttendance handles GET /api/attendance/customers?schedule_id=X&date=YYYY-MM-DD
func handleCustomersForAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scheduleID := q.Get("schedule_id")
	date := q.Get("date")
	if scheduleID == "" || date == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "schedule_id and date are required"})
		return
	}

	result, err := projections.QueryCustomersForAttendance(r.Context(), projections.CustomersForAttendanceQuery{
		ScheduleID: scheduleID,
		Date:       date,
	}, projections.CustomersForAttendanceDeps{
		Schedules:     stores.ScheduleStore,
		Bookings:      stores.ClassBookingStore,
		Subscriptions: stores.SubscriptionStore,
		Attendance:    stores.AttendanceStore,
		Customers:     stores.CustomerStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(result.Customers, func(c projections.CustomerForAttendance) attendanceSheetRow {
		return attendanceSheetRow{
			CustomerID:       c.CustomerID,
			CustomerName:     c.CustomerName,
			SubscriptionID:   c.SubscriptionID,
			ClassBookingID:   c.ClassBookingID,
			AttendanceStatus: c.AttendanceStatus,
			SessionsDone:     c.SessionsDone,
			SessionsLeft:     c.SessionsLeft,
		}
	}))
}
