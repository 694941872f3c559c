package web

import (
	"log/slog"
	"net/http"
	"time"

	"studio/internal/adapters/storage/report"
	"studio/internal/application/listutil"
	"studio/internal/application/projections"
	"studio/internal/domain/export"
)

type scheduleLoadResponse struct {
	ScheduleID      string `json:"schedule_id"`
	ServiceName     string `json:"service_name"`
	MaxParticipants int    `json:"max_participants"`
	ActiveBookings  int    `json:"active_bookings"`
}

type reportSummaryResponse struct {
	CustomersTotal      int                    `json:"customers_total"`
	CustomersActive     int                    `json:"customers_active"`
	ActiveBookings      int                    `json:"active_bookings"`
	ActiveSubscriptions int                    `json:"active_subscriptions"`
	PresentMarks        int                    `json:"present_marks"`
	Collected           string                 `json:"collected"`
	Refunded            string                 `json:"refunded"`
	Outstanding         string                 `json:"outstanding"`
	ByPaymentStatus     map[string]int         `json:"by_payment_status"`
	BusiestSchedules    []scheduleLoadResponse `json:"busiest_schedules"`
}

// handleReportSummary handles GET /api/reports/summary
func handleReportSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := projections.QueryStudioReport(r.Context(), projections.StudioReportDeps{Reports: stores.ReportStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportSummaryResponse{
		CustomersTotal:      rep.Counts.CustomersTotal,
		CustomersActive:     rep.Counts.CustomersActive,
		ActiveBookings:      rep.Counts.ActiveBookings,
		ActiveSubscriptions: rep.Counts.ActiveSubscriptions,
		PresentMarks:        rep.Counts.PresentMarks,
		Collected:           rep.Collected.StringFixed(2),
		Refunded:            rep.Refunded.StringFixed(2),
		Outstanding:         rep.Outstanding.StringFixed(2),
		ByPaymentStatus:     rep.ByPaymentStatus,
		BusiestSchedules: mapAll(rep.BusiestSchedules, func(l report.ScheduleLoad) scheduleLoadResponse {
			return scheduleLoadResponse{
				ScheduleID:      l.ScheduleID,
				ServiceName:     l.ServiceName,
				MaxParticipants: l.MaxParticipants,
				ActiveBookings:  l.ActiveBookings,
			}
		}),
	})
}

// handlePerf handles GET /api/admin/perf?minutes=15&top=10
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "performance collection is disabled"})
		return
	}
	q := r.URL.Query()
	minutes, err := listutil.IntParam(q, "minutes", 15, 1)
	if err != nil {
		writeError(w, err)
		return
	}
	top, err := listutil.IntParam(q, "top", 10, 1)
	if err != nil {
		writeError(w, err)
		return
	}
	since := time.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}

// handleCustomerStatement handles GET /api/customers/{id}/statement?format=json|csv
// The CSV form carries the payment history only.
func handleCustomerStatement(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := projections.QueryCustomerStatement(r.Context(), projections.CustomerStatementQuery{
		CustomerID: r.PathValue("id"),
	}, projections.CustomerStatementDeps{
		Customers:     stores.CustomerStore,
		Bookings:      stores.ClassBookingStore,
		Subscriptions: stores.SubscriptionStore,
		Payments:      stores.PaymentStore,
		Attendance:    stores.AttendanceStore,
		Now:           clock.Now,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, st)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="statement-`+st.Customer.ID+`.csv"`)
	if err := st.WritePaymentsCSV(w); err != nil {
		slog.Warn("statement_export", "customer_id", st.Customer.ID, "error", err.Error())
	}
}
