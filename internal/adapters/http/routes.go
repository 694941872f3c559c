package web

import "net/http"

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)

	// Studio set-up
	mux.HandleFunc("GET /api/customers", handleListCustomers)
	mux.HandleFunc("POST /api/customers", handleCreateCustomer)
	mux.HandleFunc("GET /api/customers/{id}/bookings", handleCustomerBookings)
	mux.HandleFunc("GET /api/customers/{id}/payments", handleCustomerPayments)
	mux.HandleFunc("GET /api/customers/{id}/statement", handleCustomerStatement)
	mux.HandleFunc("GET /api/services", handleListServices)
	mux.HandleFunc("POST /api/services", handleCreateService)
	mux.HandleFunc("GET /api/schedules", handleListSchedules)
	mux.HandleFunc("POST /api/schedules", handleSaveSchedule)
	mux.HandleFunc("PUT /api/schedules/{id}", handleSaveSchedule)
	mux.HandleFunc("GET /api/holidays", handleListHolidays)
	mux.HandleFunc("POST /api/holidays", handleCreateHoliday)
	mux.HandleFunc("DELETE /api/holidays/{id}", handleDeleteHoliday)

	// Recurrence and bookings
	mux.HandleFunc("GET /api/schedules/{id}/available-dates", handleAvailableDates)
	mux.HandleFunc("POST /api/schedules/{id}/refresh-bookings", handleRefreshBookings)
	mux.HandleFunc("POST /api/class-bookings", handleCreateClassBooking)
	mux.HandleFunc("PATCH /api/class-bookings/{id}", handleUpdateClassBooking)
	mux.HandleFunc("POST /api/class-bookings/{id}/cancel", handleCancelClassBooking)

	// Subscriptions
	mux.HandleFunc("POST /api/subscriptions", handleCreateSubscription)
	mux.HandleFunc("GET /api/subscriptions/{id}/balance", handleSubscriptionBalance)
	mux.HandleFunc("GET /api/subscriptions/{id}/payments", handleSubscriptionPayments)
	mux.HandleFunc("GET /api/subscriptions/{id}/attendance", handleSubscriptionAttendance)
	mux.HandleFunc("POST /api/subscriptions/{id}/cancel", handleCancelSubscription)
	mux.HandleFunc("POST /api/subscriptions/{id}/pause", handlePauseSubscription)
	mux.HandleFunc("POST /api/subscriptions/{id}/resume", handleResumeSubscription)
	mux.HandleFunc("POST /api/subscriptions/{id}/reconcile", handleReconcileSubscription)

	// Attendance
	mux.HandleFunc("POST /api/attendance", handleMarkAttendance)
	mux.HandleFunc("POST /api/attendance/bulk", handleBulkMarkAttendance)
	mux.HandleFunc("GET /api/attendance/customers", handleCustomersForAttendance)

	// Payments
	mux.HandleFunc("POST /api/payments", handleRecordPayment)
	mux.HandleFunc("POST /api/payments/{id}/refund", handleRefundPayment)

	// Reporting
	mux.HandleFunc("GET /api/reports/summary", handleReportSummary)
	mux.HandleFunc("GET /api/admin/perf", handlePerf)
}
