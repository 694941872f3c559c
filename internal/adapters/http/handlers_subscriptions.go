package web

import (
	"encoding/json"
	"net/http"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	"studio/internal/domain/subscription"
)

type createSubscriptionRequest struct {
	ClassBookingID       string      `json:"class_booking_id"`
	TotalFees            json.Number `json:"total_fees"`
	PaymentType          string      `json:"payment_type"`
	NumberOfInstallments int         `json:"number_of_installments"`
	TotalSessions        *int        `json:"total_sessions"`
}

// handleCreateSubscription handles POST /api/subscriptions
func handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := orchestrators.ExecuteCreateSubscription(r.Context(), orchestrators.CreateSubscriptionInput{
		ClassBookingID:       req.ClassBookingID,
		TotalFees:            req.TotalFees.String(),
		PaymentType:          req.PaymentType,
		NumberOfInstallments: req.NumberOfInstallments,
		TotalSessions:        req.TotalSessions,
	}, subscriptionDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionResponse(s))
}

type balanceResponse struct {
	SubscriptionID    string `json:"subscription_id"`
	CustomerID        string `json:"customer_id"`
	Status            string `json:"status"`
	TotalFees         string `json:"total_fees"`
	AmountPaid        string `json:"amount_paid"`
	RemainingAmount   string `json:"remaining_amount"`
	PaymentStatus     string `json:"payment_status"`
	TotalSessions     *int   `json:"total_sessions"`
	SessionsCompleted int    `json:"sessions_completed"`
	SessionsRemaining *int   `json:"sessions_remaining"`
}

// handleSubscriptionBalance handles GET /api/subscriptions/{id}/balance
func handleSubscriptionBalance(w http.ResponseWriter, r *http.Request) {
	b, err := projections.QuerySubscriptionBalance(r.Context(), projections.SubscriptionBalanceQuery{
		SubscriptionID: r.PathValue("id"),
	}, projections.SubscriptionBalanceDeps{Subscriptions: stores.SubscriptionStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		SubscriptionID:    b.SubscriptionID,
		CustomerID:        b.CustomerID,
		Status:            b.Status,
		TotalFees:         b.TotalFees.StringFixed(2),
		AmountPaid:        b.AmountPaid.StringFixed(2),
		RemainingAmount:   b.RemainingAmount.StringFixed(2),
		PaymentStatus:     b.PaymentStatus,
		TotalSessions:     b.TotalSessions,
		SessionsCompleted: b.SessionsCompleted,
		SessionsRemaining: b.SessionsRemaining,
	})
}

// handleSubscriptionPayments handles GET /api/subscriptions/{id}/payments
func handleSubscriptionPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.SubscriptionStore.GetByID(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	payments, err := stores.PaymentStore.ListBySubscription(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(payments, toPaymentResponse))
}

// handleSubscriptionAttendance handles GET /api/subscriptions/{id}/attendance
func handleSubscriptionAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.SubscriptionStore.GetByID(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	records, err := stores.AttendanceStore.ListBySubscription(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(records, toAttendanceResponse))
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// handleCancelSubscription handles POST /api/subscriptions/{id}/cancel
func handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	s, err := orchestrators.ExecuteCancelSubscription(r.Context(), orchestrators.CancelSubscriptionInput{
		ID:     r.PathValue("id"),
		Reason: req.Reason,
	}, subscriptionDeps())
	respondSubscription(w, s, err)
}

type pauseRequest struct {
	PausedFrom  string `json:"paused_from"`
	PausedUntil string `json:"paused_until"`
}

// handlePauseSubscription handles POST /api/subscriptions/{id}/pause
func handlePauseSubscription(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := orchestrators.ExecutePauseSubscription(r.Context(), orchestrators.PauseSubscriptionInput{
		ID:          r.PathValue("id"),
		PausedFrom:  req.PausedFrom,
		PausedUntil: req.PausedUntil,
	}, subscriptionDeps())
	respondSubscription(w, s, err)
}

// handleResumeSubscription handles POST /api/subscriptions/{id}/resume
func handleResumeSubscription(w http.ResponseWriter, r *http.Request) {
	s, err := orchestrators.ExecuteResumeSubscription(r.Context(), orchestrators.ResumeSubscriptionInput{
		ID: r.PathValue("id"),
	}, subscriptionDeps())
	respondSubscription(w, s, err)
}

// handleReconcileSubscription handles POST /api/subscriptions/{id}/reconcile
func handleReconcileSubscription(w http.ResponseWriter, r *http.Request) {
	s, err := orchestrators.ExecuteReconcileSubscription(r.Context(), orchestrators.ReconcileSubscriptionInput{
		ID: r.PathValue("id"),
	}, subscriptionDeps())
	respondSubscription(w, s, err)
}

func respondSubscription(w http.ResponseWriter, s subscription.Subscription, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(s))
}
