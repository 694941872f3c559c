package web

import (
	"encoding/json"
	"net/http"

	"studio/internal/application/orchestrators"
)

type recordPaymentRequest struct {
	SubscriptionID string      `json:"subscription_id"`
	CustomerID     string      `json:"customer_id"`
	Amount         json.Number `json:"amount"`
	Method         string      `json:"method"`
	Status         string      `json:"status"`
	TransactionID  string      `json:"transaction_id"`
	PaidAt         string      `json:"paid_at"`
	Notes          string      `json:"notes"`
}

type paymentResultResponse struct {
	Payment      paymentResponse       `json:"payment"`
	Subscription *subscriptionResponse `json:"subscription,omitempty"`
}

func toPaymentResultResponse(res orchestrators.RecordPaymentResult) paymentResultResponse {
	out := paymentResultResponse{Payment: toPaymentResponse(res.Payment)}
	if res.Subscription != nil {
		s := toSubscriptionResponse(*res.Subscription)
		out.Subscription = &s
	}
	return out
}

// handleRecordPayment handles POST /api/payments
func handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := orchestrators.ExecuteRecordPayment(r.Context(), orchestrators.RecordPaymentInput{
		SubscriptionID: req.SubscriptionID,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount.String(),
		Method:         req.Method,
		Status:         req.Status,
		TransactionID:  req.TransactionID,
		PaidAt:         req.PaidAt,
		Notes:          req.Notes,
	}, paymentDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResultResponse(res))
}

type refundRequest struct {
	Reason string `json:"reason"`
}

// handleRefundPayment handles POST /api/payments/{id}/refund
func handleRefundPayment(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	res, err := orchestrators.ExecuteRefundPayment(r.Context(), orchestrators.RefundPaymentInput{
		PaymentID: r.PathValue("id"),
		Reason:    req.Reason,
	}, paymentDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResultResponse(res))
}
