package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"studio/internal/application/orchestrators"
	"studio/internal/domain/errs"
)

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error string `json:"error"`
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// writeError maps a workflow error to its HTTP status by kind.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errs.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errs.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errs.IsConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		internalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode_response", "error", err.Error())
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeBody decodes the request body and answers 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// decodeOptionalBody is decodeBody for endpoints whose body may be empty.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	err := strictDecode(r, v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
	return false
}

func bookingDeps() orchestrators.BookingDeps {
	return orchestrators.BookingDeps{Tx: stores.Tx, Clock: clock, HorizonDays: bookingHorizonDays}
}

func subscriptionDeps() orchestrators.SubscriptionDeps {
	return orchestrators.SubscriptionDeps{Tx: stores.Tx, Clock: clock}
}

func attendanceDeps() orchestrators.AttendanceDeps {
	return orchestrators.AttendanceDeps{Tx: stores.Tx, Clock: clock}
}

func paymentDeps() orchestrators.PaymentDeps {
	return orchestrators.PaymentDeps{Tx: stores.Tx, Clock: clock}
}

func catalogueDeps() orchestrators.CatalogueDeps {
	return orchestrators.CatalogueDeps{Tx: stores.Tx, Clock: clock}
}

// handleHealth handles GET /healthz
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
