package web

import (
	"net/http"
	"time"

	"studio/internal/adapters/http/middleware"
	"studio/internal/adapters/http/perf"
	attendanceStore "studio/internal/adapters/storage/attendance"
	classBookingStore "studio/internal/adapters/storage/classbooking"
	customerStore "studio/internal/adapters/storage/customer"
	holidayStore "studio/internal/adapters/storage/holiday"
	paymentStore "studio/internal/adapters/storage/payment"
	reportStore "studio/internal/adapters/storage/report"
	scheduleStore "studio/internal/adapters/storage/schedule"
	serviceStore "studio/internal/adapters/storage/service"
	subscriptionStore "studio/internal/adapters/storage/subscription"
	"studio/internal/application/orchestrators"
)

// Stores holds all storage dependencies. Writes go through Tx; the store
// fields serve the read endpoints.
type Stores struct {
	Tx                orchestrators.TxRunner
	CustomerStore     customerStore.Store
	ServiceStore      serviceStore.Store
	ScheduleStore     scheduleStore.Store
	HolidayStore      holidayStore.Store
	ClassBookingStore classBookingStore.Store
	SubscriptionStore subscriptionStore.Store
	PaymentStore      paymentStore.Store
	AttendanceStore   attendanceStore.Store
	ReportStore       reportStore.Store
}

// Config carries the HTTP settings resolved by the config package.
type Config struct {
	CSRFKey        []byte // 32 bytes
	SecureCookies  bool
	TrustedOrigins []string
	RateLimit      int // requests per second per client
	SlowRequestMs  int
	HorizonDays    int // default horizon for open-ended bookings
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// bookingHorizonDays is the open-ended booking horizon (set by NewMux).
var bookingHorizonDays int

// clock is the ID and time source handed to orchestrators. Tests replace it.
var clock = orchestrators.Clock{}

// NewMux wires HTTP handlers for the studio API.
func NewMux(s *Stores, cfg Config, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	bookingHorizonDays = cfg.HorizonDays

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Second)

	// Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.SecureCookies, cfg.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, cfg.SlowRequestMs),
	)
}
