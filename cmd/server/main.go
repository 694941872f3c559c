package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	web "studio/internal/adapters/http"
	"studio/internal/adapters/http/perf"
	"studio/internal/adapters/storage"
	attendanceStore "studio/internal/adapters/storage/attendance"
	classBookingStore "studio/internal/adapters/storage/classbooking"
	customerStore "studio/internal/adapters/storage/customer"
	holidayStore "studio/internal/adapters/storage/holiday"
	paymentStore "studio/internal/adapters/storage/payment"
	reportStore "studio/internal/adapters/storage/report"
	scheduleStore "studio/internal/adapters/storage/schedule"
	serviceStore "studio/internal/adapters/storage/service"
	subscriptionStore "studio/internal/adapters/storage/subscription"
	"studio/internal/adapters/storage/unitofwork"
	"studio/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		fatal("database unreachable", err)
	}
	if err := storage.InitDB(db); err != nil {
		fatal("failed to initialise schema", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	stores := &web.Stores{
		Tx:                unitofwork.New(timedDB),
		CustomerStore:     customerStore.NewSQLiteStore(timedDB),
		ServiceStore:      serviceStore.NewSQLiteStore(timedDB),
		ScheduleStore:     scheduleStore.NewSQLiteStore(timedDB),
		HolidayStore:      holidayStore.NewSQLiteStore(timedDB),
		ClassBookingStore: classBookingStore.NewSQLiteStore(timedDB),
		SubscriptionStore: subscriptionStore.NewSQLiteStore(timedDB),
		PaymentStore:      paymentStore.NewSQLiteStore(timedDB),
		AttendanceStore:   attendanceStore.NewSQLiteStore(timedDB),
		ReportStore:       reportStore.NewSQLXStore(timedDB.RawDB()),
	}

	handler := web.NewMux(stores, web.Config{
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		RateLimit:      cfg.RateLimit,
		SlowRequestMs:  cfg.SlowRequestMs,
		HorizonDays:    cfg.BookingHorizonDays,
	}, collector)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server_event", "event", "starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_event", "event", "shutdown_failed", "error", err)
		return
	}
	slog.Info("server_event", "event", "stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
