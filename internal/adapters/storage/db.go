package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Dates are ISO YYYY-MM-DD text, timestamps RFC3339, money decimal text.
	schema := `
	CREATE TABLE IF NOT EXISTS customer (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		membership_status TEXT NOT NULL DEFAULT 'inactive'
	);

	CREATE TABLE IF NOT EXISTS service (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS holiday (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedule (
		id TEXT PRIMARY KEY,
		service_id TEXT NOT NULL,
		trainer_id TEXT NOT NULL DEFAULT '',
		recurrence_type TEXT NOT NULL,
		weekdays TEXT NOT NULL DEFAULT '',
		day_of_month INTEGER NOT NULL DEFAULT 0,
		custom_dates TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		effective_until TEXT,
		max_participants INTEGER NOT NULL DEFAULT 0,
		current_participants INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (service_id) REFERENCES service(id)
	);

	CREATE TABLE IF NOT EXISTS class_booking (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		schedule_id TEXT NOT NULL,
		service_id TEXT NOT NULL,
		starts_on TEXT NOT NULL,
		ends_on TEXT,
		booking_dates TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (customer_id, schedule_id),
		FOREIGN KEY (customer_id) REFERENCES customer(id),
		FOREIGN KEY (schedule_id) REFERENCES schedule(id)
	);

	CREATE TABLE IF NOT EXISTS customer_subscription (
		id TEXT PRIMARY KEY,
		class_booking_id TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL,
		total_fees TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		number_of_installments INTEGER NOT NULL DEFAULT 1,
		total_sessions INTEGER,
		amount_paid TEXT NOT NULL DEFAULT '0',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		sessions_completed INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		paused_from TEXT,
		paused_until TEXT,
		cancellation_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (class_booking_id) REFERENCES class_booking(id),
		FOREIGN KEY (customer_id) REFERENCES customer(id)
	);

	CREATE TABLE IF NOT EXISTS payment (
		id TEXT PRIMARY KEY,
		subscription_id TEXT,
		customer_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL,
		transaction_id TEXT UNIQUE,
		paid_at TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		refunded_at TEXT,
		FOREIGN KEY (subscription_id) REFERENCES customer_subscription(id),
		FOREIGN KEY (customer_id) REFERENCES customer(id)
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		schedule_id TEXT NOT NULL,
		subscription_id TEXT NOT NULL,
		class_date TEXT NOT NULL,
		status TEXT NOT NULL,
		marked_by TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		marked_at TEXT NOT NULL,
		UNIQUE (customer_id, schedule_id, class_date),
		FOREIGN KEY (customer_id) REFERENCES customer(id),
		FOREIGN KEY (schedule_id) REFERENCES schedule(id),
		FOREIGN KEY (subscription_id) REFERENCES customer_subscription(id)
	);

	CREATE INDEX IF NOT EXISTS idx_class_booking_schedule ON class_booking(schedule_id, status);
	CREATE INDEX IF NOT EXISTS idx_subscription_customer ON customer_subscription(customer_id, status);
	CREATE INDEX IF NOT EXISTS idx_payment_subscription ON payment(subscription_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_schedule_date ON attendance(schedule_id, class_date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
