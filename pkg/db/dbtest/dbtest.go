// Package dbtest opens isolated in-memory SQLite databases carrying the same
// tables as the goose migrations, for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

var schema = []string{
	`CREATE TABLE customers (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE vehicles (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		plate TEXT NOT NULL,
		make TEXT,
		model TEXT,
		year INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_vehicles_tenant_plate ON vehicles (tenant_id, plate)`,
	`CREATE TABLE elevators (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		number INTEGER,
		status TEXT NOT NULL DEFAULT 'available',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE elevator_reservations (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		elevator_id TEXT NOT NULL,
		service_order_id TEXT,
		vehicle_id TEXT,
		quote_id TEXT,
		starts_at DATETIME NOT NULL,
		ends_at DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE elevator_usages (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		elevator_id TEXT NOT NULL,
		service_order_id TEXT,
		vehicle_id TEXT,
		reservation_id TEXT,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		duration_minutes INTEGER,
		notes TEXT,
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_elevator_usages_open ON elevator_usages (elevator_id) WHERE ended_at IS NULL`,
	`CREATE TABLE service_orders (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		quote_id TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		description TEXT,
		estimated_hours NUMERIC,
		started_at DATETIME,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE appointments (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		customer_id TEXT,
		service_order_id TEXT,
		assigned_to_id TEXT,
		elevator_id TEXT,
		scheduled_at DATETIME NOT NULL,
		duration_minutes INTEGER NOT NULL,
		service_type TEXT,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'scheduled',
		reminder_sent BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE quotes (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		assigned_mechanic_id TEXT,
		notes TEXT,
		problem_category TEXT,
		diagnosis_notes TEXT,
		recommendations TEXT,
		estimated_hours NUMERIC,
		diagnosed_at DATETIME,
		customer_signature TEXT,
		elevator_reservation_id TEXT,
		approved_at DATETIME,
		rejected_at DATETIME,
		rejection_reason TEXT,
		service_order_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE parts (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		sku TEXT NOT NULL,
		name TEXT NOT NULL,
		brand TEXT,
		description TEXT,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		min_quantity INTEGER NOT NULL DEFAULT 0 CHECK (min_quantity >= 0),
		cost_price NUMERIC NOT NULL,
		sell_price NUMERIC NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_parts_tenant_sku ON parts (tenant_id, sku)`,
	`CREATE TABLE tenant_settings (
		tenant_id TEXT PRIMARY KEY,
		opening_time TEXT,
		closing_time TEXT,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		slot_step_minutes INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE TABLE outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload_json BLOB NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME,
		created_at DATETIME
	)`,
}

// Open returns a fresh database with the workshop schema applied. The pool is
// pinned to one connection so concurrent callers queue like they would on a
// row lock.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000", name, dbCounter.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}
