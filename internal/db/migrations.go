package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'customer'
			CHECK (role IN ('customer', 'technician', 'admin'))
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_phone ON users (phone);`,
	`CREATE TABLE IF NOT EXISTS technicians (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		zones VARCHAR(120) NOT NULL DEFAULT '',
		online BOOLEAN NOT NULL DEFAULT TRUE,
		last_lat DOUBLE PRECISION,
		last_lng DOUBLE PRECISION
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_technicians_phone ON technicians (phone);`,
	`CREATE TABLE IF NOT EXISTS pricing_rules (
		id BIGSERIAL PRIMARY KEY,
		zone VARCHAR(16) NOT NULL
			CHECK (zone IN ('ciudad', 'este', 'chepo')),
		service_type VARCHAR(16) NOT NULL
			CHECK (service_type IN ('bateria', 'cerrajeria', 'llanta', 'combustible', 'inspeccion')),
		base_day DOUBLE PRECISION NOT NULL,
		base_night DOUBLE PRECISION NOT NULL,
		holiday_surcharge DOUBLE PRECISION NOT NULL DEFAULT 0
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_pricing_rules_zone_service ON pricing_rules (zone, service_type);`,
	`CREATE TABLE IF NOT EXISTS services (
		id BIGSERIAL PRIMARY KEY,
		code VARCHAR(16) NOT NULL,
		customer_id BIGINT NOT NULL REFERENCES users(id),
		technician_id BIGINT REFERENCES technicians(id),
		service_type VARCHAR(16) NOT NULL
			CHECK (service_type IN ('bateria', 'cerrajeria', 'llanta', 'combustible', 'inspeccion')),
		zone VARCHAR(16) NOT NULL
			CHECK (zone IN ('ciudad', 'este', 'chepo')),
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		address VARCHAR(255),
		status VARCHAR(16) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'assigned', 'en_route', 'arrived', 'in_progress', 'completed', 'canceled')),
		quoted_price DOUBLE PRECISION NOT NULL,
		payment_method VARCHAR(32) NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_services_code ON services (code);`,
	`CREATE INDEX IF NOT EXISTS idx_services_created_at ON services (created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_services_technician_id ON services (technician_id) WHERE technician_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS service_events (
		id BIGSERIAL PRIMARY KEY,
		service_id BIGINT NOT NULL REFERENCES services(id),
		status VARCHAR(16) NOT NULL
			CHECK (status IN ('pending', 'assigned', 'en_route', 'arrived', 'in_progress', 'completed', 'canceled')),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_service_events_service_id ON service_events (service_id, id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
