package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
)

// Repository is the PostgreSQL implementation of Store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`SELECT 1`).Error
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, role
		FROM users
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *Repository) FirstUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, role
		FROM users
		ORDER BY id ASC
		LIMIT 1
	`).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *Repository) GetTechnician(ctx context.Context, id int64) (*model.Technician, error) {
	var tech model.Technician
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, zones, online, last_lat, last_lng
		FROM technicians
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&tech).Error; err != nil {
		return nil, err
	}
	if tech.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &tech, nil
}

func (r *Repository) FirstTechnician(ctx context.Context) (*model.Technician, error) {
	var tech model.Technician
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, zones, online, last_lat, last_lng
		FROM technicians
		ORDER BY id ASC
		LIMIT 1
	`).Scan(&tech).Error; err != nil {
		return nil, err
	}
	if tech.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &tech, nil
}

func (r *Repository) ListTechnicians(ctx context.Context) ([]model.Technician, error) {
	var rows []model.Technician
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, zones, online, last_lat, last_lng
		FROM technicians
		ORDER BY id ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) GetPricingRule(ctx context.Context, zone model.Zone, serviceType model.ServiceType) (*model.PricingRule, error) {
	var rule model.PricingRule
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, zone, service_type, base_day, base_night, holiday_surcharge
		FROM pricing_rules
		WHERE zone = ? AND service_type = ?
		LIMIT 1
	`, string(zone), string(serviceType)).Scan(&rule).Error; err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rule, nil
}

func (r *Repository) ListPricingRules(ctx context.Context) ([]model.PricingRule, error) {
	var rows []model.PricingRule
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, zone, service_type, base_day, base_night, holiday_surcharge
		FROM pricing_rules
		ORDER BY id ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
