package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
)

const serviceColumns = `
	id,
	code,
	customer_id,
	technician_id,
	service_type,
	zone,
	lat,
	lng,
	address,
	status,
	quoted_price,
	payment_method,
	notes,
	created_at,
	updated_at
`

// NextServiceID reserves the next value of the services id sequence. The
// value is consumed even if the surrounding transaction rolls back.
func (r *Repository) NextServiceID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT nextval(pg_get_serial_sequence('services', 'id'))
	`).Scan(&id).Error; err != nil {
		return 0, err
	}
	return id, nil
}

// CreateService inserts svc with its reserved id, or a fresh sequence value
// when svc.ID is zero.
func (r *Repository) CreateService(ctx context.Context, svc *model.Service) error {
	var id *int64
	if svc.ID != 0 {
		id = &svc.ID
	}

	var saved struct {
		ID        int64
		CreatedAt time.Time
		UpdatedAt time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO services (
			id,
			code,
			customer_id,
			technician_id,
			service_type,
			zone,
			lat,
			lng,
			address,
			status,
			quoted_price,
			payment_method,
			notes
		) VALUES (
			COALESCE(?, nextval(pg_get_serial_sequence('services', 'id'))),
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
		RETURNING id, created_at, updated_at
	`,
		id,
		svc.Code,
		svc.CustomerID,
		svc.TechnicianID,
		string(svc.ServiceType),
		string(svc.Zone),
		svc.Lat,
		svc.Lng,
		svc.Address,
		string(svc.Status),
		svc.QuotedPrice,
		svc.PaymentMethod,
		svc.Notes,
	).Scan(&saved).Error
	if err != nil {
		return err
	}

	svc.ID = saved.ID
	svc.CreatedAt = saved.CreatedAt
	svc.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *Repository) GetServiceByCode(ctx context.Context, code string) (*model.Service, error) {
	var svc model.Service
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+serviceColumns+`
		FROM services
		WHERE code = ?
		LIMIT 1
	`, code).Scan(&svc).Error; err != nil {
		return nil, err
	}
	if svc.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &svc, nil
}

// UpdateService writes the mutable lifecycle columns. quoted_price is never
// touched after creation.
func (r *Repository) UpdateService(ctx context.Context, svc *model.Service) error {
	var updatedAt time.Time
	result := r.db.WithContext(ctx).Raw(`
		UPDATE services
		SET
			technician_id = ?,
			status = ?,
			notes = ?,
			updated_at = NOW()
		WHERE id = ?
		RETURNING updated_at
	`, svc.TechnicianID, string(svc.Status), svc.Notes, svc.ID).Scan(&updatedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	svc.UpdatedAt = updatedAt
	return nil
}

func (r *Repository) ListServices(ctx context.Context, filter model.ServiceFilter) ([]model.Service, error) {
	baseQuery := `SELECT ` + serviceColumns + ` FROM services WHERE 1 = 1`
	var args []interface{}
	if !filter.From.IsZero() {
		baseQuery += " AND created_at >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		baseQuery += " AND created_at < ?"
		args = append(args, filter.To)
	}
	if filter.Zone != nil {
		baseQuery += " AND zone = ?"
		args = append(args, string(*filter.Zone))
	}
	if filter.Status != nil {
		baseQuery += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	baseQuery += " ORDER BY id ASC"

	var rows []model.Service
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) AppendServiceEvent(ctx context.Context, event *model.ServiceEvent) error {
	var saved struct {
		ID        int64
		CreatedAt time.Time
	}
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO service_events (service_id, status, notes)
		VALUES (?, ?, ?)
		RETURNING id, created_at
	`, event.ServiceID, string(event.Status), event.Notes).Scan(&saved).Error; err != nil {
		return err
	}
	event.ID = saved.ID
	event.CreatedAt = saved.CreatedAt
	return nil
}

func (r *Repository) ListServiceEvents(ctx context.Context, serviceID int64) ([]model.ServiceEvent, error) {
	var rows []model.ServiceEvent
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, service_id, status, notes, created_at
		FROM service_events
		WHERE service_id = ?
		ORDER BY id ASC
	`, serviceID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
