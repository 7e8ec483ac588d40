package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

// LifecycleService creates services and moves them through their statuses.
// Every change is written together with its ServiceEvent in one transaction.
// Status changes are not validated against a transition table.
type LifecycleService struct {
	store   repository.Store
	pricing *PricingService
	now     func() time.Time
}

type CreateServiceInput struct {
	CustomerID    int64
	ServiceType   model.ServiceType
	Zone          model.Zone
	Lat           float64
	Lng           float64
	Address       *string
	PaymentMethod string
}

func NewLifecycleService(store repository.Store, pricing *PricingService, now func() time.Time) *LifecycleService {
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{
		store:   store,
		pricing: pricing,
		now:     now,
	}
}

// Create prices the request with the service clock and stores it with its
// creation event. The code is built from the reserved id, so it always
// matches the stored row.
func (s *LifecycleService) Create(ctx context.Context, input CreateServiceInput) (*model.Service, error) {
	if !input.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: service_type is invalid", ErrInvalidInput)
	}
	if !input.Zone.Valid() {
		return nil, fmt.Errorf("%w: zone is invalid", ErrInvalidInput)
	}
	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: payment_method is required", ErrInvalidInput)
	}

	var created *model.Service
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUser(ctx, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		price, err := s.pricing.quoteWith(ctx, tx, input.ServiceType, input.Zone, s.now(), false)
		if err != nil {
			return err
		}

		id, err := tx.NextServiceID(ctx)
		if err != nil {
			return err
		}

		svc := &model.Service{
			ID:            id,
			Code:          model.FormatServiceCode(id),
			CustomerID:    input.CustomerID,
			ServiceType:   input.ServiceType,
			Zone:          input.Zone,
			Lat:           input.Lat,
			Lng:           input.Lng,
			Address:       input.Address,
			Status:        model.ServiceStatusPending,
			QuotedPrice:   price,
			PaymentMethod: paymentMethod,
		}
		if err := tx.CreateService(ctx, svc); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, svc, stringPtr("created")); err != nil {
			return err
		}
		created = svc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *LifecycleService) Accept(ctx context.Context, code string, technicianID int64) (*model.Service, error) {
	var updated *model.Service
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		svc, err := getService(ctx, tx, code)
		if err != nil {
			return err
		}
		if _, err := tx.GetTechnician(ctx, technicianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTechnicianNotFound
			}
			return err
		}

		svc.TechnicianID = &technicianID
		svc.Status = model.ServiceStatusAssigned
		if err := tx.UpdateService(ctx, svc); err != nil {
			return err
		}
		note := fmt.Sprintf("assigned to %d", technicianID)
		if err := appendEvent(ctx, tx, svc, &note); err != nil {
			return err
		}
		updated = svc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStatus sets any status from any other. A non-empty note is appended
// to the service notes. The event keeps notes exactly as given.
func (s *LifecycleService) UpdateStatus(ctx context.Context, code string, status model.ServiceStatus, notes *string) (*model.Service, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status is invalid", ErrInvalidInput)
	}
	var updated *model.Service
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		svc, err := getService(ctx, tx, code)
		if err != nil {
			return err
		}

		svc.Status = status
		if notes != nil && *notes != "" {
			svc.Notes = model.AppendNote(svc.Notes, *notes)
		}
		if err := tx.UpdateService(ctx, svc); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, svc, notes); err != nil {
			return err
		}
		updated = svc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *LifecycleService) GetByCode(ctx context.Context, code string) (*model.Service, error) {
	return getService(ctx, s.store, code)
}

func (s *LifecycleService) History(ctx context.Context, code string) ([]model.ServiceEvent, error) {
	svc, err := getService(ctx, s.store, code)
	if err != nil {
		return nil, err
	}
	return s.store.ListServiceEvents(ctx, svc.ID)
}

func (s *LifecycleService) List(ctx context.Context, filter model.ServiceFilter) ([]model.Service, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	return s.store.ListServices(ctx, filter)
}

func getService(ctx context.Context, store repository.Store, code string) (*model.Service, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrServiceNotFound
	}
	svc, err := store.GetServiceByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

func appendEvent(ctx context.Context, store repository.Store, svc *model.Service, notes *string) error {
	return store.AppendServiceEvent(ctx, &model.ServiceEvent{
		ServiceID: svc.ID,
		Status:    svc.Status,
		Notes:     notes,
	})
}

func stringPtr(v string) *string {
	return &v
}
