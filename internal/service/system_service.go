package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

type SystemService struct {
	store repository.Store
}

type DemoUsers struct {
	Customer   model.User
	Technician model.Technician
}

func NewSystemService(store repository.Store) *SystemService {
	return &SystemService{store: store}
}

func (s *SystemService) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// DemoUsers returns the first customer and technician, normally the seeded
// demo accounts.
func (s *SystemService) DemoUsers(ctx context.Context) (*DemoUsers, error) {
	customer, err := s.store.FirstUser(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	tech, err := s.store.FirstTechnician(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnicianNotFound
		}
		return nil, err
	}
	return &DemoUsers{Customer: *customer, Technician: *tech}, nil
}
