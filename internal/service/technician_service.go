package service

import (
	"context"
	"fmt"

	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

type TechnicianService struct {
	store repository.Store
}

func NewTechnicianService(store repository.Store) *TechnicianService {
	return &TechnicianService{store: store}
}

// ListAvailable returns online technicians whose zone list contains zone.
func (s *TechnicianService) ListAvailable(ctx context.Context, zone model.Zone) ([]model.Technician, error) {
	if !zone.Valid() {
		return nil, fmt.Errorf("%w: zone is invalid", ErrInvalidInput)
	}

	technicians, err := s.store.ListTechnicians(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.Technician, 0, len(technicians))
	for _, tech := range technicians {
		if tech.Online && tech.CoversZone(zone) {
			result = append(result, tech)
		}
	}
	return result, nil
}
