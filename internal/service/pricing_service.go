package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/pricing"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

type PricingService struct {
	store    repository.Store
	location *time.Location
	currency string
}

type Quote struct {
	Price    float64
	Currency string
	At       time.Time
}

// NewPricingService quotes day and night rates on the wall clock of location.
func NewPricingService(store repository.Store, location *time.Location, currency string) *PricingService {
	if location == nil {
		location = time.UTC
	}
	return &PricingService{
		store:    store,
		location: location,
		currency: currency,
	}
}

func (s *PricingService) Location() *time.Location {
	return s.location
}

func (s *PricingService) Quote(ctx context.Context, serviceType model.ServiceType, zone model.Zone, at time.Time, isHoliday bool) (*Quote, error) {
	price, err := s.quoteWith(ctx, s.store, serviceType, zone, at, isHoliday)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Price:    price,
		Currency: s.currency,
		At:       at.In(s.location),
	}, nil
}

func (s *PricingService) ListRules(ctx context.Context) ([]model.PricingRule, error) {
	return s.store.ListPricingRules(ctx)
}

// quoteWith lets the lifecycle service price inside its own transaction.
func (s *PricingService) quoteWith(
	ctx context.Context,
	store repository.Store,
	serviceType model.ServiceType,
	zone model.Zone,
	at time.Time,
	isHoliday bool,
) (float64, error) {
	if !serviceType.Valid() || !zone.Valid() {
		return 0, fmt.Errorf("%w: unknown zone or service type", ErrInvalidInput)
	}

	rule, err := store.GetPricingRule(ctx, zone, serviceType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: %s/%s", ErrPricingRuleNotFound, zone, serviceType)
		}
		return 0, err
	}
	return pricing.Price(*rule, at.In(s.location), isHoliday), nil
}
