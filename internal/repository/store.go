package repository

import (
	"context"

	"github.com/nurpe/rodify-dispatch/internal/model"
)

// Store is the persistence surface of the dispatch core. Lookups that miss
// return gorm.ErrRecordNotFound. Transaction runs fn against a store bound to
// a single transaction and rolls every write back when fn returns an error.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id int64) (*model.User, error)
	FirstUser(ctx context.Context) (*model.User, error)

	GetTechnician(ctx context.Context, id int64) (*model.Technician, error)
	FirstTechnician(ctx context.Context) (*model.Technician, error)
	ListTechnicians(ctx context.Context) ([]model.Technician, error)

	GetPricingRule(ctx context.Context, zone model.Zone, serviceType model.ServiceType) (*model.PricingRule, error)
	ListPricingRules(ctx context.Context) ([]model.PricingRule, error)

	NextServiceID(ctx context.Context) (int64, error)
	CreateService(ctx context.Context, svc *model.Service) error
	GetServiceByCode(ctx context.Context, code string) (*model.Service, error)
	UpdateService(ctx context.Context, svc *model.Service) error
	ListServices(ctx context.Context, filter model.ServiceFilter) ([]model.Service, error)

	AppendServiceEvent(ctx context.Context, event *model.ServiceEvent) error
	ListServiceEvents(ctx context.Context, serviceID int64) ([]model.ServiceEvent, error)
}
