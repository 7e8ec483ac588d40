package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
)

// MemoryStore keeps everything in process memory. Transactions are serialised
// and work on a copy that replaces the live data only when fn succeeds.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
	now  func() time.Time
}

type memoryData struct {
	users       []model.User
	technicians []model.Technician
	rules       []model.PricingRule
	services    []model.Service
	events      []model.ServiceEvent

	userSeq    int64
	techSeq    int64
	ruleSeq    int64
	serviceSeq int64
	eventSeq   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:   &sync.Mutex{},
		data: &memoryData{},
		now:  time.Now,
	}
}

func (d *memoryData) clone() *memoryData {
	cp := *d
	cp.users = append([]model.User(nil), d.users...)
	cp.technicians = append([]model.Technician(nil), d.technicians...)
	cp.rules = append([]model.PricingRule(nil), d.rules...)
	cp.services = append([]model.Service(nil), d.services...)
	cp.events = append([]model.ServiceEvent(nil), d.events...)
	return &cp
}

func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.data.clone()
	if err := fn(&MemoryStore{mu: m.mu, data: work, inTx: true, now: m.now}); err != nil {
		return err
	}
	*m.data = *work
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) AddUser(user model.User) (model.User, error) {
	defer m.lock()()
	if !user.Role.Valid() {
		return model.User{}, fmt.Errorf("invalid role %q", user.Role)
	}
	for _, existing := range m.data.users {
		if existing.Phone == user.Phone {
			return model.User{}, fmt.Errorf("duplicate user phone %s", user.Phone)
		}
	}
	m.data.userSeq++
	user.ID = m.data.userSeq
	m.data.users = append(m.data.users, user)
	return user, nil
}

func (m *MemoryStore) AddTechnician(tech model.Technician) (model.Technician, error) {
	defer m.lock()()
	for _, existing := range m.data.technicians {
		if existing.Phone == tech.Phone {
			return model.Technician{}, fmt.Errorf("duplicate technician phone %s", tech.Phone)
		}
	}
	m.data.techSeq++
	tech.ID = m.data.techSeq
	m.data.technicians = append(m.data.technicians, tech)
	return tech, nil
}

func (m *MemoryStore) AddPricingRule(rule model.PricingRule) (model.PricingRule, error) {
	defer m.lock()()
	for _, existing := range m.data.rules {
		if existing.Zone == rule.Zone && existing.ServiceType == rule.ServiceType {
			return model.PricingRule{}, fmt.Errorf("duplicate pricing rule %s/%s", rule.Zone, rule.ServiceType)
		}
	}
	m.data.ruleSeq++
	rule.ID = m.data.ruleSeq
	m.data.rules = append(m.data.rules, rule)
	return rule, nil
}

func (m *MemoryStore) CountUsers() int {
	defer m.lock()()
	return len(m.data.users)
}

func (m *MemoryStore) CountPricingRules() int {
	defer m.lock()()
	return len(m.data.rules)
}

func (m *MemoryStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	defer m.lock()()
	for _, user := range m.data.users {
		if user.ID == id {
			found := user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MemoryStore) FirstUser(ctx context.Context) (*model.User, error) {
	defer m.lock()()
	if len(m.data.users) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	found := m.data.users[0]
	return &found, nil
}

func (m *MemoryStore) GetTechnician(ctx context.Context, id int64) (*model.Technician, error) {
	defer m.lock()()
	for _, tech := range m.data.technicians {
		if tech.ID == id {
			found := tech
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MemoryStore) FirstTechnician(ctx context.Context) (*model.Technician, error) {
	defer m.lock()()
	if len(m.data.technicians) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	found := m.data.technicians[0]
	return &found, nil
}

func (m *MemoryStore) ListTechnicians(ctx context.Context) ([]model.Technician, error) {
	defer m.lock()()
	return append([]model.Technician(nil), m.data.technicians...), nil
}

func (m *MemoryStore) GetPricingRule(ctx context.Context, zone model.Zone, serviceType model.ServiceType) (*model.PricingRule, error) {
	defer m.lock()()
	for _, rule := range m.data.rules {
		if rule.Zone == zone && rule.ServiceType == serviceType {
			found := rule
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MemoryStore) ListPricingRules(ctx context.Context) ([]model.PricingRule, error) {
	defer m.lock()()
	return append([]model.PricingRule(nil), m.data.rules...), nil
}

func (m *MemoryStore) NextServiceID(ctx context.Context) (int64, error) {
	defer m.lock()()
	m.data.serviceSeq++
	return m.data.serviceSeq, nil
}

func (m *MemoryStore) CreateService(ctx context.Context, svc *model.Service) error {
	defer m.lock()()
	for _, existing := range m.data.services {
		if existing.Code == svc.Code {
			return fmt.Errorf("duplicate service code %s", svc.Code)
		}
		if svc.ID != 0 && existing.ID == svc.ID {
			return fmt.Errorf("duplicate service id %d", svc.ID)
		}
	}
	if !m.hasUser(svc.CustomerID) {
		return fmt.Errorf("customer %d does not exist", svc.CustomerID)
	}
	if svc.ID == 0 {
		m.data.serviceSeq++
		svc.ID = m.data.serviceSeq
	} else if svc.ID > m.data.serviceSeq {
		m.data.serviceSeq = svc.ID
	}
	now := m.now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	m.data.services = append(m.data.services, *svc)
	return nil
}

func (m *MemoryStore) GetServiceByCode(ctx context.Context, code string) (*model.Service, error) {
	defer m.lock()()
	for _, svc := range m.data.services {
		if svc.Code == code {
			found := svc
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MemoryStore) UpdateService(ctx context.Context, svc *model.Service) error {
	defer m.lock()()
	for i := range m.data.services {
		if m.data.services[i].ID != svc.ID {
			continue
		}
		stored := &m.data.services[i]
		stored.TechnicianID = svc.TechnicianID
		stored.Status = svc.Status
		stored.Notes = svc.Notes
		stored.UpdatedAt = m.now()
		svc.UpdatedAt = stored.UpdatedAt
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *MemoryStore) ListServices(ctx context.Context, filter model.ServiceFilter) ([]model.Service, error) {
	defer m.lock()()
	result := make([]model.Service, 0, len(m.data.services))
	for _, svc := range m.data.services {
		if !filter.From.IsZero() && svc.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !svc.CreatedAt.Before(filter.To) {
			continue
		}
		if filter.Zone != nil && svc.Zone != *filter.Zone {
			continue
		}
		if filter.Status != nil && svc.Status != *filter.Status {
			continue
		}
		result = append(result, svc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryStore) AppendServiceEvent(ctx context.Context, event *model.ServiceEvent) error {
	defer m.lock()()
	found := false
	for _, svc := range m.data.services {
		if svc.ID == event.ServiceID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("service %d does not exist", event.ServiceID)
	}
	m.data.eventSeq++
	event.ID = m.data.eventSeq
	event.CreatedAt = m.now()
	m.data.events = append(m.data.events, *event)
	return nil
}

func (m *MemoryStore) ListServiceEvents(ctx context.Context, serviceID int64) ([]model.ServiceEvent, error) {
	defer m.lock()()
	var result []model.ServiceEvent
	for _, event := range m.data.events {
		if event.ServiceID == serviceID {
			result = append(result, event)
		}
	}
	return result, nil
}

func (m *MemoryStore) hasUser(id int64) bool {
	for _, user := range m.data.users {
		if user.ID == id {
			return true
		}
	}
	return false
}
