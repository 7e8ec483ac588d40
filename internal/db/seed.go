package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

func float64Ptr(v float64) *float64 {
	return &v
}

var demoCustomer = model.User{
	Name:  "Cliente Demo",
	Phone: "+50760000001",
	Role:  model.RoleCustomer,
}

var demoTechnician = model.Technician{
	Name:    "Técnico Demo",
	Phone:   "+50760000002",
	Zones:   "ciudad,este",
	Online:  true,
	LastLat: float64Ptr(9.0),
	LastLng: float64Ptr(-79.0),
}

// SeedPricingRules returns the initial rule table, (base_day, base_night,
// holiday_surcharge) per zone and service type.
func SeedPricingRules() []model.PricingRule {
	type row struct {
		zone        model.Zone
		serviceType model.ServiceType
		day, night  float64
		holiday     float64
	}
	rows := []row{
		{model.ZoneCiudad, model.ServiceTypeBateria, 18, 24, 5},
		{model.ZoneCiudad, model.ServiceTypeCerrajeria, 22, 28, 5},
		{model.ZoneCiudad, model.ServiceTypeLlanta, 16, 22, 5},
		{model.ZoneCiudad, model.ServiceTypeCombustible, 16, 22, 5},
		{model.ZoneCiudad, model.ServiceTypeInspeccion, 15, 20, 5},

		{model.ZoneEste, model.ServiceTypeBateria, 20, 26, 5},
		{model.ZoneEste, model.ServiceTypeCerrajeria, 24, 30, 5},
		{model.ZoneEste, model.ServiceTypeLlanta, 18, 24, 5},
		{model.ZoneEste, model.ServiceTypeCombustible, 18, 24, 5},
		{model.ZoneEste, model.ServiceTypeInspeccion, 17, 22, 5},

		{model.ZoneChepo, model.ServiceTypeBateria, 24, 32, 7},
		{model.ZoneChepo, model.ServiceTypeCerrajeria, 28, 36, 7},
		{model.ZoneChepo, model.ServiceTypeLlanta, 22, 30, 7},
		{model.ZoneChepo, model.ServiceTypeCombustible, 22, 30, 7},
		{model.ZoneChepo, model.ServiceTypeInspeccion, 20, 28, 7},
	}

	rules := make([]model.PricingRule, 0, len(rows))
	for _, r := range rows {
		rules = append(rules, model.PricingRule{
			Zone:             r.zone,
			ServiceType:      r.serviceType,
			BaseDay:          r.day,
			BaseNight:        r.night,
			HolidaySurcharge: r.holiday,
		})
	}
	return rules
}

// seed fills an empty database. Users and the demo technician are written
// only when users is empty, rules only when pricing_rules is empty.
func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Raw(`SELECT COUNT(*) FROM users`).Scan(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			if err := tx.Exec(`
				INSERT INTO users (name, phone, role) VALUES (?, ?, ?)
			`, demoCustomer.Name, demoCustomer.Phone, string(demoCustomer.Role)).Error; err != nil {
				return fmt.Errorf("seed customer: %w", err)
			}
			if err := tx.Exec(`
				INSERT INTO technicians (name, phone, zones, online, last_lat, last_lng)
				VALUES (?, ?, ?, ?, ?, ?)
			`,
				demoTechnician.Name,
				demoTechnician.Phone,
				demoTechnician.Zones,
				demoTechnician.Online,
				demoTechnician.LastLat,
				demoTechnician.LastLng,
			).Error; err != nil {
				return fmt.Errorf("seed technician: %w", err)
			}
		}

		var rules int64
		if err := tx.Raw(`SELECT COUNT(*) FROM pricing_rules`).Scan(&rules).Error; err != nil {
			return err
		}
		if rules == 0 {
			for _, rule := range SeedPricingRules() {
				if err := tx.Exec(`
					INSERT INTO pricing_rules (zone, service_type, base_day, base_night, holiday_surcharge)
					VALUES (?, ?, ?, ?, ?)
				`, string(rule.Zone), string(rule.ServiceType), rule.BaseDay, rule.BaseNight, rule.HolidaySurcharge).Error; err != nil {
					return fmt.Errorf("seed pricing rule %s/%s: %w", rule.Zone, rule.ServiceType, err)
				}
			}
		}
		return nil
	})
}

// SeedMemory applies the same seed rules to an in-memory store.
func SeedMemory(store *repository.MemoryStore) error {
	if store.CountUsers() == 0 {
		if _, err := store.AddUser(demoCustomer); err != nil {
			return fmt.Errorf("seed customer: %w", err)
		}
		if _, err := store.AddTechnician(demoTechnician); err != nil {
			return fmt.Errorf("seed technician: %w", err)
		}
	}
	if store.CountPricingRules() == 0 {
		for _, rule := range SeedPricingRules() {
			if _, err := store.AddPricingRule(rule); err != nil {
				return fmt.Errorf("seed pricing rule %s/%s: %w", rule.Zone, rule.ServiceType, err)
			}
		}
	}
	return nil
}
