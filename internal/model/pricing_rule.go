package model

// PricingRule is unique per (zone, service type).
type PricingRule struct {
	ID               int64       `gorm:"primaryKey" json:"id"`
	Zone             Zone        `json:"zone"`
	ServiceType      ServiceType `json:"service_type"`
	BaseDay          float64     `json:"base_day"`
	BaseNight        float64     `json:"base_night"`
	HolidaySurcharge float64     `json:"holiday_surcharge"`
}

func (PricingRule) TableName() string {
	return "pricing_rules"
}
