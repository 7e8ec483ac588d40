package model

import (
	"fmt"
	"time"
)

const (
	ServiceCodePrefix = "SVC-"
	NoteSeparator     = " | "
)

type Service struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	Code          string        `json:"code"`
	CustomerID    int64         `json:"customer_id"`
	TechnicianID  *int64        `json:"technician_id"`
	ServiceType   ServiceType   `json:"service_type"`
	Zone          Zone          `json:"zone"`
	Lat           float64       `json:"lat"`
	Lng           float64       `json:"lng"`
	Address       *string       `json:"address"`
	Status        ServiceStatus `json:"status"`
	QuotedPrice   float64       `json:"quoted_price"`
	PaymentMethod string        `json:"payment_method"`
	Notes         *string       `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}

// ServiceEvent is one audit entry of a service lifecycle. Rows are only ever
// appended.
type ServiceEvent struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	ServiceID int64         `json:"service_id"`
	Status    ServiceStatus `json:"status"`
	Notes     *string       `json:"notes"`
	CreatedAt time.Time     `json:"created_at"`
}

func (ServiceEvent) TableName() string {
	return "service_events"
}

type ServiceFilter struct {
	From   time.Time
	To     time.Time
	Zone   *Zone
	Status *ServiceStatus
}

// FormatServiceCode renders the human readable code, e.g. SVC-00042.
func FormatServiceCode(n int64) string {
	return fmt.Sprintf("%s%05d", ServiceCodePrefix, n)
}

// AppendNote joins note onto the existing free-text notes.
func AppendNote(existing *string, note string) *string {
	if existing == nil || *existing == "" {
		joined := note
		return &joined
	}
	joined := *existing + NoteSeparator + note
	return &joined
}
