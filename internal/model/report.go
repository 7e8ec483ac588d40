package model

import "time"

// ServiceReceipt is everything printed on a single service receipt.
type ServiceReceipt struct {
	Service    Service
	Customer   User
	Technician *Technician
	Events     []ServiceEvent
	Currency   string
}

type ServiceReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Zone        *Zone
	Status      *ServiceStatus
	Currency    string
	Services    []Service
}
