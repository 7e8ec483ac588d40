package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleAdmin:
		return true
	default:
		return false
	}
}

// Zone is one of the fixed geographic service areas.
type Zone string

const (
	ZoneCiudad Zone = "ciudad"
	ZoneEste   Zone = "este"
	ZoneChepo  Zone = "chepo"
)

func AllZones() []Zone {
	return []Zone{ZoneCiudad, ZoneEste, ZoneChepo}
}

func (z Zone) Valid() bool {
	switch z {
	case ZoneCiudad, ZoneEste, ZoneChepo:
		return true
	default:
		return false
	}
}

func ParseZone(raw string) (Zone, error) {
	zone := Zone(strings.ToLower(strings.TrimSpace(raw)))
	if !zone.Valid() {
		return "", fmt.Errorf("unknown zone %q", raw)
	}
	return zone, nil
}

type ServiceType string

const (
	ServiceTypeBateria     ServiceType = "bateria"
	ServiceTypeCerrajeria  ServiceType = "cerrajeria"
	ServiceTypeLlanta      ServiceType = "llanta"
	ServiceTypeCombustible ServiceType = "combustible"
	ServiceTypeInspeccion  ServiceType = "inspeccion"
)

func AllServiceTypes() []ServiceType {
	return []ServiceType{
		ServiceTypeBateria,
		ServiceTypeCerrajeria,
		ServiceTypeLlanta,
		ServiceTypeCombustible,
		ServiceTypeInspeccion,
	}
}

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeBateria, ServiceTypeCerrajeria, ServiceTypeLlanta, ServiceTypeCombustible, ServiceTypeInspeccion:
		return true
	default:
		return false
	}
}

func ParseServiceType(raw string) (ServiceType, error) {
	serviceType := ServiceType(strings.ToLower(strings.TrimSpace(raw)))
	if !serviceType.Valid() {
		return "", fmt.Errorf("unknown service type %q", raw)
	}
	return serviceType, nil
}

type ServiceStatus string

const (
	ServiceStatusPending    ServiceStatus = "pending"
	ServiceStatusAssigned   ServiceStatus = "assigned"
	ServiceStatusEnRoute    ServiceStatus = "en_route"
	ServiceStatusArrived    ServiceStatus = "arrived"
	ServiceStatusInProgress ServiceStatus = "in_progress"
	ServiceStatusCompleted  ServiceStatus = "completed"
	ServiceStatusCanceled   ServiceStatus = "canceled"
)

func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceStatusPending,
		ServiceStatusAssigned,
		ServiceStatusEnRoute,
		ServiceStatusArrived,
		ServiceStatusInProgress,
		ServiceStatusCompleted,
		ServiceStatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the lifecycle. Updates out of a
// terminal status are still accepted by the lifecycle service.
func (s ServiceStatus) IsTerminal() bool {
	return s == ServiceStatusCompleted || s == ServiceStatusCanceled
}

func ParseServiceStatus(raw string) (ServiceStatus, error) {
	status := ServiceStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown service status %q", raw)
	}
	return status, nil
}
