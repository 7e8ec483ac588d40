package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	ErrServiceNotFound    = fmt.Errorf("service %w", ErrNotFound)
	ErrCustomerNotFound   = fmt.Errorf("customer %w", ErrNotFound)
	ErrTechnicianNotFound = fmt.Errorf("technician %w", ErrNotFound)

	// ErrPricingRuleNotFound is a configuration problem, not a caller mistake.
	ErrPricingRuleNotFound = errors.New("no pricing rule for given zone/service")
)
