// Package pricing computes quotes from a zone/service pricing rule.
package pricing

import (
	"math"
	"time"

	"github.com/nurpe/rodify-dispatch/internal/model"
)

const (
	nightStart = 22 * time.Hour
	nightEnd   = 6 * time.Hour
)

// IsNight reports whether the wall-clock time of t falls in [22:00, 06:00).
// The caller picks the location by converting t beforehand.
func IsNight(t time.Time) bool {
	offset := timeOfDay(t)
	return offset >= nightStart || offset < nightEnd
}

// Price returns the night or day base plus the optional holiday surcharge,
// rounded to cents.
func Price(rule model.PricingRule, at time.Time, holiday bool) float64 {
	base := rule.BaseDay
	if IsNight(at) {
		base = rule.BaseNight
	}
	if holiday {
		base += rule.HolidaySurcharge
	}
	return Round2(base)
}

// Round2 rounds half away from zero to two decimals.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
