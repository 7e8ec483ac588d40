package model

import "strings"

type Technician struct {
	ID      int64    `gorm:"primaryKey" json:"id"`
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Zones   string   `json:"zones"` // csv, e.g. "ciudad,este"
	Online  bool     `json:"online"`
	LastLat *float64 `json:"last_lat"`
	LastLng *float64 `json:"last_lng"`
}

func (Technician) TableName() string {
	return "technicians"
}

// ZoneList returns the covered zones with surrounding whitespace removed.
// Empty entries are dropped.
func (t Technician) ZoneList() []string {
	items := strings.Split(t.Zones, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func (t Technician) CoversZone(zone Zone) bool {
	for _, item := range t.ZoneList() {
		if item == string(zone) {
			return true
		}
	}
	return false
}
