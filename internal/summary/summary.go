// Package summary computes the aggregate shown under every result set.
package summary

import (
	"strconv"
	"strings"

	"shipment-parser/internal/parser"
)

// Summary is the shipment count, package count and total weight of a
// record set.
type Summary struct {
	Shipments   int     `json:"shipments"`
	Packages    int     `json:"packages"`
	TotalWeight float64 `json:"total_weight_kg"`

	// MalformedWeights lists the tracking numbers whose weight could not be
	// read. They are left out of TotalWeight.
	MalformedWeights []string `json:"malformed_weights,omitempty"`
}

// Summarize aggregates records. It never fails; unreadable weights are
// collected instead.
func Summarize(records []parser.PackageRecord) Summary {
	var s Summary
	seen := make(map[string]bool)
	for _, rec := range records {
		if !seen[rec.ShipmentID] {
			seen[rec.ShipmentID] = true
			s.Shipments++
		}
		s.Packages++

		w, err := ParseWeight(rec.Weight)
		if err != nil {
			s.MalformedWeights = append(s.MalformedWeights, rec.TrackingNumber)
			continue
		}
		s.TotalWeight += w
	}
	return s
}

// ParseWeight reads a weight string such as "2.75KG" or "2.75 kg" as
// kilograms.
func ParseWeight(weight string) (float64, error) {
	w := strings.TrimSpace(weight)
	w = strings.TrimSuffix(strings.TrimSuffix(w, "KG"), "kg")
	return strconv.ParseFloat(strings.TrimSpace(w), 64)
}

// WeightString formats a total weight with two decimals and the unit.
func WeightString(kg float64) string {
	return strconv.FormatFloat(kg, 'f', 2, 64) + " KG"
}
