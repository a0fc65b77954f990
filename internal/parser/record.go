package parser

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrNoRecords is returned when every strategy came back empty.
	ErrNoRecords = eris.New("no package records could be extracted from the input")
	// ErrEmptyInput is returned for blank input.
	ErrEmptyInput = eris.New("input text is empty")
	// ErrInputTooLarge is returned when the input exceeds the configured limit.
	ErrInputTooLarge = eris.New("input text is too large")
	// ErrInvalidEncoding is returned for input that is not valid UTF-8.
	ErrInvalidEncoding = eris.New("input text is not valid UTF-8")
)

// PackageRecord is one physical parcel inside a consolidated shipment.
type PackageRecord struct {
	ShipmentID        string `json:"shipment_id" mapstructure:"shipment_id"`
	PackageCountLabel string `json:"package_count" mapstructure:"package_count"`
	Status            string `json:"status" mapstructure:"status"`
	Courier           string `json:"courier" mapstructure:"courier"`
	TrackingNumber    string `json:"tracking_number" mapstructure:"tracking_number"`
	Weight            string `json:"weight" mapstructure:"weight"`
	ProductName       string `json:"product_name" mapstructure:"product_name"`
	Dimensions        string `json:"dimensions" mapstructure:"dimensions"`
}

// Result is the outcome of one Parse call.
type Result struct {
	RunID    string          `json:"run_id"`
	Strategy string          `json:"strategy"`
	Records  []PackageRecord `json:"records"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ShipmentIDs returns the distinct shipment IDs in discovery order.
func (r *Result) ShipmentIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, rec := range r.Records {
		if !seen[rec.ShipmentID] {
			seen[rec.ShipmentID] = true
			ids = append(ids, rec.ShipmentID)
		}
	}
	return ids
}

// ReferenceFixture is a verified set of records for one shipment, supplied by
// configuration. It is used to fill gaps when the text announces more
// packages than any pattern could recover.
type ReferenceFixture struct {
	ShipmentID    string          `json:"shipment_id" mapstructure:"shipment_id"`
	ExpectedCount int             `json:"expected_count" mapstructure:"expected_count"`
	ProductHint   string          `json:"product_hint" mapstructure:"product_hint"`
	Records       []PackageRecord `json:"records" mapstructure:"records"`
}

// expected returns the number of packages the fixture vouches for.
func (f ReferenceFixture) expected() int {
	if f.ExpectedCount > 0 {
		return f.ExpectedCount
	}
	return len(f.Records)
}

// recordsFor returns copies of the reference records stamped with the
// fixture's shipment ID.
func (f ReferenceFixture) recordsFor() []PackageRecord {
	out := make([]PackageRecord, 0, len(f.Records))
	for _, rec := range f.Records {
		rec.ShipmentID = f.ShipmentID
		if rec.PackageCountLabel == "" {
			rec.PackageCountLabel = countLabel(fmt.Sprint(f.expected()))
		}
		out = append(out, rec)
	}
	return out
}

// countLabel renders a package count the way the source pages do.
func countLabel(n string) string {
	return fmt.Sprintf(packageCountFmt, n)
}

func weightLabel(w string) string {
	return w + weightUnit
}
