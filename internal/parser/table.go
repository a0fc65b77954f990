package parser

import (
	"strings"
)

const (
	minTableFields     = 5
	tableLookahead     = 3
	tableProductMinLen = 10
)

// Column offsets of a tabular data row.
const (
	colShipmentID = iota
	colPackageCount
	colStatus
	colCourier
	colTracking
	colWeight
)

// rowContext carries the last valid shipment-level fields down the table so
// rows that leave them blank inherit them.
type rowContext struct {
	shipmentID   string
	packageCount string
	status       string
}

// apply validates the shipment-level columns of a row, falling back to the
// carried values for any column that fails, and remembers the outcome.
func (c *rowContext) apply(fields []string) {
	if id := fields[colShipmentID]; isAllDigits(id) {
		c.shipmentID = id
	}
	if count := fields[colPackageCount]; strings.Contains(count, keywordPackage) {
		c.packageCount = count
	}
	if status := fields[colStatus]; datePatternRegex.MatchString(status) {
		c.status = status
	}
}

// ParseTable extracts records from a column-oriented paste. It returns nil
// when no header row is found or no row carries both courier and tracking.
func ParseTable(text string) []PackageRecord {
	lines := strings.Split(text, "\n")

	header := findHeaderRow(lines)
	if header < 0 {
		return nil
	}

	var (
		records []PackageRecord
		ctx     rowContext
	)
	for i := header + 1; i < len(lines); i++ {
		fields := splitColumns(lines[i])
		if len(fields) < minTableFields {
			continue
		}

		ctx.apply(fields)

		rec := PackageRecord{
			ShipmentID:        ctx.shipmentID,
			PackageCountLabel: ctx.packageCount,
			Status:            ctx.status,
			Courier:           field(fields, colCourier),
			TrackingNumber:    field(fields, colTracking),
			Weight:            field(fields, colWeight),
		}
		rec.ProductName, rec.Dimensions = tableRowDetails(lines, i)

		if rec.Courier != "" && rec.TrackingNumber != "" {
			records = append(records, rec)
		}
	}
	return records
}

// findHeaderRow returns the index of the first line carrying the shipment,
// package-count and status headers, or -1.
func findHeaderRow(lines []string) int {
	for i, line := range lines {
		if (strings.Contains(line, keywordShipmentID) || strings.Contains(line, keywordShipment)) &&
			strings.Contains(line, keywordPackageCount) &&
			strings.Contains(line, keywordStatus) {
			return i
		}
	}
	return -1
}

// tableRowDetails looks at the lines right under a data row for a product
// description and a dimension line. The scan stops at the next data row.
func tableRowDetails(lines []string, row int) (product, dimensions string) {
	for j := 1; j <= tableLookahead && row+j < len(lines); j++ {
		next := strings.TrimSpace(lines[row+j])
		if next == "" {
			continue
		}
		if len(splitColumns(next)) >= minTableFields {
			break
		}
		if dimensionLineRegex.MatchString(next) {
			if dimensions == "" {
				dimensions = next
			}
			continue
		}
		if product == "" && !startsWithDigit(next) && runeLen(next) > tableProductMinLen && !isDimensionLead(next) {
			product = next
		}
	}
	return product, dimensions
}

func splitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return columnSplitRegex.Split(line, -1)
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
