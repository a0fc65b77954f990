package parser

import (
	"regexp"
	"strings"
)

const (
	productWindow     = 800
	productScanWindow = 1000
	productScanMinLen = 10
	productScanMaxLen = 100
)

// section is one shipment header plus the text up to the next header.
type section struct {
	shipmentID string
	body       string
}

// shipmentFields are the shipment-level values shared by every package in a
// section.
type shipmentFields struct {
	packageCount string
	status       string
}

// splitSections cuts the text at every "新竹<id> 打包後重量" header.
func splitSections(text string) []section {
	locs := shipmentHeaderRegex.FindAllStringSubmatchIndex(text, -1)
	sections := make([]section, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, section{
			shipmentID: text[loc[2]:loc[3]],
			body:       text[loc[1]:end],
		})
	}
	return sections
}

// readShipmentFields pulls the package count and status out of a section,
// substituting the sentinels when they are absent.
func readShipmentFields(body string, weight *regexp.Regexp) shipmentFields {
	fields := shipmentFields{packageCount: UnknownValue, status: StatusNotFound}
	if m := weight.FindStringSubmatch(body); m != nil {
		fields.packageCount = m[2]
	}
	if m := statusRegex.FindStringSubmatch(body); m != nil {
		fields.status = strings.TrimSpace(m[1])
	}
	return fields
}

// ParseSections extracts packages from free-form text, one section per
// shipment header. Within a section the pattern tiers are tried in order
// until one matches.
func ParseSections(text string) []PackageRecord {
	var records []PackageRecord
	for _, sec := range splitSections(text) {
		fields := readShipmentFields(sec.body, sectionWeightRegex)
		tier, matches := matchTiers(sec.body)
		if tier == nil {
			continue
		}
		for i, m := range matches {
			limit := len(sec.body)
			if i+1 < len(matches) {
				limit = matches[i+1][0]
			}
			records = append(records, sectionRecord(sec, fields, m, limit))
		}
	}
	return records
}

// matchTiers returns the first tier with at least one match in body.
func matchTiers(body string) (*PatternEntry, [][]int) {
	for _, tier := range sectionTiers {
		if matches := tier.Regex.FindAllStringSubmatchIndex(body, -1); len(matches) > 0 {
			return tier, matches
		}
	}
	return nil, nil
}

func sectionRecord(sec section, fields shipmentFields, m []int, limit int) PackageRecord {
	body := sec.body
	rec := PackageRecord{
		ShipmentID:        sec.shipmentID,
		PackageCountLabel: countLabel(fields.packageCount),
		Status:            fields.status,
		Courier:           strings.TrimSpace(body[m[4]:m[5]]),
		TrackingNumber:    body[m[6]:m[7]],
		Weight:            weightLabel(body[m[8]:m[9]]),
	}

	after := body[:limit]
	rec.ProductName, rec.Dimensions = extractProductInfo(after, m[1], productWindow)
	if rec.ProductName == "" {
		rec.ProductName = scanProductLine(runeWindow(after, m[1], productScanWindow))
	}
	return rec
}

// extractProductInfo reads the first non-blank line after a line break as
// the product name, skipping dimension and package-index lines, and looks
// for a dimension string anywhere in the same window.
func extractProductInfo(text string, start, window int) (product, dimensions string) {
	search := runeWindow(text, start, window)

	if nl := strings.Index(search, "\n"); nl >= 0 {
		for _, line := range strings.Split(search[nl+1:], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || isDimensionLine(line) {
				continue
			}
			if !packageIndexRegex.MatchString(line) {
				product = line
			}
			break
		}
	}

	if m := dimensionRegex.FindStringSubmatch(search); m != nil {
		dimensions = m[1]
	}
	return product, dimensions
}

// scanProductLine is the wider second pass: any line of plausible length that
// does not look like an index, weight or dimension line.
func scanProductLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if isProductCandidate(line, productScanMinLen, productScanMaxLen) {
			return line
		}
	}
	return ""
}
