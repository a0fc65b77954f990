package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords that mark a column-oriented paste.
const (
	keywordShipmentID   = "新竹包裹編號"
	keywordShipment     = "新竹"
	keywordPackageCount = "包裹數"
	keywordStatus       = "狀態"
	keywordCourier      = "快遞"
	keywordPackage      = "包裹"
)

// Sentinel field values used by the free-form strategies.
const (
	UnknownValue    = "未知"
	StatusNotFound  = "未找到狀態信息"
	weightUnit      = "KG"
	packageCountFmt = "%s 個包裹"
)

// PatternEntry is a package-line pattern with the name it is reported under.
type PatternEntry struct {
	Name        string
	Regex       *regexp.Regexp
	Description string
}

var (
	// shipmentHeaderRegex splits free-form text into shipment sections.
	shipmentHeaderRegex = regexp.MustCompile(`新竹(\d{9,13})\s*打包後重量`)
	// shipmentMarkerRegex finds shipment IDs without the weight anchor.
	shipmentMarkerRegex = regexp.MustCompile(`新竹(\d{9,13})`)

	sectionWeightRegex = regexp.MustCompile(`[：:]\s*([\d.]+)\s*KG\s*\(\s*(\d+)\s*個包裹\)`)
	packedWeightRegex  = regexp.MustCompile(`打包後重量[：:]\s*([\d.]+)\s*KG\s*\(\s*(\d+)\s*個包裹\)`)
	statusRegex        = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}[^。\n]*)`)
	weightMarkerRegex  = regexp.MustCompile(`重量[^\n]*?[\d.]+\s*KG`)
	datePatternRegex   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	countLabelRegex    = regexp.MustCompile(`(\d+)\s*個?包裹`)

	// dimensionRegex captures "L x W x H CM ，N才".
	dimensionRegex     = regexp.MustCompile(`([0-9.]+\s*x\s*[0-9.]+\s*x\s*[0-9.]+\s*CM\s*[，,]\s*\d+才)`)
	dimensionLineRegex = regexp.MustCompile(`[0-9.]+\s*x\s*[0-9.]+\s*x\s*[0-9.]+\s*CM`)
	dimensionLeadRegex = regexp.MustCompile(`^[0-9.]+\s*x`)
	packageIndexRegex  = regexp.MustCompile(`^\d+$`)
	trackingTailRegex  = regexp.MustCompile(`\s[A-Z0-9]{6,}$`)

	columnSplitRegex = regexp.MustCompile(`\s*\t\s*|\s{2,}`)
)

// sectionTiers are tried in order; a tier runs only when the previous one
// matched nothing inside the section.
var sectionTiers = []*PatternEntry{
	{
		Name:        "strict",
		Regex:       regexp.MustCompile(`(\d+)\s*\n([^\n]+)\s+([A-Z0-9]+)\s*\n包裹重量[：:]\s*([\d.]+)KG`),
		Description: "index line, courier and tracking line, package weight line",
	},
	{
		Name:        "relaxed",
		Regex:       regexp.MustCompile(`(\d+)\s*\n([^\n]+)\s+([A-Z0-9]+)\s*\n.*?重量.*?([\d.]+)KG`),
		Description: "any line mentioning 重量 after the tracking line",
	},
	{
		Name:        "loose",
		Regex:       regexp.MustCompile(`(\d+)\s*\n(\S+)\s+([A-Z0-9]+)\s*\n.*?([\d.]+)KG`),
		Description: "single-token courier, any KG value on the following line",
	},
}

var (
	markerStrictPattern  = sectionTiers[0]
	markerRelaxedPattern = &PatternEntry{
		Name:        "marker-relaxed",
		Regex:       regexp.MustCompile(`(\d+)[^\n]*\n([^\n]+?)\s+([A-Z0-9]+)[^\n]*\n.*?重量.*?([\d.]+)KG`),
		Description: "tolerates trailing text on the index and tracking lines",
	}
)

// startsWithDigit reports whether the first rune of s is a decimal digit.
func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsDigit(r)
}

func isDimensionLead(s string) bool {
	return dimensionLeadRegex.MatchString(s)
}

func isDimensionLine(s string) bool {
	return isDimensionLead(s) || dimensionLineRegex.MatchString(s)
}

// runeLen counts characters rather than bytes; all length thresholds are in
// characters.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// runeWindow returns at most n characters of s starting at byte offset start.
func runeWindow(s string, start, n int) string {
	if start < 0 {
		start = 0
	}
	if start >= len(s) {
		return ""
	}
	rest := s[start:]
	count := 0
	for i := range rest {
		if count == n {
			return rest[:i]
		}
		count++
	}
	return rest
}

// isProductCandidate is the shared shape test for product description lines:
// long enough, not digit-initial, free of weight/dimension markers, and not a
// shipment header or a courier line ending in a tracking code.
func isProductCandidate(line string, minLen, maxLen int) bool {
	n := runeLen(line)
	if n <= minLen || (maxLen > 0 && n >= maxLen) {
		return false
	}
	if startsWithDigit(line) || strings.Contains(line, weightUnit) || isDimensionLine(line) {
		return false
	}
	return !shipmentMarkerRegex.MatchString(line) && !trackingTailRegex.MatchString(line)
}
