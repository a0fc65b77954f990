package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// spaceReplacer rewrites line-break and space variants pasted from web pages.
// CRLF must be listed before CR so the pair collapses to one newline.
var spaceReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
	"\u0085", "\n",
	"\u00a0", " ",
	"\u2007", " ",
	"\u202f", " ",
	"\u3000", " ",
)

// Normalize canonicalizes whitespace and line breaks and composes the text
// to NFC. It never fails and Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return norm.NFC.String(spaceReplacer.Replace(text))
}

// IsTableFormat reports whether the text carries all the column headers of
// the tabular layout: a shipment keyword, the package-count, status and
// courier keywords.
func IsTableFormat(text string) bool {
	return strings.Contains(text, keywordShipment) &&
		strings.Contains(text, keywordPackageCount) &&
		strings.Contains(text, keywordStatus) &&
		strings.Contains(text, keywordCourier)
}
