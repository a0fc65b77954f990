package parser

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// DefaultMaxInputBytes bounds a single paste.
const DefaultMaxInputBytes = 4 << 20

// Config configures a Parser.
type Config struct {
	// Fixtures are reference records keyed by shipment ID; see ReferenceFixture.
	Fixtures []ReferenceFixture
	// MaxInputBytes rejects larger input; zero means DefaultMaxInputBytes.
	MaxInputBytes int
	Logger        *slog.Logger
}

// Strategy turns normalized text into records. An empty result hands the
// text to the next strategy.
type Strategy struct {
	Name  string
	Parse func(text string) []PackageRecord
}

// Parser runs the extraction cascade. It holds no per-call state and may be
// shared between goroutines.
type Parser struct {
	strategies    []Strategy
	fixtures      map[string]ReferenceFixture
	maxInputBytes int
	logger        *slog.Logger
}

// New creates a Parser. A nil config uses the defaults.
func New(cfg *Config) *Parser {
	if cfg == nil {
		cfg = &Config{}
	}

	p := &Parser{
		fixtures:      make(map[string]ReferenceFixture, len(cfg.Fixtures)),
		maxInputBytes: cfg.MaxInputBytes,
		logger:        cfg.Logger,
	}
	if p.maxInputBytes <= 0 {
		p.maxInputBytes = DefaultMaxInputBytes
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	for _, f := range cfg.Fixtures {
		p.fixtures[f.ShipmentID] = f
	}

	markers := &markerParser{fixtures: p.fixtures}
	p.strategies = []Strategy{
		{Name: "table", Parse: parseTableIfDetected},
		{Name: "section", Parse: ParseSections},
		{Name: "marker", Parse: markers.parse},
	}
	return p
}

// Strategies returns the strategy names in the order they are tried.
func (p *Parser) Strategies() []string {
	names := make([]string, len(p.strategies))
	for i, s := range p.strategies {
		names[i] = s.Name
	}
	return names
}

// Parse runs one paste through normalization, the strategy cascade, product
// backfill and reconciliation. It returns ErrNoRecords when nothing could be
// extracted.
func (p *Parser) Parse(text string) (*Result, error) {
	if err := ValidateInput(text, p.maxInputBytes); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := p.logger.With("run", result.RunID)

	normalized := Normalize(text)

	var records []PackageRecord
	for _, s := range p.strategies {
		records = s.Parse(normalized)
		logger.Debug("strategy finished", "strategy", s.Name, "records", len(records))
		if len(records) > 0 {
			result.Strategy = s.Name
			break
		}
	}

	BackfillProducts(normalized, records, p.fixtures)
	records, result.Warnings = Reconcile(records, p.fixtures)
	result.Records = keepComplete(records)

	for _, w := range result.Warnings {
		logger.Warn("reconciliation", "detail", w)
	}
	if len(result.Records) == 0 {
		logger.Debug("no records extracted", "bytes", len(text))
		return nil, ErrNoRecords
	}

	logger.Debug("parse finished",
		"strategy", result.Strategy,
		"shipments", len(result.ShipmentIDs()),
		"records", len(result.Records))
	return result, nil
}

// ValidateInput rejects blank, oversized and non-UTF-8 input before any
// parsing work is done.
func ValidateInput(text string, maxBytes int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if maxBytes > 0 && len(text) > maxBytes {
		return eris.Wrapf(ErrInputTooLarge, "%d bytes exceeds the %d byte limit", len(text), maxBytes)
	}
	if !utf8.ValidString(text) {
		return ErrInvalidEncoding
	}
	return nil
}

func parseTableIfDetected(text string) []PackageRecord {
	if !IsTableFormat(text) {
		return nil
	}
	return ParseTable(text)
}

// keepComplete drops records missing a courier or tracking number.
func keepComplete(records []PackageRecord) []PackageRecord {
	out := records[:0]
	for _, rec := range records {
		if rec.Courier != "" && rec.TrackingNumber != "" {
			out = append(out, rec)
		}
	}
	return out
}
