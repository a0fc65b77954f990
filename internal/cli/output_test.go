package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-parser/internal/parser"
	"shipment-parser/internal/summary"
)

// captureOutput runs fn with os.Stdout and os.Stderr redirected.
func captureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout, os.Stderr = wOut, wErr

	fn()

	wOut.Close()
	wErr.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)
	return outBuf.String(), errBuf.String()
}

func testResult() *parser.Result {
	return &parser.Result{
		RunID:    "run-1",
		Strategy: "section",
		Records: []parser.PackageRecord{
			{
				ShipmentID:        "7314270806",
				PackageCountLabel: "2 個包裹",
				Status:            "2025-04-17 12:36:00 已送達",
				Courier:           "申通快遞",
				TrackingNumber:    "773348737609079",
				Weight:            "2.75KG",
				ProductName:       "新款USB水晶盐石加湿器家用办公两用香薰机加湿器爆款加湿器现发",
			},
			{
				ShipmentID:        "7314270806",
				PackageCountLabel: "2 個包裹",
				Courier:           "中通快遞",
				TrackingNumber:    "78896609460309",
				Weight:            "0.3KG",
			},
		},
	}
}

func TestOutputFormatterPrintRecords(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		quiet    bool
		contains []string
		excludes []string
	}{
		{
			name:     "table format",
			format:   "table",
			contains: []string{"新竹包裹編號", "單號", "7314270806", "申通快遞", "773348737609079", "2.75KG", "..."},
		},
		{
			name:     "json format",
			format:   "json",
			contains: []string{`"run_id": "run-1"`, `"tracking_number": "773348737609079"`, `"packages": 2`},
		},
		{
			name:     "quiet mode",
			format:   "table",
			quiet:    true,
			contains: []string{"773348737609079\n78896609460309\n"},
			excludes: []string{"新竹包裹編號"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			stdout, _ := captureOutput(t, func() {
				err = NewOutputFormatterWithColor(tt.format, tt.quiet, true).PrintRecords(testResult())
			})
			require.NoError(t, err)

			for _, expected := range tt.contains {
				assert.Contains(t, stdout, expected)
			}
			for _, unexpected := range tt.excludes {
				assert.NotContains(t, stdout, unexpected)
			}
		})
	}
}

func TestOutputFormatterPrintRecords_JSONDocument(t *testing.T) {
	stdout, _ := captureOutput(t, func() {
		require.NoError(t, NewOutputFormatter("json", false).PrintRecords(testResult()))
	})

	var doc RecordsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "section", doc.Strategy)
	assert.Len(t, doc.Records, 2)
	assert.Equal(t, 1, doc.Summary.Shipments)
}

func TestOutputFormatterPrintRecords_Errors(t *testing.T) {
	err := NewOutputFormatter("xml", false).PrintRecords(testResult())
	assert.EqualError(t, err, "unsupported format: xml")

	stdout, _ := captureOutput(t, func() {
		require.NoError(t, NewOutputFormatter("table", false).PrintRecords(&parser.Result{}))
	})
	assert.Equal(t, "No records found.\n", stdout)
}

func TestOutputFormatterPrintSummary(t *testing.T) {
	t.Run("weights readable", func(t *testing.T) {
		stdout, stderr := captureOutput(t, func() {
			NewOutputFormatter("table", false).PrintSummary(summary.Summary{Shipments: 2, Packages: 4, TotalWeight: 8.14})
		})
		assert.Contains(t, stdout, "✓ 成功解析 2 個新竹包裹，共 4 個小包裹")
		assert.Contains(t, stdout, "ℹ 總重量: 8.14 KG")
		assert.Empty(t, stderr)
	})

	t.Run("malformed weight", func(t *testing.T) {
		stdout, stderr := captureOutput(t, func() {
			NewOutputFormatter("table", false).PrintSummary(summary.Summary{Shipments: 1, Packages: 2, MalformedWeights: []string{"BAD0001"}})
		})
		assert.NotContains(t, stdout, "總重量")
		assert.Contains(t, stderr, "⚠ 無法計算總重量，部分重量數據格式異常: BAD0001")
	})

	t.Run("json and quiet are silent", func(t *testing.T) {
		stdout, stderr := captureOutput(t, func() {
			NewOutputFormatter("json", false).PrintSummary(summary.Summary{Shipments: 1})
			NewOutputFormatter("table", true).PrintSummary(summary.Summary{Shipments: 1})
		})
		assert.Empty(t, stdout)
		assert.Empty(t, stderr)
	})
}

func TestOutputFormatterMessages(t *testing.T) {
	tests := []struct {
		name   string
		quiet  bool
		stdout string
		stderr string
	}{
		{
			name:   "normal mode",
			stdout: "✓ done\nℹ note\n",
			stderr: "⚠ careful\n✗ Error: boom\n",
		},
		{
			name:  "quiet mode",
			quiet: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := captureOutput(t, func() {
				f := NewOutputFormatter("table", tt.quiet)
				f.PrintSuccess("done")
				f.PrintInfo("note")
				f.PrintWarning("careful")
				f.PrintError(errors.New("boom"))
			})
			assert.Equal(t, tt.stdout, stdout)
			assert.Equal(t, tt.stderr, stderr)
		})
	}
}

func TestOutputFormatterPrintRaw(t *testing.T) {
	stdout, _ := captureOutput(t, func() {
		NewOutputFormatterWithColor("table", false, true).PrintRaw("新竹7314270806")
	})
	assert.True(t, strings.HasPrefix(stdout, "原始資料\n新竹7314270806\n"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxWidth int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		// Wide characters count two columns each.
		{"新款水晶盐石加湿器", 10, "新款水..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.maxWidth))
		})
	}
}
