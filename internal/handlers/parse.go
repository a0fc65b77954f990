package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"

	"shipment-parser/internal/cache"
	"shipment-parser/internal/export"
	"shipment-parser/internal/parser"
	"shipment-parser/internal/summary"
)

// bodyOverhead leaves room for JSON escaping around the pasted text.
const bodyOverhead = 4096

var errBadRequest = eris.New("invalid request body")

// ParseRequest is the JSON body of /api/parse and /api/export.
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResponse is the body of a successful /api/parse call.
type ParseResponse struct {
	RunID    string                 `json:"run_id"`
	Strategy string                 `json:"strategy"`
	Records  []parser.PackageRecord `json:"records"`
	Warnings []string               `json:"warnings,omitempty"`
	Summary  summary.Summary        `json:"summary"`
	Cached   bool                   `json:"cached"`
}

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ParseHandler runs the extraction pipeline for HTTP clients
type ParseHandler struct {
	parser   *parser.Parser
	cache    *cache.Manager
	maxBytes int
	logger   *slog.Logger
	now      func() time.Time
}

// NewParseHandler creates a new parse handler. cacheManager may be nil.
func NewParseHandler(p *parser.Parser, cacheManager *cache.Manager, maxBytes int, logger *slog.Logger) *ParseHandler {
	if maxBytes <= 0 {
		maxBytes = parser.DefaultMaxInputBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseHandler{
		parser:   p,
		cache:    cacheManager,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

// Parse handles POST /api/parse
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	result, cached, err := h.run(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ParseResponse{
		RunID:    result.RunID,
		Strategy: result.Strategy,
		Records:  result.Records,
		Warnings: result.Warnings,
		Summary:  summary.Summarize(result.Records),
		Cached:   cached,
	})
}

// Export handles POST /api/export
func (h *ParseHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, _, err := h.run(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, result.Records); err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := export.DefaultFilename(h.now())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// run reads the pasted text and parses it, consulting the cache first.
func (h *ParseHandler) run(w http.ResponseWriter, r *http.Request) (*parser.Result, bool, error) {
	text, err := h.readText(w, r)
	if err != nil {
		return nil, false, err
	}

	key := cache.Key(text)
	if h.cache != nil {
		if result, ok := h.cache.Get(key); ok {
			return result, true, nil
		}
	}

	result, err := h.parser.Parse(text)
	if err != nil {
		return nil, false, err
	}
	if h.cache != nil {
		h.cache.Set(key, result)
	}
	return result, false, nil
}

// readText accepts either a JSON ParseRequest or the raw text as the body.
func (h *ParseHandler) readText(w http.ResponseWriter, r *http.Request) (string, error) {
	body := http.MaxBytesReader(w, r.Body, int64(2*h.maxBytes+bodyOverhead))
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", eris.Wrapf(parser.ErrInputTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return "", eris.Wrap(errBadRequest, err.Error())
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return string(data), nil
	}

	var req ParseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", eris.Wrap(errBadRequest, err.Error())
	}
	return req.Text, nil
}

func (h *ParseHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	requestID := middleware.GetReqID(r.Context())

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "request_id", requestID, "error", eris.ToString(err, true))
	} else {
		h.logger.Warn("request rejected", "request_id", requestID, "status", status, "error", err.Error())
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error(), RequestID: requestID})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case eris.Is(err, parser.ErrNoRecords):
		return http.StatusUnprocessableEntity
	case eris.Is(err, parser.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case eris.Is(err, parser.ErrEmptyInput),
		eris.Is(err, parser.ErrInvalidEncoding),
		eris.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// contentDisposition names the attachment with an ASCII fallback and the
// UTF-8 file name.
func contentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="shipments.xlsx"; filename*=UTF-8''%s`, url.PathEscape(filename))
}
