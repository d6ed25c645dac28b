// Package api serves the validation pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ppiankov/covercheck/internal/extract"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/pipeline"
	"github.com/ppiankov/covercheck/internal/vessels"
)

// ServiceName is reported by the health endpoints
const ServiceName = "covercheck"

// Error codes returned in the "code" field of error bodies
const (
	CodeInvalidRequest        = "invalid_request"
	CodePayloadTooLarge       = "payload_too_large"
	CodeExtractionUnavailable = "extraction_unavailable"
	CodeServiceUnavailable    = "service_unavailable"
	CodeInternal              = "internal_error"
)

// Validator is the pipeline surface the handlers need
type Validator interface {
	Validate(ctx context.Context, text string) (*model.ValidationReport, error)
	Ready() (extractor bool, vesselList bool)
}

// Handler holds the HTTP endpoints
type Handler struct {
	Validator    Validator
	Version      string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// ValidateRequest is the body of POST /validate
type ValidateRequest struct {
	DocumentText *string `json:"document_text"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the body of GET / and GET /healthz
type HealthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Validate handles POST /validate
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if h.Validator == nil {
		writeError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "validation service not configured")
		return
	}

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid json: document_text must be a string")
		return
	}
	if req.DocumentText == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, pipeline.ErrEmptyDocument.Error())
		return
	}

	rep, err := h.Validator.Validate(r.Context(), *req.DocumentText)
	if err != nil {
		status, code, msg := statusFor(err)
		h.logger().Warn("validation failed",
			"request_id", RequestIDFrom(r.Context()),
			"status", status,
			"error", err,
		)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// Health handles GET / and GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "running"
	if h.Validator == nil {
		status = "degraded"
	} else if extractor, list := h.Validator.Ready(); !extractor || !list {
		status = "degraded"
	}

	version := h.Version
	if version == "" {
		version = "dev"
	}
	writeJSON(w, http.StatusOK, HealthResponse{Service: ServiceName, Status: status, Version: version})
}

// statusFor maps pipeline errors to an HTTP status, an error code and a
// message safe to show callers. Provider error text never reaches the client.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, pipeline.ErrEmptyDocument):
		return http.StatusBadRequest, CodeInvalidRequest, pipeline.ErrEmptyDocument.Error()
	case errors.Is(err, extract.ErrNotConfigured):
		return http.StatusServiceUnavailable, CodeServiceUnavailable, "extraction service not configured"
	case errors.Is(err, vessels.ErrNotFound), errors.Is(err, vessels.ErrInvalid):
		return http.StatusServiceUnavailable, CodeServiceUnavailable, "vessel reference list not available"
	case errors.Is(err, extract.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, CodeExtractionUnavailable, "extraction service could not process the document"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal error"
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
