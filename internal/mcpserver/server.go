// Package mcpserver exposes document validation as a Model Context Protocol tool.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/covercheck/internal/extract"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/pipeline"
	"github.com/ppiankov/covercheck/internal/vessels"
)

var (
	// ErrMissingValidator is returned when no validator is provided
	ErrMissingValidator = errors.New("mcp: validator is required")

	// ErrInternal replaces any validation failure without a known cause
	ErrInternal = errors.New("internal error")
)

// Validator validates one document's text
type Validator interface {
	Validate(ctx context.Context, text string) (*model.ValidationReport, error)
}

// Server is the covercheck MCP server
type Server struct {
	validator Validator
	server    *mcp.Server
}

// NewServer creates an MCP server that answers with validator
func NewServer(validator Validator, version string) (*Server, error) {
	if validator == nil {
		return nil, ErrMissingValidator
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		validator: validator,
		server:    mcp.NewServer(&mcp.Implementation{Name: "covercheck", Version: version}, nil),
	}
	mcp.AddTool(s.server, ValidateTool, s.handleValidate)
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// ValidateTool describes the validate_insurance_document tool
var ValidateTool = &mcp.Tool{
	Name: "validate_insurance_document",
	Description: "Extract the key fields of a marine insurance document (policy number, vessel name, " +
		"policy start and end dates, insured value) and check them against the business rules: " +
		"Date Consistency, Value Check, Vessel Name Match and Completeness Check. " +
		"Returns the extracted fields and one PASS/FAIL verdict per rule.",
	InputSchema: map[string]any{
		"type":     "object",
		"required": []string{"document_text"},
		"properties": map[string]any{
			"document_text": map[string]any{
				"type":        "string",
				"description": "Full text of the insurance document",
			},
		},
	},
}

// ValidateInput is the input of validate_insurance_document
type ValidateInput struct {
	DocumentText string `json:"document_text"`
}

// Fields is the extracted schema with dates as YYYY-MM-DD strings.
// Absent fields are null.
type Fields struct {
	PolicyNumber    *string `json:"policy_number"`
	VesselName      *string `json:"vessel_name"`
	PolicyStartDate *string `json:"policy_start_date"`
	PolicyEndDate   *string `json:"policy_end_date"`
	InsuredValue    *int64  `json:"insured_value"`
}

// Verdict is one rule outcome
type Verdict struct {
	Rule    string `json:"rule"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ValidateOutput is the output of validate_insurance_document
type ValidateOutput struct {
	ExtractedData     Fields    `json:"extracted_data"`
	ValidationResults []Verdict `json:"validation_results"`
	Passed            bool      `json:"passed"`
}

func (s *Server) handleValidate(ctx context.Context, _ *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
	if strings.TrimSpace(input.DocumentText) == "" {
		return nil, ValidateOutput{}, fmt.Errorf("document_text is required")
	}

	rep, err := s.validator.Validate(ctx, input.DocumentText)
	if err != nil {
		return nil, ValidateOutput{}, publicError(err)
	}
	return nil, toOutput(rep), nil
}

// publicError reduces err to the sentinel naming its cause. Provider
// messages never reach the client.
func publicError(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrEmptyDocument):
		return pipeline.ErrEmptyDocument
	case errors.Is(err, extract.ErrNotConfigured):
		return extract.ErrNotConfigured
	case errors.Is(err, vessels.ErrNotFound):
		return vessels.ErrNotFound
	case errors.Is(err, vessels.ErrInvalid):
		return vessels.ErrInvalid
	case errors.Is(err, extract.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return extract.ErrUnavailable
	default:
		return ErrInternal
	}
}

func toOutput(rep *model.ValidationReport) ValidateOutput {
	d := rep.ExtractedData.Clone()
	out := ValidateOutput{
		ExtractedData: Fields{
			PolicyNumber:    d.PolicyNumber,
			VesselName:      d.VesselName,
			PolicyStartDate: dateString(d.PolicyStartDate),
			PolicyEndDate:   dateString(d.PolicyEndDate),
			InsuredValue:    d.InsuredValue,
		},
		ValidationResults: make([]Verdict, len(rep.ValidationResults)),
		Passed:            rep.Passed(),
	}
	for i, r := range rep.ValidationResults {
		out.ValidationResults[i] = Verdict{Rule: r.Rule, Status: string(r.Status), Message: r.Message}
	}
	return out
}

func dateString(d *model.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
