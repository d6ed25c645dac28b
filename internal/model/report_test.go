package model

import "testing"

func TestValidationReport_PassedAndFailures(t *testing.T) {
	report := ValidationReport{
		ValidationResults: []RuleResult{
			{Rule: "Date Consistency", Status: StatusPass},
			{Rule: "Value Check", Status: StatusFail, Message: "Insured value is missing."},
			{Rule: "Vessel Name Match", Status: StatusPass},
			{Rule: "Completeness Check", Status: StatusFail},
		},
	}

	if report.Passed() {
		t.Error("expected report with failures not to pass")
	}

	failures := report.Failures()
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
	if failures[0].Rule != "Value Check" || failures[1].Rule != "Completeness Check" {
		t.Errorf("failures out of order: %+v", failures)
	}

	allPass := ValidationReport{ValidationResults: []RuleResult{{Rule: "Value Check", Status: StatusPass}}}
	if !allPass.Passed() {
		t.Error("expected all-pass report to pass")
	}
}
