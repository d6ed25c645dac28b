package rules

import (
	"fmt"
	"strings"

	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/vessels"
)

// Rule names, as reported in validation results
const (
	NameDateConsistency   = "Date Consistency"
	NameValueCheck        = "Value Check"
	NameVesselNameMatch   = "Vessel Name Match"
	NameCompletenessCheck = "Completeness Check"
)

// Rule is one independent business check over extracted data
type Rule interface {
	Name() string
	Evaluate(data model.ExtractedData) model.RuleResult
}

// RuleFunc adapts a pure function to the Rule interface
type RuleFunc struct {
	RuleName string
	Fn       func(model.ExtractedData) model.RuleResult
}

// Name returns the rule name
func (r RuleFunc) Name() string { return r.RuleName }

// Evaluate runs the rule function
func (r RuleFunc) Evaluate(data model.ExtractedData) model.RuleResult { return r.Fn(data) }

func pass(rule, msg string) model.RuleResult {
	return model.RuleResult{Rule: rule, Status: model.StatusPass, Message: msg}
}

func fail(rule, msg string) model.RuleResult {
	return model.RuleResult{Rule: rule, Status: model.StatusFail, Message: msg}
}

// DateConsistency passes when both dates are present and the end date is
// strictly after the start date
func DateConsistency() Rule {
	return RuleFunc{RuleName: NameDateConsistency, Fn: CheckDates}
}

// CheckDates implements the date consistency rule
func CheckDates(data model.ExtractedData) model.RuleResult {
	start, end := data.PolicyStartDate, data.PolicyEndDate
	if start == nil || end == nil {
		return fail(NameDateConsistency, "Cannot determine date consistency: both start and end dates must be present.")
	}
	if end.After(*start) {
		return pass(NameDateConsistency, "Policy end date is after start date.")
	}
	return fail(NameDateConsistency, fmt.Sprintf("Policy end date (%s) must be after the start date (%s).", end, start))
}

// ValueCheck passes when the insured value is present and positive
func ValueCheck() Rule {
	return RuleFunc{RuleName: NameValueCheck, Fn: CheckValue}
}

// CheckValue implements the insured value rule
func CheckValue(data model.ExtractedData) model.RuleResult {
	if data.InsuredValue == nil {
		return fail(NameValueCheck, "Insured value is missing.")
	}
	if *data.InsuredValue > 0 {
		return pass(NameValueCheck, "Insured value is valid.")
	}
	return fail(NameValueCheck, "Insured value must be a positive number.")
}

// VesselNameMatch passes when the vessel name is on the approved list
func VesselNameMatch(list *vessels.List) Rule {
	return RuleFunc{
		RuleName: NameVesselNameMatch,
		Fn: func(data model.ExtractedData) model.RuleResult {
			return CheckVessel(data, list)
		},
	}
}

// CheckVessel implements the vessel name rule against list
func CheckVessel(data model.ExtractedData, list *vessels.List) model.RuleResult {
	if data.VesselName == nil || strings.TrimSpace(*data.VesselName) == "" {
		return fail(NameVesselNameMatch, "Vessel name is missing.")
	}
	name := *data.VesselName
	if list.Contains(name) {
		return pass(NameVesselNameMatch, fmt.Sprintf("Vessel '%s' is on the approved list.", name))
	}
	return fail(NameVesselNameMatch, fmt.Sprintf("Vessel '%s' is not on the approved list.", name))
}

// CompletenessCheck passes when a non-blank policy number is present
func CompletenessCheck() Rule {
	return RuleFunc{RuleName: NameCompletenessCheck, Fn: CheckPolicyNumber}
}

// CheckPolicyNumber implements the completeness rule
func CheckPolicyNumber(data model.ExtractedData) model.RuleResult {
	if data.PolicyNumber == nil || strings.TrimSpace(*data.PolicyNumber) == "" {
		return fail(NameCompletenessCheck, "Policy number is missing.")
	}
	return pass(NameCompletenessCheck, "Policy number is present.")
}
