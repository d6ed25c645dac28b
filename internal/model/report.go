package model

// Status is the binary outcome of a rule
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// RuleResult is the verdict of one validation rule
type RuleResult struct {
	Rule    string `json:"rule"`    // Rule name, e.g. "Date Consistency"
	Status  Status `json:"status"`  // PASS or FAIL
	Message string `json:"message"` // Human-readable explanation
}

// Passed reports whether the verdict is PASS
func (r RuleResult) Passed() bool {
	return r.Status == StatusPass
}

// ValidationReport pairs the extracted data with every rule verdict,
// in rule registration order
type ValidationReport struct {
	ExtractedData     ExtractedData `json:"extracted_data"`
	ValidationResults []RuleResult  `json:"validation_results"`
}

// Passed reports whether every rule passed
func (r ValidationReport) Passed() bool {
	for _, res := range r.ValidationResults {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Failures returns the failing verdicts in order
func (r ValidationReport) Failures() []RuleResult {
	var failed []RuleResult
	for _, res := range r.ValidationResults {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}
