// Package report assembles and renders validation reports.
package report

import "github.com/ppiankov/covercheck/internal/model"

// Build pairs the extracted data with the rule verdicts. Both inputs are
// copied; a nil data pointer yields an all-null schema.
func Build(data *model.ExtractedData, results []model.RuleResult) *model.ValidationReport {
	var extracted model.ExtractedData
	if data != nil {
		extracted = data.Clone()
	}

	verdicts := make([]model.RuleResult, len(results))
	copy(verdicts, results)

	return &model.ValidationReport{
		ExtractedData:     extracted,
		ValidationResults: verdicts,
	}
}
