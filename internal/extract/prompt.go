package extract

import (
	"fmt"

	"github.com/ppiankov/covercheck/internal/llm"
)

// systemPrompt instructs the model how to fill FieldSchema
const systemPrompt = `You are an expert insurance document parser. Read the insurance document supplied by the user and extract these fields:

1. policy_number: the unique policy reference number or ID. Look for terms like "policy number", "reference number" or "policy ID". If it is not found, or the document says it is missing, blank or pending, return null.

2. vessel_name: the name of the vessel or ship being insured. Look for phrases like "vessel named", "vessel:" or "ship:". Return the name exactly as written.

3. policy_start_date: the policy effective or start date. It may be written as "November 1st, 2025", "Jan 1, 2026" or "2025-11-01". Convert it to ISO format (YYYY-MM-DD).

4. policy_end_date: the policy expiration or end date, converted to ISO format (YYYY-MM-DD).

5. insured_value: the total insured value, which may appear as "$5,000,000 USD" or "5 million dollars". Return only the integer value (for example 5000000). Keep a negative sign if the document states a negative or debit amount (for example -500).

Rules:
- Return null for any field that is not found or is stated as missing, blank or pending.
- Dates are always ISO format (YYYY-MM-DD).
- insured_value has no currency symbols, commas, decimals or words.
- Extract values exactly as they appear and do not guess.`

// FieldSchema is the object the model is asked to return
var FieldSchema = llm.Schema{
	Name:        "insurance_document",
	Description: "Key fields of a marine insurance document. Unknown fields are null.",
	Fields: []llm.Field{
		{Name: "policy_number", Type: llm.TypeString, Description: "The policy reference number or ID (e.g. 'HM-2025-10-A4B')"},
		{Name: "vessel_name", Type: llm.TypeString, Description: "The name of the vessel being insured"},
		{Name: "policy_start_date", Type: llm.TypeString, Format: "date", Description: "Policy start/effective date in ISO format YYYY-MM-DD"},
		{Name: "policy_end_date", Type: llm.TypeString, Format: "date", Description: "Policy end/expiration date in ISO format YYYY-MM-DD"},
		{Name: "insured_value", Type: llm.TypeInteger, Description: "Total insured value as an integer (no currency symbols or decimals)"},
	},
}

// buildPrompt wraps the document for the user turn
func buildPrompt(documentText string) string {
	return fmt.Sprintf("Document to parse:\n\n%s\n\nExtract the fields and return them as a JSON object.", documentText)
}
