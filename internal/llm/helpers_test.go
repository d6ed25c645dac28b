package llm

var testSchema = Schema{
	Name:        "insurance_document",
	Description: "Key fields of a marine insurance document",
	Fields: []Field{
		{Name: "policy_number", Type: TypeString, Description: "Policy reference number"},
		{Name: "policy_start_date", Type: TypeString, Format: "date", Description: "Start date, YYYY-MM-DD"},
		{Name: "insured_value", Type: TypeInteger, Description: "Total insured value"},
	},
}

const testReply = `{"policy_number":"HM-2025-10-A4B","policy_start_date":"2025-11-01","insured_value":5000000}`

func testRequest() ExtractRequest {
	return ExtractRequest{
		System: "You extract fields from insurance documents.",
		Prompt: "Policy HM-2025-10-A4B starts November 1st, 2025 and covers $5,000,000.",
		Schema: testSchema,
	}
}
