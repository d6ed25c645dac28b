package model

// ExtractedData is the structured form of an insurance document.
// Every field is independently optional; nil means the extraction
// service did not find (or was not confident about) the value.
type ExtractedData struct {
	PolicyNumber    *string `json:"policy_number"`
	VesselName      *string `json:"vessel_name"`
	PolicyStartDate *Date   `json:"policy_start_date"`
	PolicyEndDate   *Date   `json:"policy_end_date"`
	InsuredValue    *int64  `json:"insured_value"`
}

// Clone returns a deep copy so callers never share field storage
func (e ExtractedData) Clone() ExtractedData {
	return ExtractedData{
		PolicyNumber:    clonePtr(e.PolicyNumber),
		VesselName:      clonePtr(e.VesselName),
		PolicyStartDate: clonePtr(e.PolicyStartDate),
		PolicyEndDate:   clonePtr(e.PolicyEndDate),
		InsuredValue:    clonePtr(e.InsuredValue),
	}
}

// IsEmpty reports whether no field was extracted
func (e ExtractedData) IsEmpty() bool {
	return e.PolicyNumber == nil && e.VesselName == nil &&
		e.PolicyStartDate == nil && e.PolicyEndDate == nil &&
		e.InsuredValue == nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 { return &v }

// DatePtr returns a pointer to d
func DatePtr(d Date) *Date { return &d }
