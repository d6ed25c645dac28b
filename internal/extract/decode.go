package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ppiankov/covercheck/internal/llm"
	"github.com/ppiankov/covercheck/internal/model"
)

// Decoded is a parsed extraction reply
type Decoded struct {
	Data model.ExtractedData

	// Warnings lists fields that were present but dropped, such as unparseable dates
	Warnings []string
}

// Decode parses a model reply into the field schema. The reply must be a
// single JSON object, optionally inside a code fence. Unknown keys are
// ignored. Wrong value types fail the whole reply with ErrUnavailable;
// a date string that is not YYYY-MM-DD becomes nil with a warning.
func Decode(content string) (*Decoded, error) {
	body := []byte(llm.StripCodeFence(content))
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("%w: reply is not a JSON object", ErrUnavailable)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrUnavailable, err)
	}

	out := &Decoded{}
	var err error

	if out.Data.PolicyNumber, err = decodeString(fields, "policy_number"); err != nil {
		return nil, err
	}
	if out.Data.VesselName, err = decodeString(fields, "vessel_name"); err != nil {
		return nil, err
	}
	if out.Data.PolicyStartDate, err = decodeDate(fields, "policy_start_date", &out.Warnings); err != nil {
		return nil, err
	}
	if out.Data.PolicyEndDate, err = decodeDate(fields, "policy_end_date", &out.Warnings); err != nil {
		return nil, err
	}
	if out.Data.InsuredValue, err = decodeInteger(fields, "insured_value"); err != nil {
		return nil, err
	}

	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeString(fields map[string]json.RawMessage, key string) (*string, error) {
	raw := fields[key]
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %s must be a string or null", ErrUnavailable, key)
	}
	return &s, nil
}

func decodeDate(fields map[string]json.RawMessage, key string, warnings *[]string) (*model.Date, error) {
	s, err := decodeString(fields, key)
	if err != nil || s == nil {
		return nil, err
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %q is not a YYYY-MM-DD date", key, *s))
		return nil, nil
	}
	return &d, nil
}

// decodeInteger accepts integer-valued JSON numbers, including forms like
// 5e6 or 5000000.0, and rejects strings and fractions
func decodeInteger(fields map[string]json.RawMessage, key string) (*int64, error) {
	raw := fields[key]
	if isNull(raw) {
		return nil, nil
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return nil, fmt.Errorf("%w: %s must be an integer or null", ErrUnavailable, key)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer or null", ErrUnavailable, key)
	}

	if v, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return &v, nil
	}

	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("%w: %s must be an integer or null", ErrUnavailable, key)
	}
	v := int64(f)
	return &v, nil
}
