package llm

import (
	"encoding/json"
	"strings"
)

// FieldType is the JSON type of a schema field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
)

// Field describes one nullable property of the target object
type Field struct {
	Name        string
	Type        FieldType
	Format      string // e.g. "date"
	Description string
}

// Schema describes a flat JSON object whose properties are all nullable
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// JSONSchema renders the schema in JSON Schema form. Every property is
// required and nullable, which is what strict structured-output modes expect.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		prop := map[string]any{
			"type":        []string{string(f.Type), "null"},
			"description": f.Description,
		}
		if f.Format != "" {
			prop["format"] = f.Format
		}
		props[f.Name] = prop
		required = append(required, f.Name)
	}
	out := map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	return out
}

// MarshalJSON encodes the JSON Schema form
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.JSONSchema())
}

// Describe renders the schema as indented JSON for embedding in prompts
func (s Schema) Describe() string {
	data, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// StripCodeFence removes a surrounding ```json ... ``` fence if present
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
