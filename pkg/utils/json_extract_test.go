package utils

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"direct object", `{"a":1}`, `{"a":1}`},
		{"direct array", `[1,2,3]`, `[1,2,3]`},
		{
			"json fence",
			"Here you go:\n```json\n{\"a\": 1}\n```\nanything else?",
			`{"a": 1}`,
		},
		{
			"generic fence",
			"```\n{\"b\": 2}\n```",
			`{"b": 2}`,
		},
		{
			"object embedded in prose",
			`The result is {"c": 3} as requested.`,
			`{"c": 3}`,
		},
		{
			"unterminated fence cleanup",
			"```json\n{\"d\": 4}",
			`{"d": 4}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if string(got) != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractJSONFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plain prose", "no structured data here"},
		{"broken object", `{"a": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != nil {
				t.Errorf("ExtractJSON(%q) = %q, want nil", tt.input, got)
			}
		})
	}
}
