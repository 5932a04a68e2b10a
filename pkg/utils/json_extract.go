package utils

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonBlockRe = regexp.MustCompile("```json\\s*\\n([\\s\\S]*?)\\n```")
	codeBlockRe = regexp.MustCompile("```\\s*\\n([\\s\\S]*?)\\n```")
	jsonSpanRe  = regexp.MustCompile(`\{[\s\S]*\}`)
	openFenceRe = regexp.MustCompile("(?i)^```(json)?\\s*")
	endFenceRe  = regexp.MustCompile("```\\s*$")
)

// ExtractJSON pulls a JSON value out of a model completion that may wrap
// it in markdown fences or surrounding prose. Returns nil if no valid
// JSON could be recovered.
func ExtractJSON(content string) json.RawMessage {
	if content == "" {
		return nil
	}

	if raw := tryParse(content); raw != nil {
		return raw
	}

	if m := jsonBlockRe.FindStringSubmatch(content); m != nil {
		if raw := tryParse(m[1]); raw != nil {
			return raw
		}
	}

	if m := codeBlockRe.FindStringSubmatch(content); m != nil {
		if raw := tryParse(m[1]); raw != nil {
			return raw
		}
	}

	if m := jsonSpanRe.FindString(content); m != "" {
		if raw := tryParse(m); raw != nil {
			return raw
		}
	}

	cleaned := strings.TrimSpace(content)
	cleaned = openFenceRe.ReplaceAllString(cleaned, "")
	cleaned = endFenceRe.ReplaceAllString(cleaned, "")
	return tryParse(cleaned)
}

func tryParse(s string) json.RawMessage {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
