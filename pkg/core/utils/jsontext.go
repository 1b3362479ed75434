// Package utils holds the JSON salvage helpers shared by every stage
// boundary: markdown fence stripping, balanced-bracket extraction, and a
// lenient parse cascade for LLM output.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripCodeFences removes a single leading/trailing markdown code fence, with
// or without a language tag. Text without fences is returned trimmed.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag up to the first newline, if any.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{}[]\",:") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractBalanced returns the substring between the first opening brace or
// bracket and its matching last closer, provided that substring is valid
// JSON. ok is false when no parseable balanced region exists.
func ExtractBalanced(text string) (string, bool) {
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(text, pair[0])
		end := strings.LastIndexByte(text, pair[1])
		if start == -1 || end == -1 || end <= start {
			continue
		}
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
		// The first/last heuristic can overshoot when prose contains a
		// stray closer; retry with a repaired candidate.
		if repaired, err := jsonrepair.RepairJSON(candidate); err == nil && json.Valid([]byte(repaired)) {
			return repaired, true
		}
	}
	return "", false
}

// RepairJSON fixes common LLM output defects (single quotes, trailing commas,
// unclosed containers) via json-repair.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// SmartParse tries progressively more lenient strategies to decode input into
// schema: strict JSON, fence-stripped, balanced-region extraction, repair,
// then Hjson. It returns the canonical JSON text that decoded successfully.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	stripped := StripCodeFences(input)
	if err := json.Unmarshal([]byte(stripped), schema); err == nil {
		return stripped, nil
	}

	if candidate, ok := ExtractBalanced(stripped); ok {
		if err := json.Unmarshal([]byte(candidate), schema); err == nil {
			return candidate, nil
		}
	}

	if repaired, err := RepairJSON(stripped); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(stripped), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(normalized, schema); err == nil {
				return string(normalized), nil
			}
		}
	}

	return "", fmt.Errorf("no parsing strategy produced valid JSON")
}

// Truncate caps s at n bytes for diagnostics payloads, appending an ellipsis
// marker when anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
