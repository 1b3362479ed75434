package synthesis

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Report sections subject to empty-section pruning, in schema order.
var reportSections = []string{
	"executiveSummary",
	"profitAndLoss",
	"segmentPerformance",
	"geographicPerformance",
	"cashFlowHighlights",
	"forwardOutlook",
	"conferenceCallHighlights",
}

// FormatMonetary renders an absolute monetary value with the conventional
// magnitude suffix. Ratios, percentages and per-share amounts must not be
// passed through here.
func FormatMonetary(value float64, currency string) string {
	abs := math.Abs(value)
	sign := ""
	if value < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%s%s%sT", sign, currency, trimZeros(abs/1e12))
	case abs >= 1e9:
		return fmt.Sprintf("%s%s%sB", sign, currency, trimZeros(abs/1e9))
	case abs >= 1e6:
		return fmt.Sprintf("%s%s%sM", sign, currency, trimZeros(abs/1e6))
	default:
		return fmt.Sprintf("%s%s%s", sign, currency, trimZeros(abs))
	}
}

func trimZeros(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// rawAmount matches a currency amount in model text. Group 4 captures an
// existing magnitude suffix so already-scaled values pass through untouched.
var rawAmount = regexp.MustCompile(`(-?)([$€£])([0-9][0-9,]*(?:\.[0-9]+)?)([KMBT]?)`)

// NormalizeMonetary rewrites unscaled currency amounts inside the report
// sections to the conventional magnitude suffix. The model is asked to scale
// its figures; when it does not, this pass enforces it. Percentages, ratios
// and per-share fields keep their raw rendering.
func NormalizeMonetary(doc map[string]interface{}) {
	for _, key := range reportSections {
		if v, ok := doc[key]; ok {
			doc[key] = normalizeValue(key, v)
		}
	}
}

func normalizeValue(key string, v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = normalizeValue(k, inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = normalizeValue(key, inner)
		}
		return t
	case string:
		if exemptMonetaryKey(key) {
			return t
		}
		return rescaleAmounts(t)
	default:
		return v
	}
}

func exemptMonetaryKey(key string) bool {
	k := strings.ToLower(key)
	for _, marker := range []string{"pershare", "per_share", "eps", "ratio", "margin", "percent"} {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}

func rescaleAmounts(s string) string {
	return rawAmount.ReplaceAllStringFunc(s, func(m string) string {
		parts := rawAmount.FindStringSubmatch(m)
		if parts[4] != "" {
			return m
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(parts[3], ",", ""), 64)
		if err != nil || value < 1e6 {
			return m
		}
		if parts[1] == "-" {
			value = -value
		}
		return FormatMonetary(value, parts[2])
	})
}

// NormalizeSections prunes empty report sections in place and resolves the
// segment/geographic exclusivity: when the model emitted both dimensions,
// segmentPerformance wins.
func NormalizeSections(doc map[string]interface{}) {
	for _, key := range reportSections {
		v, ok := doc[key]
		if ok && isEmptySection(v) {
			delete(doc, key)
		}
	}
	if _, seg := doc["segmentPerformance"]; seg {
		delete(doc, "geographicPerformance")
	}
}

func isEmptySection(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	default:
		return false
	}
}

func canonicalJSON(doc map[string]interface{}) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("re-serializing synthesis document: %w", err)
	}
	return string(raw), nil
}
