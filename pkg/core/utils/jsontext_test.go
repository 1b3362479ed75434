package utils

import (
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence same line", "```{\"a\":1}```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.in); got != tc.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractBalanced_ObjectInProse(t *testing.T) {
	text := `Here are the ratios you asked for: {"frng": 120.5, "bfr": -30} hope this helps!`
	got, ok := ExtractBalanced(text)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if got != `{"frng": 120.5, "bfr": -30}` {
		t.Errorf("unexpected extraction %q", got)
	}
}

func TestExtractBalanced_ArrayInProse(t *testing.T) {
	text := `Output follows [{"intitulé":"Capitaux propres","année":2023,"valeur":420000}] end`
	got, ok := ExtractBalanced(text)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if got[0] != '[' {
		t.Errorf("expected array extraction, got %q", got)
	}
}

func TestExtractBalanced_NoBraces(t *testing.T) {
	if _, ok := ExtractBalanced("the model refused to answer"); ok {
		t.Fatal("expected extraction to fail on brace-free text")
	}
}

func TestSmartParse_FencedEqualsUnfenced(t *testing.T) {
	var a, b map[string]interface{}
	canonicalA, err := SmartParse(`{"status":"success","data":{"x":1}}`, &a)
	if err != nil {
		t.Fatal(err)
	}
	canonicalB, err := SmartParse("```json\n{\"status\":\"success\",\"data\":{\"x\":1}}\n```", &b)
	if err != nil {
		t.Fatal(err)
	}
	if canonicalA != canonicalB {
		t.Errorf("fenced and unfenced inputs must parse identically: %q vs %q", canonicalA, canonicalB)
	}
}

func TestSmartParse_RepairsTrailingComma(t *testing.T) {
	var out map[string]interface{}
	if _, err := SmartParse(`{"a": 1, "b": 2,}`, &out); err != nil {
		t.Fatalf("expected repair to recover trailing comma, got %v", err)
	}
	if out["b"].(float64) != 2 {
		t.Errorf("unexpected decode %v", out)
	}
}

func TestSmartParse_FailsOnProse(t *testing.T) {
	var out map[string]interface{}
	if _, err := SmartParse("I cannot produce the requested analysis.", &out); err == nil {
		t.Fatal("expected failure on brace-free prose")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("short strings must pass through, got %q", got)
	}
}
