package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeAnalysis struct {
	generateAnalysis func(ctx context.Context, prompt, system string) (string, error)
}

func (f *fakeAnalysis) GenerateAnalysis(ctx context.Context, prompt, system string) (string, error) {
	return f.generateAnalysis(ctx, prompt, system)
}

func TestSynthesize_SolvencyDocument(t *testing.T) {
	answer := `{
	  "companyName": "ACME SARL",
	  "annualRent": 24000,
	  "annee_n": 2023,
	  "annee_n_moins_1": 2022,
	  "ratios": {"structure_financiere": {}},
	  "chiffres_cles": {"chiffre_affaires_n": 1000000},
	  "analyse_financiere": "Analyse détaillée de la solvabilité locative."
	}`
	s := NewSynthesizer(&fakeAnalysis{
		generateAnalysis: func(ctx context.Context, prompt, system string) (string, error) {
			return "```json\n" + answer + "\n```", nil
		},
	})
	res, err := s.Synthesize(context.Background(), Input{
		CompanyName: "ACME SARL",
		AnnualRent:  24000,
		RatiosJSON:  `{"ratios":{}}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Doc["analyse_financiere"] == "" {
		t.Error("narrative missing")
	}
	if !strings.HasPrefix(res.Raw, "{") {
		t.Errorf("canonical JSON expected, got %q", res.Raw[:20])
	}
}

func TestSynthesize_PromptCarriesRatiosAndSupplemental(t *testing.T) {
	var seen string
	s := NewSynthesizer(&fakeAnalysis{
		generateAnalysis: func(ctx context.Context, prompt, system string) (string, error) {
			seen = prompt
			return `{"companyName":"ACME"}`, nil
		},
	})
	_, err := s.Synthesize(context.Background(), Input{
		CompanyName:  "ACME",
		AnnualRent:   18000,
		RatiosJSON:   `{"ratios":{"frng":100}}`,
		Supplemental: "Procédure collective ouverte en 2024.",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"frng":100`, "Procédure collective", "18000"} {
		if !strings.Contains(seen, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSynthesize_SupplementalOmittedWhenEmpty(t *testing.T) {
	var seen string
	s := NewSynthesizer(&fakeAnalysis{
		generateAnalysis: func(ctx context.Context, prompt, system string) (string, error) {
			seen = prompt
			return `{"companyName":"ACME"}`, nil
		},
	})
	if _, err := s.Synthesize(context.Background(), Input{CompanyName: "ACME", RatiosJSON: "{}"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(seen, "Informations publiques complémentaires") {
		t.Error("empty supplemental must not render its prompt block")
	}
}

func TestSynthesize_MalformedOutput(t *testing.T) {
	s := NewSynthesizer(&fakeAnalysis{
		generateAnalysis: func(ctx context.Context, prompt, system string) (string, error) {
			return "je refuse de produire du JSON", nil
		},
	})
	_, err := s.Synthesize(context.Background(), Input{CompanyName: "ACME", RatiosJSON: "{}"})
	var malformed *MalformedJSONError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedJSONError, got %v", err)
	}
}

func TestSynthesize_ReportVariantPrunesSections(t *testing.T) {
	answer := `{
	  "companyName": "ACME Corp",
	  "executiveSummary": "Solid quarter.",
	  "profitAndLoss": [],
	  "segmentPerformance": [{"segment": "Cloud"}],
	  "geographicPerformance": [{"region": "EMEA"}],
	  "forwardOutlook": ""
	}`
	s := NewSynthesizer(&fakeAnalysis{
		generateAnalysis: func(ctx context.Context, prompt, system string) (string, error) {
			return answer, nil
		},
	})
	s.Variant = VariantReportEN
	res, err := s.Synthesize(context.Background(), Input{CompanyName: "ACME Corp", RatiosJSON: "{}"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Doc["profitAndLoss"]; ok {
		t.Error("empty array section must be pruned")
	}
	if _, ok := res.Doc["forwardOutlook"]; ok {
		t.Error("empty string section must be pruned")
	}
	if _, ok := res.Doc["geographicPerformance"]; ok {
		t.Error("segment dimension must win over geographic")
	}
	if _, ok := res.Doc["segmentPerformance"]; !ok {
		t.Error("segment section must survive")
	}
}

func TestSynthesize_ReportVariantRescalesMonetaryValues(t *testing.T) {
	answer := `{
	  "companyName": "ACME Corp",
	  "executiveSummary": "Revenue reached $1500000000 this quarter.",
	  "profitAndLoss": [
	    {"metric": "Revenue", "currentValue": "$1500000000", "priorValue": "$1.2B"},
	    {"metric": "EPS", "epsValue": "$1250000"}
	  ],
	  "cashFlowHighlights": "Free cash flow of $320,000,000; margin of 21%."
	}`
	s := NewSynthesizer(&fakeAnalysis{
		generateAnalysis: func(ctx context.Context, prompt, system string) (string, error) {
			return answer, nil
		},
	})
	s.Variant = VariantReportEN
	res, err := s.Synthesize(context.Background(), Input{CompanyName: "ACME Corp", RatiosJSON: "{}"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(res.Raw, "$1500000000") {
		t.Errorf("unscaled value must be rewritten: %s", res.Raw)
	}
	row := res.Doc["profitAndLoss"].([]interface{})[0].(map[string]interface{})
	if row["currentValue"] != "$1.5B" {
		t.Errorf("currentValue = %v, want $1.5B", row["currentValue"])
	}
	if row["priorValue"] != "$1.2B" {
		t.Errorf("already-scaled value must pass through, got %v", row["priorValue"])
	}
	eps := res.Doc["profitAndLoss"].([]interface{})[1].(map[string]interface{})
	if eps["epsValue"] != "$1250000" {
		t.Errorf("per-share field must keep its raw rendering, got %v", eps["epsValue"])
	}
	if !strings.Contains(res.Doc["executiveSummary"].(string), "$1.5B") {
		t.Errorf("amounts embedded in prose must rescale: %v", res.Doc["executiveSummary"])
	}
	if res.Doc["cashFlowHighlights"] != "Free cash flow of $320M; margin of 21%." {
		t.Errorf("cashFlowHighlights = %v", res.Doc["cashFlowHighlights"])
	}
}

func TestNormalizeMonetary(t *testing.T) {
	doc := map[string]interface{}{
		"forwardOutlook": "Guidance raised to $2,100,000,000 from $1.9B.",
		"segmentPerformance": []interface{}{
			map[string]interface{}{
				"segment":         "Cloud",
				"revenue":         "€45600000000",
				"operatingMargin": "$5000000",
			},
		},
		"analyse_financiere": "$900000000 hors sections rapport, inchangé.",
	}
	NormalizeMonetary(doc)

	if doc["forwardOutlook"] != "Guidance raised to $2.1B from $1.9B." {
		t.Errorf("forwardOutlook = %v", doc["forwardOutlook"])
	}
	seg := doc["segmentPerformance"].([]interface{})[0].(map[string]interface{})
	if seg["revenue"] != "€45.6B" {
		t.Errorf("revenue = %v", seg["revenue"])
	}
	if seg["operatingMargin"] != "$5000000" {
		t.Errorf("margin fields are exempt, got %v", seg["operatingMargin"])
	}
	if doc["analyse_financiere"] != "$900000000 hors sections rapport, inchangé." {
		t.Errorf("non-report sections must not be touched: %v", doc["analyse_financiere"])
	}
}

func TestFormatMonetary(t *testing.T) {
	cases := []struct {
		in       float64
		currency string
		want     string
	}{
		{1_234_000_000_000, "$", "$1.23T"},
		{45_600_000_000, "$", "$45.6B"},
		{12_500_000, "€", "€12.5M"},
		{950_000, "€", "€950000"},
		{-2_000_000_000, "$", "-$2B"},
	}
	for _, tc := range cases {
		if got := FormatMonetary(tc.in, tc.currency); got != tc.want {
			t.Errorf("FormatMonetary(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
