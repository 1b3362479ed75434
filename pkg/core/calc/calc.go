// Package calc holds the deterministic arithmetic the pipeline does locally:
// variation rates recomputed from the extracted line items, used to
// cross-check the model-computed evolution ratios.
package calc

import (
	"fmt"
	"math"

	"financial_insights/pkg/core/extract"
	"financial_insights/pkg/core/ratio"
)

// DefaultTolerance is the accepted absolute gap, in percentage points,
// between a model-computed variation rate and the local recomputation.
const DefaultTolerance = 0.05

// Round rounds v half-away-from-zero to precision decimals.
func Round(v float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(v*pow) / pow
}

// VariationPct computes the year-over-year variation in percent, rounded to
// two decimals. ok is false when the prior value is zero.
func VariationPct(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}
	return Round((current-prior)/prior*100, 2), true
}

// VerificationResult reports divergences between model output and the local
// recomputation. Divergences are warnings, never failures: the model sees the
// full document, the local check only the extracted items.
type VerificationResult struct {
	Checked  int
	Warnings []string
}

// Evolution ratios that map directly onto a single extracted line item.
var evolutionSources = map[string]string{
	"taux_variation_chiffre_affaires_pct": "Chiffre d'affaires net",
	"taux_variation_resultat_pct":         "Résultat net comptable",
	"taux_variation_capitaux_propres_pct": "Capitaux propres",
}

// CrossCheckEvolution recomputes each directly-derivable variation rate from
// the extraction and compares it to the model's evolution family.
func CrossCheckEvolution(res *extract.Result, evolution ratio.Category, tolerance float64) VerificationResult {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var out VerificationResult

	n, nm1, ok := res.Years()
	if !ok {
		return out
	}

	values := evolution.Flat
	if values == nil {
		values = evolution.N
	}

	for name, label := range evolutionSources {
		got, present := values[name]
		if !present || !got.Valid {
			continue
		}
		current, okN := res.Value(label, n)
		prior, okNm1 := res.Value(label, nm1)
		if !okN || !okNm1 {
			continue
		}
		want, okVar := VariationPct(current, prior)
		if !okVar {
			continue
		}
		out.Checked++
		if math.Abs(got.Value-want) > tolerance {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("%s: model %.2f vs recomputed %.2f", name, got.Value, want))
		}
	}
	return out
}
