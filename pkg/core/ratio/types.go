// Package ratio runs the second pipeline stage: delegating the French
// accounting-ratio computation to the analysis model and decoding its
// structured answer. Arithmetic stays with the model; this package owns the
// schema, the "Non calculable" convention and the completeness guarantee.
package ratio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NonCalculable is the sentinel for a ratio whose inputs were missing from
// the document. It is never replaced by zero.
const NonCalculable = "Non calculable"

// Flexible is a ratio value: a number, or a sentinel string such as
// "Non calculable". Marshalling round-trips whichever form was received.
type Flexible struct {
	Value float64
	Valid bool   // true when Value carries a number
	Note  string // sentinel text when Valid is false
}

// NotCalculable builds the standard missing-input sentinel.
func NotCalculable() Flexible {
	return Flexible{Note: NonCalculable}
}

// Number builds a numeric ratio value.
func Number(v float64) Flexible {
	return Flexible{Value: v, Valid: true}
}

func (f *Flexible) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = NotCalculable()
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var note string
		if err := json.Unmarshal(data, &note); err != nil {
			return err
		}
		// Numeric strings count as numbers.
		if v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(note), ",", "."), 64); err == nil {
			*f = Number(v)
			return nil
		}
		*f = Flexible{Note: note}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("ratio value is neither number nor string: %s", s)
	}
	*f = Number(v)
	return nil
}

func (f Flexible) MarshalJSON() ([]byte, error) {
	if f.Valid {
		return json.Marshal(f.Value)
	}
	if f.Note == "" {
		return json.Marshal(NonCalculable)
	}
	return json.Marshal(f.Note)
}

// Category holds the values of one ratio family. Most families are split by
// fiscal year; the evolution family is flat because each variation rate
// already spans both years.
type Category struct {
	N    map[string]Flexible
	Nm1  map[string]Flexible
	Flat map[string]Flexible
}

type yearSplit struct {
	N   map[string]Flexible `json:"annee_n"`
	Nm1 map[string]Flexible `json:"annee_n_moins_1"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	_, hasN := probe["annee_n"]
	_, hasNm1 := probe["annee_n_moins_1"]
	if hasN || hasNm1 {
		var split yearSplit
		if err := json.Unmarshal(data, &split); err != nil {
			return err
		}
		c.N, c.Nm1 = split.N, split.Nm1
		return nil
	}
	return json.Unmarshal(data, &c.Flat)
}

func (c Category) MarshalJSON() ([]byte, error) {
	if c.Flat != nil {
		return json.Marshal(c.Flat)
	}
	return json.Marshal(yearSplit{N: c.N, Nm1: c.Nm1})
}

// Groups is the full six-family ratio block.
type Groups struct {
	StructureFinanciere   Category `json:"structure_financiere"`
	ActiviteExploitation  Category `json:"activite_exploitation"`
	Rentabilite           Category `json:"rentabilite"`
	Evolution             Category `json:"evolution"`
	TresorerieFinancement Category `json:"tresorerie_financement"`
	DelaisPaiement        Category `json:"delais_paiement"`
}

// Year tolerates quoted fiscal years.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" || s == "" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("unparseable year %s", string(data))
	}
	*y = Year(n)
	return nil
}

func (y Year) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(y))
}

// Set is the complete output of the ratio stage.
type Set struct {
	CompanyName string `json:"companyName"`
	YearN       Year   `json:"annee_n"`
	YearNm1     Year   `json:"annee_n_moins_1"`
	Ratios      Groups `json:"ratios"`
}
