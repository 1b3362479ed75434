// Package report renders a completed analysis as a standalone HTML document
// for archiving next to the JSON response.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"financial_insights/pkg/core/assemble"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// BuildMarkdown flattens the solvency document into a readable report.
func BuildMarkdown(doc map[string]interface{}, sources []assemble.SourceDescriptor) string {
	var b strings.Builder

	name, _ := doc["companyName"].(string)
	if name == "" {
		name = "Entreprise"
	}
	fmt.Fprintf(&b, "# Analyse de solvabilité — %s\n\n", name)

	if rent, ok := doc["annualRent"]; ok {
		fmt.Fprintf(&b, "Loyer annuel considéré : %v\n\n", rent)
	}
	if n, ok := doc["annee_n"]; ok {
		fmt.Fprintf(&b, "Exercices analysés : %v et %v\n\n", n, doc["annee_n_moins_1"])
	}

	if figures, ok := doc["chiffres_cles"].(map[string]interface{}); ok && len(figures) > 0 {
		b.WriteString("## Chiffres clés\n\n")
		b.WriteString("| Indicateur | Valeur |\n|---|---|\n")
		keys := make([]string, 0, len(figures))
		for k := range figures {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", strings.ReplaceAll(k, "_", " "), formatValue(figures[k]))
		}
		b.WriteString("\n")
	}

	if analysis, ok := doc["analyse_financiere"].(string); ok && analysis != "" {
		b.WriteString("## Analyse financière\n\n")
		b.WriteString(analysis)
		b.WriteString("\n\n")
	}

	if len(sources) > 0 {
		b.WriteString("## Sources\n\n")
		for _, s := range sources {
			fmt.Fprintf(&b, "- [%s](%s) (%s)\n", s.Name, s.URL, s.Category)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatValue avoids exponent notation for the large values JSON decoding
// yields as float64.
func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// RenderHTML converts the markdown report into a full HTML page.
func RenderHTML(markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("markdown conversion failed: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Analyse de solvabilité</title>\n")
	page.WriteString("<style>body{font-family:sans-serif;max-width:50rem;margin:2rem auto;padding:0 1rem}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3rem .6rem}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
