package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{name: "Deduplicates", content: "{{a}}{{a}}{{b}}", expected: []string{"a", "b"}},
		{name: "Whitespace inside braces", content: "Bonjour {{ prenom }} {{nom}}", expected: []string{"prenom", "nom"}},
		{name: "No placeholders", content: "Madame, Monsieur", expected: []string{}},
		{name: "Dotted names are not variables", content: "{{client.nom}} {{assureur}}", expected: []string{"assureur"}},
		{name: "Malformed tag", content: "{{nom", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractVariables(tt.content))
		})
	}
}

func TestExtractVariables_Idempotent(t *testing.T) {
	content := "{{a}} {{b}} {{a}} {{c}}"
	first := ExtractVariables(content)
	assert.ElementsMatch(t, first, ExtractVariables(content))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, first)
}

func TestAnalyzeTemplate(t *testing.T) {
	vars := map[string]string{"nom_complet": "Marie Dupont", "assureur": "AXA"}
	content := "{{nom_complet}} conteste la décision de {{assureur}} du {{date_courrier}} ({{reference_interne}})"

	analysis := AnalyzeTemplate(content, vars)

	assert.Equal(t, map[string]string{"nom_complet": "Marie Dupont", "assureur": "AXA"}, analysis.Automatic)
	assert.Equal(t, map[string]string{"date_courrier": "", "reference_interne": ""}, analysis.Manual)
}

func TestAnalyzeTemplate_PartitionMatchesMapperKeys(t *testing.T) {
	vars := map[string]string{"a": "1", "b": "2"}
	content := "{{a}} {{c}} {{b}} {{d}} {{a}}"
	analysis := AnalyzeTemplate(content, vars)

	for name := range analysis.Automatic {
		_, ok := vars[name]
		assert.True(t, ok, name)
	}
	for name := range analysis.Manual {
		_, ok := vars[name]
		assert.False(t, ok, name)
	}
	assert.Len(t, analysis.Automatic, 2)
	assert.Len(t, analysis.Manual, 2)
}

func TestRenderTemplate(t *testing.T) {
	vars := map[string]string{"a": "X", "nom": "Dupont"}

	tests := []struct {
		name     string
		content  string
		manual   map[string]string
		expected string
	}{
		{name: "Global replacement", content: "{{a}} and {{a}}", expected: "X and X"},
		{name: "Spaced placeholder", content: "M. {{ nom }}", expected: "M. Dupont"},
		{name: "Manual value", content: "Réf. {{ref}}", manual: map[string]string{"ref": "R-42"}, expected: "Réf. R-42"},
		{name: "Omitted manual value", content: "Réf. {{ref}}.", expected: "Réf. ."},
		{name: "Automatic wins over manual", content: "{{nom}}", manual: map[string]string{"nom": "Martin"}, expected: "Dupont"},
		{name: "Non-variable syntax left verbatim", content: "{{client.nom}} {{nom}}", expected: "{{client.nom}} Dupont"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderTemplate(tt.content, vars, tt.manual))
		})
	}
}

func TestWrapHTMLForPDF(t *testing.T) {
	page := WrapHTMLForPDF("Madame, Monsieur")
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "Madame, Monsieur")
}

func TestWrapHTMLForPDF_EscapesContent(t *testing.T) {
	content := RenderTemplate("Assureur : {{assureur}}, l'agence", map[string]string{
		"assureur": `AXA<script>fetch("http://169.254.169.254/")</script><img src=http://169.254.169.254/x>`,
	}, nil)

	page := WrapHTMLForPDF(content)
	assert.NotContains(t, page, "<script>")
	assert.NotContains(t, page, "<img")
	assert.Contains(t, page, "AXA&lt;script&gt;")
	assert.Contains(t, page, "l&#39;agence")
}
