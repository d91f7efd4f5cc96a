package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testFacts = CaseFacts{
	ClientName:    "Marie Dupont",
	ClientEmail:   "marie@example.fr",
	ClaimType:     "Habitation",
	IncidentDate:  "15/03/2024",
	RefusalDate:   "02/05/2024",
	RefusedAmount: "1 500,50 €",
	PolicyNumber:  "POL-123456",
	Insurer:       "Assurances Générales",
	RefusalReason: "Exclusion de garantie",
	Documents:     []string{"refus.pdf", "facture.pdf"},
	Today:         "15/10/2026",
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Options{LetterType: LetterMediation, Tone: "firm", Length: "long"}, testFacts)

	assert.Contains(t, p.System, "médiateur")
	assert.Contains(t, p.System, "ferme")
	assert.Contains(t, p.System, "600 à 800 mots")

	assert.Contains(t, p.User, "Marie Dupont")
	assert.Contains(t, p.User, "1 500,50 €")
	assert.Contains(t, p.User, "refus.pdf, facture.pdf")
	assert.NotContains(t, p.User, "Adresse", "empty facts are omitted")
}

func TestBuildPrompt_Defaults(t *testing.T) {
	p := BuildPrompt(Options{LetterType: LetterInternalComplaint}, testFacts)
	assert.Contains(t, p.System, "diplomatique")
	assert.Contains(t, p.System, "400 à 600 mots")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, ToneFirm, NormalizeTone("FERME"))
	assert.Equal(t, ToneDiplomatic, NormalizeTone("unknown"))
	assert.Equal(t, LengthShort, NormalizeLength("short"))
	assert.Equal(t, LengthMedium, NormalizeLength(""))
}

func TestStaticLetter(t *testing.T) {
	for _, letterType := range []string{LetterInternalComplaint, LetterMediation, LetterFormalNotice} {
		t.Run(letterType, func(t *testing.T) {
			text := StaticLetter(letterType, testFacts)
			assert.Contains(t, text, "Marie Dupont")
			assert.Contains(t, text, "1 500,50 €")
			assert.Contains(t, text, "POL-123456")
			assert.NotContains(t, text, "{{")
			assert.GreaterOrEqual(t, len([]rune(strings.TrimSpace(text))), MinContentLength)
		})
	}

	assert.Contains(t, StaticLetter(LetterFormalNotice, testFacts), "Mise en demeure")
	assert.Contains(t, StaticLetter(LetterMediation, testFacts), "Médiateur")
	assert.Equal(t, StaticLetter(LetterInternalComplaint, testFacts), StaticLetter("inconnu", testFacts))
}

func TestIsValidLetterType(t *testing.T) {
	assert.True(t, IsValidLetterType("mise_en_demeure"))
	assert.False(t, IsValidLetterType("relance"))
}
