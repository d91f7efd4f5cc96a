package ai

import (
	"fmt"
	"strings"
)

// Letter types offered for generation
const (
	LetterInternalComplaint = "reclamation_interne"
	LetterMediation         = "mediation"
	LetterFormalNotice      = "mise_en_demeure"
)

// Tones
const (
	ToneFirm       = "ferme"
	ToneDiplomatic = "diplomatique"
)

// Lengths
const (
	LengthShort  = "court"
	LengthMedium = "moyen"
	LengthLong   = "long"
)

var toneAliases = map[string]string{
	"ferme": ToneFirm, "firm": ToneFirm,
	"diplomatique": ToneDiplomatic, "diplomatic": ToneDiplomatic,
}

var lengthAliases = map[string]string{
	"court": LengthShort, "short": LengthShort,
	"moyen": LengthMedium, "medium": LengthMedium,
	"long": LengthLong,
}

var wordBands = map[string]string{
	LengthShort:  "300 à 400 mots",
	LengthMedium: "400 à 600 mots",
	LengthLong:   "600 à 800 mots",
}

var letterTypeLabels = map[string]string{
	LetterInternalComplaint: "une réclamation auprès du service réclamations de l'assureur",
	LetterMediation:         "une saisine du médiateur de l'assurance",
	LetterFormalNotice:      "une mise en demeure adressée à l'assureur",
}

// CaseFacts are the already formatted case values used in prompts and static letters
type CaseFacts struct {
	ClientName    string
	ClientEmail   string
	ClientAddress string
	ClaimType     string
	IncidentDate  string
	RefusalDate   string
	RefusedAmount string
	PolicyNumber  string
	Insurer       string
	RefusalReason string
	Description   string
	Documents     []string
	Today         string
}

// Options are the caller's generation preferences
type Options struct {
	LetterType string
	Tone       string
	Length     string
}

// IsValidLetterType reports whether letterType is one of the generated letter kinds
func IsValidLetterType(letterType string) bool {
	_, ok := letterTypeLabels[letterType]
	return ok
}

// NormalizeTone maps a tone hint to a known tone, defaulting to diplomatic
func NormalizeTone(tone string) string {
	if t, ok := toneAliases[strings.ToLower(strings.TrimSpace(tone))]; ok {
		return t
	}
	return ToneDiplomatic
}

// NormalizeLength maps a length hint to a known length, defaulting to medium
func NormalizeLength(length string) string {
	if l, ok := lengthAliases[strings.ToLower(strings.TrimSpace(length))]; ok {
		return l
	}
	return LengthMedium
}

// BuildPrompt assembles the system instructions and the serialized case facts
func BuildPrompt(opts Options, facts CaseFacts) Prompt {
	tone := NormalizeTone(opts.Tone)
	length := NormalizeLength(opts.Length)

	toneInstruction := "Adopte un ton courtois et diplomatique, orienté vers une solution amiable."
	if tone == ToneFirm {
		toneInstruction = "Adopte un ton ferme et déterminé, sans agressivité, en rappelant les obligations de l'assureur."
	}

	var sys strings.Builder
	sys.WriteString("Tu es un juriste français spécialisé en droit des assurances. ")
	fmt.Fprintf(&sys, "Rédige %s au nom de l'assuré, en français.\n", letterTypeLabels[opts.LetterType])
	sys.WriteString(toneInstruction + "\n")
	fmt.Fprintf(&sys, "Longueur visée : %s.\n", wordBands[length])
	sys.WriteString("Structure attendue :\n")
	sys.WriteString("1. Coordonnées de l'expéditeur et du destinataire, lieu et date\n")
	sys.WriteString("2. Objet et références (numéro de police, date du sinistre)\n")
	sys.WriteString("3. Rappel des faits et de la décision de refus\n")
	sys.WriteString("4. Argumentation juridique (Code des assurances, conditions du contrat)\n")
	sys.WriteString("5. Demande précise et délai de réponse\n")
	sys.WriteString("6. Formule de politesse et signature\n")
	sys.WriteString("Réponds uniquement avec le texte du courrier, sans commentaire.")

	var user strings.Builder
	user.WriteString("Informations du dossier :\n")
	writeFact(&user, "Assuré", facts.ClientName)
	writeFact(&user, "Email", facts.ClientEmail)
	writeFact(&user, "Adresse", facts.ClientAddress)
	writeFact(&user, "Assureur", facts.Insurer)
	writeFact(&user, "Numéro de police", facts.PolicyNumber)
	writeFact(&user, "Type de sinistre", facts.ClaimType)
	writeFact(&user, "Date du sinistre", facts.IncidentDate)
	writeFact(&user, "Date du refus", facts.RefusalDate)
	writeFact(&user, "Montant refusé", facts.RefusedAmount)
	writeFact(&user, "Motif du refus", facts.RefusalReason)
	writeFact(&user, "Description", facts.Description)
	if len(facts.Documents) > 0 {
		writeFact(&user, "Pièces jointes", strings.Join(facts.Documents, ", "))
	}
	writeFact(&user, "Date du jour", facts.Today)

	return Prompt{System: sys.String(), User: user.String()}
}

func writeFact(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s : %s\n", label, value)
}
