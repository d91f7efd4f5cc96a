package services

import (
	"errors"
	"time"

	"reclamassur/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Variable describes one automatic template variable
type Variable struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Example     string `json:"example"`
}

// VariableCategory groups variables for the template editor
type VariableCategory struct {
	Name      string     `json:"name"`
	Variables []Variable `json:"variables"`
}

// legacyClaimTypeLabels covers claim-type codes that predate the types_sinistres catalog
var legacyClaimTypeLabels = map[string]string{
	"auto":       "Automobile",
	"habitation": "Habitation",
	"sante":      "Santé",
	"other":      "Autre",
}

// GetVariableDictionary returns all automatic variables organized by category
func GetVariableDictionary() []VariableCategory {
	return []VariableCategory{
		{
			Name: "Client",
			Variables: []Variable{
				{Key: "nom_complet", Label: "Nom complet", Example: "Marie Dupont"},
				{Key: "prenom", Label: "Prénom", Example: "Marie"},
				{Key: "nom", Label: "Nom", Example: "Dupont"},
				{Key: "email", Label: "Email", Example: "marie.dupont@example.fr"},
			},
		},
		{
			Name: "Sinistre",
			Variables: []Variable{
				{Key: "montant_refuse", Label: "Montant refusé", Example: "1 500,50 €"},
				{Key: "montant_refuse_chiffres", Label: "Montant refusé (chiffres)", Example: "1500.5"},
				{Key: "date_sinistre", Label: "Date du sinistre", Example: "15/03/2024"},
				{Key: "date_sinistre_longue", Label: "Date du sinistre (longue)", Example: "15 mars 2024"},
				{Key: "date_refus", Label: "Date du refus", Example: "02/05/2024"},
				{Key: "date_refus_longue", Label: "Date du refus (longue)", Example: "2 mai 2024"},
				{Key: "motif_refus", Label: "Motif du refus", Example: "Exclusion de garantie"},
				{Key: "type_sinistre", Label: "Type de sinistre", Example: "Habitation"},
			},
		},
		{
			Name: "Contrat",
			Variables: []Variable{
				{Key: "numero_police", Label: "Numéro de police", Example: "POL-123456"},
				{Key: "assureur", Label: "Assureur", Example: "Assurances Générales"},
			},
		},
		{
			Name: "Dates",
			Variables: []Variable{
				{Key: "date_actuelle", Label: "Date du jour", Example: "15/10/2026"},
				{Key: "date_actuelle_longue", Label: "Date du jour (longue)", Example: "15 octobre 2026"},
			},
		},
	}
}

// BuildCaseVariables derives the fixed set of automatic variables from a case and its joined
// client profile. Every key is always present; absent facts render as empty strings.
func BuildCaseVariables(db *gorm.DB, caseRecord *models.Case, now time.Time) map[string]string {
	vars := map[string]string{
		"nom_complet":             "",
		"prenom":                  "",
		"nom":                     "",
		"email":                   "",
		"montant_refuse":          "",
		"montant_refuse_chiffres": "",
		"date_sinistre":           "",
		"date_sinistre_longue":    "",
		"date_refus":              "",
		"date_refus_longue":       "",
		"numero_police":           caseRecord.PolicyNumber,
		"assureur":                caseRecord.InsurerName,
		"motif_refus":             notSpecified,
		"type_sinistre":           ResolveClaimTypeLabel(db, caseRecord.ClaimType),
		"date_actuelle":           FormatShortDateFR(now),
		"date_actuelle_longue":    FormatLongDateFR(now),
	}

	if c := caseRecord.Client; c != nil {
		vars["nom_complet"] = c.FullName()
		vars["prenom"] = c.FirstName
		vars["nom"] = c.LastName
		vars["email"] = c.Email
	}

	if caseRecord.RefusedAmount != nil {
		vars["montant_refuse"] = FormatEuro(*caseRecord.RefusedAmount)
		vars["montant_refuse_chiffres"] = FormatBareAmount(*caseRecord.RefusedAmount)
	}
	if caseRecord.IncidentDate != nil {
		vars["date_sinistre"] = FormatShortDateFR(*caseRecord.IncidentDate)
		vars["date_sinistre_longue"] = FormatLongDateFR(*caseRecord.IncidentDate)
	}
	if caseRecord.RefusalDate != nil {
		vars["date_refus"] = FormatShortDateFR(*caseRecord.RefusalDate)
		vars["date_refus_longue"] = FormatLongDateFR(*caseRecord.RefusalDate)
	}
	if reason := safeString(caseRecord.RefusalReason); reason != "" {
		vars["motif_refus"] = reason
	}

	return vars
}

// ResolveClaimTypeLabel maps a claim-type code to its label: active catalog row, then the
// legacy table, then the raw code. Lookup errors degrade to the raw code.
func ResolveClaimTypeLabel(db *gorm.DB, code string) string {
	if db != nil {
		var claimType models.ClaimType
		err := db.Where("code = ? AND actif = ?", code, true).First(&claimType).Error
		switch {
		case err == nil:
			return claimType.Label
		case !errors.Is(err, gorm.ErrRecordNotFound):
			zap.L().Warn("claim type lookup failed", zap.String("code", code), zap.Error(err))
		}
	}
	if label, ok := legacyClaimTypeLabels[code]; ok {
		return label
	}
	return code
}

// Helper to safely get string from pointer
func safeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
