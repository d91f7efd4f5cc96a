package services

import (
	"strings"
	"testing"
	"time"

	"reclamassur/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCaseVariables(t *testing.T) {
	db := setupTestDB(t)
	_, caseRecord := seedCase(t, db)
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

	vars := BuildCaseVariables(db, caseRecord, now)

	t.Run("Client identity", func(t *testing.T) {
		assert.Equal(t, "Marie Dupont", vars["nom_complet"])
		assert.Equal(t, "Marie", vars["prenom"])
		assert.Equal(t, "Dupont", vars["nom"])
		assert.Equal(t, caseRecord.Client.Email, vars["email"])
	})

	t.Run("Amounts", func(t *testing.T) {
		assert.Contains(t, vars["montant_refuse"], "500,50")
		assert.True(t, strings.HasSuffix(vars["montant_refuse"], "€"))
		assert.Equal(t, "1500.5", vars["montant_refuse_chiffres"])
	})

	t.Run("Dates", func(t *testing.T) {
		assert.Equal(t, "15/03/2024", vars["date_sinistre"])
		assert.Equal(t, "15 mars 2024", vars["date_sinistre_longue"])
		assert.Equal(t, "02/05/2024", vars["date_refus"])
		assert.Equal(t, "2 mai 2024", vars["date_refus_longue"])
		assert.Equal(t, "15/10/2026", vars["date_actuelle"])
		assert.Equal(t, "15 octobre 2026", vars["date_actuelle_longue"])
	})

	t.Run("Contract and claim", func(t *testing.T) {
		assert.Equal(t, "POL-123456", vars["numero_police"])
		assert.Equal(t, "Assurances Générales", vars["assureur"])
		assert.Equal(t, "Exclusion de garantie", vars["motif_refus"])
		assert.Equal(t, "Habitation", vars["type_sinistre"])
	})

	t.Run("Fixed key set", func(t *testing.T) {
		var dictionary []string
		for _, category := range GetVariableDictionary() {
			for _, v := range category.Variables {
				dictionary = append(dictionary, v.Key)
			}
		}
		var keys []string
		for k := range vars {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, dictionary, keys)
	})
}

func TestBuildCaseVariables_MissingFacts(t *testing.T) {
	caseRecord := &models.Case{PolicyNumber: "P-1", InsurerName: "MAIF", ClaimType: "auto"}

	vars := BuildCaseVariables(nil, caseRecord, time.Now())

	assert.Equal(t, "Non spécifié", vars["motif_refus"])
	assert.Equal(t, "Automobile", vars["type_sinistre"])
	assert.Equal(t, "", vars["nom_complet"])
	assert.Equal(t, "", vars["montant_refuse"])
	_, ok := vars["date_sinistre"]
	assert.True(t, ok)
}

func TestResolveClaimTypeLabel(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.ClaimType{Code: "auto", Label: "Véhicule terrestre", IsActive: true}).Error)
	inactive := &models.ClaimType{Code: "sante", Label: "Santé (ancien)", IsActive: true}
	require.NoError(t, db.Create(inactive).Error)
	require.NoError(t, db.Model(inactive).Update("actif", false).Error)

	tests := []struct {
		code     string
		expected string
	}{
		{code: "auto", expected: "Véhicule terrestre"},
		{code: "sante", expected: "Santé"},
		{code: "other", expected: "Autre"},
		{code: "catastrophe_naturelle", expected: "catastrophe_naturelle"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveClaimTypeLabel(db, tt.code))
		})
	}
}

func TestResolveClaimTypeLabel_LookupFailureDegrades(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.ClaimType{}))

	assert.Equal(t, "habitation_secondaire", ResolveClaimTypeLabel(db, "habitation_secondaire"))
	assert.Equal(t, "Habitation", ResolveClaimTypeLabel(db, "habitation"))
}
