package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reclamassur/models"
	"reclamassur/services/ai"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GenerationRequest is the input of a letter generation
type GenerationRequest struct {
	CaseID         string `json:"dossierId"`
	LetterType     string `json:"typeCourrier"`
	Tone           string `json:"tone,omitempty"`
	Length         string `json:"length,omitempty"`
	PreferredModel string `json:"preferredModel,omitempty"`
}

// GenerationContext summarizes what the letter was generated from
type GenerationContext struct {
	Client     string   `json:"client"`
	Insurer    string   `json:"assureur"`
	ClaimType  string   `json:"type_sinistre"`
	Amount     string   `json:"montant_refuse"`
	Documents  []string `json:"documents"`
	LetterType string   `json:"type_courrier"`
	Tone       string   `json:"tone"`
	Length     string   `json:"length"`
	Provider   string   `json:"provider"`
	Model      string   `json:"model,omitempty"`
	Fallback   bool     `json:"fallback"`
}

// GenerationResult is the letter text plus where it came from
type GenerationResult struct {
	Content  string            `json:"contenu_genere"`
	Provider string            `json:"provider"`
	Model    string            `json:"model,omitempty"`
	Fallback bool              `json:"fallback"`
	Context  GenerationContext `json:"context"`
}

// LetterGenerator produces dispute letters for a case through the AI provider chain
type LetterGenerator struct {
	db        *gorm.DB
	catalog   *ai.Catalog
	creds     ai.Credentials
	baseDelay time.Duration
	sleep     ai.Sleeper
	now       func() time.Time
}

// NewLetterGenerator creates a generator. Credentials are read once here, not per call.
func NewLetterGenerator(db *gorm.DB, catalog *ai.Catalog, creds ai.Credentials, baseDelay time.Duration) *LetterGenerator {
	return &LetterGenerator{
		db:        db,
		catalog:   catalog,
		creds:     creds,
		baseDelay: baseDelay,
		sleep:     ai.ContextSleep,
		now:       time.Now,
	}
}

// WithSleeper replaces the backoff sleeper (tests use a recording one)
func (g *LetterGenerator) WithSleeper(sleep ai.Sleeper) *LetterGenerator {
	g.sleep = sleep
	return g
}

// Generate fetches the case visible to scope, then always returns letter text unless the
// case, its profile or the provider configuration is missing
func (g *LetterGenerator) Generate(ctx context.Context, scope Scope, req GenerationRequest) (*GenerationResult, error) {
	if !ai.IsValidLetterType(req.LetterType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLetterType, req.LetterType)
	}

	var caseRecord models.Case
	err := g.db.WithContext(ctx).
		Preload("Client").
		Preload("Documents").
		First(&caseRecord, "id = ?", req.CaseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}
	if !scope.CanAccess(&caseRecord) {
		return nil, ErrCaseNotFound
	}
	if caseRecord.Client == nil {
		return nil, ErrMissingProfile
	}

	adapters, err := ai.BuildAdapters(g.catalog, g.creds)
	if err != nil {
		return nil, err
	}

	facts := g.caseFacts(&caseRecord)
	opts := ai.Options{LetterType: req.LetterType, Tone: req.Tone, Length: req.Length}
	preferred := req.PreferredModel
	if preferred == "" {
		preferred = GetConfigurationValue(g.db, models.ConfigAIPreferredProvider, "auto")
	}

	orchestrator := ai.NewOrchestrator(adapters, g.baseDelay, g.sleep)
	res := orchestrator.Generate(ctx, ai.BuildPrompt(opts, facts), preferred, func() string {
		return ai.StaticLetter(req.LetterType, facts)
	})

	provider := res.Provider
	if res.Fallback {
		provider = "template"
	}

	zap.L().Info("letter generation finished",
		zap.String("dossier_id", caseRecord.ID),
		zap.String("type_courrier", req.LetterType),
		zap.String("provider", provider),
		zap.Bool("fallback", res.Fallback),
		zap.Int("attempts", res.Attempts))

	return &GenerationResult{
		Content:  res.Content,
		Provider: provider,
		Model:    res.Model,
		Fallback: res.Fallback,
		Context: GenerationContext{
			Client:     facts.ClientName,
			Insurer:    facts.Insurer,
			ClaimType:  facts.ClaimType,
			Amount:     facts.RefusedAmount,
			Documents:  facts.Documents,
			LetterType: req.LetterType,
			Tone:       ai.NormalizeTone(req.Tone),
			Length:     ai.NormalizeLength(req.Length),
			Provider:   provider,
			Model:      res.Model,
			Fallback:   res.Fallback,
		},
	}, nil
}

// caseFacts formats the case through the variable mapper so prompts, static letters and
// templates agree on every value
func (g *LetterGenerator) caseFacts(caseRecord *models.Case) ai.CaseFacts {
	vars := BuildCaseVariables(g.db, caseRecord, g.now())

	documents := make([]string, 0, len(caseRecord.Documents))
	for _, d := range caseRecord.Documents {
		documents = append(documents, d.FileName)
	}

	return ai.CaseFacts{
		ClientName:    vars["nom_complet"],
		ClientEmail:   vars["email"],
		ClientAddress: caseRecord.Client.Address.Data().String(),
		ClaimType:     vars["type_sinistre"],
		IncidentDate:  vars["date_sinistre"],
		RefusalDate:   vars["date_refus"],
		RefusedAmount: vars["montant_refuse"],
		PolicyNumber:  vars["numero_police"],
		Insurer:       vars["assureur"],
		RefusalReason: vars["motif_refus"],
		Description:   caseRecord.Description,
		Documents:     documents,
		Today:         vars["date_actuelle"],
	}
}
