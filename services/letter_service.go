package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reclamassur/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DispatchInput carries the postal details recorded when a letter is sent
type DispatchInput struct {
	TrackingNumber string   `json:"numero_suivi"`
	PostageCost    *float64 `json:"cout_envoi"`
}

// LetterService stores letter drafts and moves them through review and dispatch
type LetterService struct {
	db        *gorm.DB
	templates *TemplateService
	pdf       PDFRenderer
	now       func() time.Time
}

// NewLetterService creates a letter service
func NewLetterService(db *gorm.DB, templates *TemplateService, pdf PDFRenderer) *LetterService {
	return &LetterService{
		db:        db,
		templates: templates,
		pdf:       pdf,
		now:       time.Now,
	}
}

// SaveGenerated stores a generation result as a draft awaiting validation
func (s *LetterService) SaveGenerated(ctx context.Context, scope Scope, req GenerationRequest, res *GenerationResult) (*models.Letter, error) {
	if _, err := s.loadCase(ctx, scope, req.CaseID); err != nil {
		return nil, err
	}

	letter := &models.Letter{
		CaseID:           req.CaseID,
		LetterType:       req.LetterType,
		GeneratedContent: res.Content,
		GeneratedByAI:    !res.Fallback,
		Provider:         res.Provider,
		Model:            res.Model,
	}
	if err := s.db.WithContext(ctx).Create(letter).Error; err != nil {
		return nil, fmt.Errorf("failed to save letter: %w", err)
	}

	LogActivity(s.db, scope.UserID, req.CaseID, models.ActivityLetterCreated,
		map[string]interface{}{"courrier_id": letter.ID, "provider": res.Provider, "fallback": res.Fallback})
	return letter, nil
}

// CreateFromTemplate renders a template for a case and stores the result as a draft
func (s *LetterService) CreateFromTemplate(ctx context.Context, scope Scope, templateID, caseID string, manual map[string]string) (*models.Letter, error) {
	tmpl, content, err := s.templates.Render(ctx, scope, templateID, caseID, manual)
	if err != nil {
		return nil, err
	}

	letter := &models.Letter{
		CaseID:           caseID,
		LetterType:       tmpl.LetterType,
		TemplateID:       &tmpl.ID,
		GeneratedContent: content,
		Provider:         "template",
	}
	if err := s.db.WithContext(ctx).Create(letter).Error; err != nil {
		return nil, fmt.Errorf("failed to save letter: %w", err)
	}

	LogActivity(s.db, scope.UserID, caseID, models.ActivityLetterCreated,
		map[string]string{"courrier_id": letter.ID, "modele_id": tmpl.ID})
	return letter, nil
}

// ListForCase returns the letters of a case, newest first
func (s *LetterService) ListForCase(ctx context.Context, scope Scope, caseID string) ([]models.Letter, error) {
	if _, err := s.loadCase(ctx, scope, caseID); err != nil {
		return nil, err
	}

	var letters []models.Letter
	if err := s.db.WithContext(ctx).Where("dossier_id = ?", caseID).Order("created_at DESC").Find(&letters).Error; err != nil {
		return nil, fmt.Errorf("failed to list letters: %w", err)
	}
	return letters, nil
}

// ListByStatus returns letters across all cases for the review queue
func (s *LetterService) ListByStatus(ctx context.Context, status string) ([]models.Letter, error) {
	query := s.db.WithContext(ctx).Preload("Case").Preload("Case.Client").Order("created_at ASC")
	if status != "" {
		query = query.Where("statut = ?", status)
	}

	var letters []models.Letter
	if err := query.Find(&letters).Error; err != nil {
		return nil, fmt.Errorf("failed to list letters: %w", err)
	}
	return letters, nil
}

// Get loads a letter visible to the scope
func (s *LetterService) Get(ctx context.Context, scope Scope, id string) (*models.Letter, error) {
	var letter models.Letter
	if err := s.db.WithContext(ctx).Preload("Case").First(&letter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLetterNotFound
		}
		return nil, fmt.Errorf("failed to fetch letter: %w", err)
	}
	if letter.Case == nil || !scope.CanAccess(letter.Case) {
		return nil, ErrLetterNotFound
	}
	return &letter, nil
}

// Validate approves a draft as is
func (s *LetterService) Validate(ctx context.Context, actor AuditContext, id string) (*models.Letter, error) {
	return s.transition(ctx, actor, id, models.LetterStatusValidated, models.AdminActionLetterValidate, func(l *models.Letter) error {
		now := s.now()
		l.ValidatedByID = ptrIfNotEmpty(actor.UserID)
		l.ValidatedAt = &now
		return nil
	})
}

// Edit stores the administrator version as written and marks the letter ready
func (s *LetterService) Edit(ctx context.Context, actor AuditContext, id, content string) (*models.Letter, error) {
	if err := ValidatePlainText("contenu_final", content); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, id, models.LetterStatusModifiedReady, models.AdminActionLetterEdit, func(l *models.Letter) error {
		now := s.now()
		l.FinalContent = &content
		l.ValidatedByID = ptrIfNotEmpty(actor.UserID)
		l.ValidatedAt = &now
		return nil
	})
}

// Reject closes a draft with a reason
func (s *LetterService) Reject(ctx context.Context, actor AuditContext, id, reason string) (*models.Letter, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: motif_rejet is required", ErrValidation)
	}

	return s.transition(ctx, actor, id, models.LetterStatusRejected, models.AdminActionLetterReject, func(l *models.Letter) error {
		l.RejectionReason = &reason
		return nil
	})
}

// MarkSent records the postal dispatch. An open case moves to reclamation_envoyee.
func (s *LetterService) MarkSent(ctx context.Context, actor AuditContext, id string, input DispatchInput) (*models.Letter, error) {
	if input.PostageCost != nil && *input.PostageCost < 0 {
		return nil, fmt.Errorf("%w: cout_envoi must not be negative", ErrValidation)
	}

	letter, err := s.transition(ctx, actor, id, models.LetterStatusSent, models.AdminActionLetterSend, func(l *models.Letter) error {
		now := s.now()
		l.SentAt = &now
		l.TrackingNumber = ptrIfNotEmpty(strings.TrimSpace(input.TrackingNumber))
		l.PostageCost = input.PostageCost
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ? AND statut IN ?", letter.CaseID, []string{models.CaseStatusNew, models.CaseStatusInProgress}).
		Update("statut", models.CaseStatusClaimSent).Error
	if err != nil {
		zap.L().Warn("failed to advance dossier status after dispatch",
			zap.String("dossier_id", letter.CaseID), zap.Error(err))
	}
	return letter, nil
}

// transition applies a status change allowed by the letter state machine. Editing an already
// modified letter keeps its status.
func (s *LetterService) transition(
	ctx context.Context,
	actor AuditContext,
	id string,
	status string,
	action models.AdminAction,
	mutate func(*models.Letter) error,
) (*models.Letter, error) {
	var letter models.Letter
	if err := s.db.WithContext(ctx).First(&letter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLetterNotFound
		}
		return nil, fmt.Errorf("failed to fetch letter: %w", err)
	}

	sameEdit := status == models.LetterStatusModifiedReady && letter.Status == models.LetterStatusModifiedReady
	if !sameEdit && !letter.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, letter.Status, status)
	}

	oldStatus := letter.Status
	if err := mutate(&letter); err != nil {
		return nil, err
	}
	letter.Status = status

	if err := s.db.WithContext(ctx).Save(&letter).Error; err != nil {
		return nil, fmt.Errorf("failed to update letter: %w", err)
	}

	LogAdminAction(s.db, actor, action, "courrier", letter.ID,
		map[string]string{"statut": oldStatus}, map[string]string{"statut": letter.Status})
	return &letter, nil
}

// ExportPDF renders the effective content of a letter as a PDF document
func (s *LetterService) ExportPDF(ctx context.Context, scope Scope, id string) ([]byte, string, error) {
	letter, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.pdf.Render(ctx, WrapHTMLForPDF(letter.EffectiveContent()))
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%s.pdf", letter.LetterType, letter.CreatedAt.Format("20060102"))
	return pdf, filename, nil
}

func (s *LetterService) loadCase(ctx context.Context, scope Scope, caseID string) (*models.Case, error) {
	var caseRecord models.Case
	if err := s.db.WithContext(ctx).First(&caseRecord, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}
	if !scope.CanAccess(&caseRecord) {
		return nil, ErrCaseNotFound
	}
	return &caseRecord, nil
}
