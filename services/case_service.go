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

// Scope is the caller identity used to emulate row-level security: users see their own rows,
// admins see everything
type Scope struct {
	UserID  string
	IsAdmin bool
}

// CanAccess reports whether the scope may read the case
func (s Scope) CanAccess(c *models.Case) bool {
	return s.IsAdmin || (s.UserID != "" && c.UserID == s.UserID)
}

// CaseInput holds the client-editable fields of a case
type CaseInput struct {
	InsurerName   string     `json:"compagnie_assurance"`
	PolicyNumber  string     `json:"numero_police"`
	ClaimType     string     `json:"type_sinistre"`
	IncidentDate  *time.Time `json:"date_sinistre"`
	RefusalDate   *time.Time `json:"date_refus"`
	RefusedAmount *float64   `json:"montant_refuse"`
	RefusalReason *string    `json:"motif_refus"`
	Description   string     `json:"description"`
}

// Validate checks the required fields and the coherence of amounts and dates
func (in *CaseInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.InsurerName) == "" {
		problems = append(problems, "compagnie_assurance is required")
	}
	if strings.TrimSpace(in.PolicyNumber) == "" {
		problems = append(problems, "numero_police is required")
	}
	if strings.TrimSpace(in.ClaimType) == "" {
		problems = append(problems, "type_sinistre is required")
	}
	if in.RefusedAmount != nil && *in.RefusedAmount < 0 {
		problems = append(problems, "montant_refuse must be positive")
	}
	if in.IncidentDate != nil && in.RefusalDate != nil && in.RefusalDate.Before(*in.IncidentDate) {
		problems = append(problems, "date_refus cannot precede date_sinistre")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (in *CaseInput) apply(c *models.Case) {
	c.InsurerName = strings.TrimSpace(in.InsurerName)
	c.PolicyNumber = strings.TrimSpace(in.PolicyNumber)
	c.ClaimType = strings.TrimSpace(in.ClaimType)
	c.IncidentDate = in.IncidentDate
	c.RefusalDate = in.RefusalDate
	c.RefusedAmount = in.RefusedAmount
	c.RefusalReason = in.RefusalReason
	c.Description = in.Description
}

// CaseFilters narrows the admin case listing
type CaseFilters struct {
	Status    string
	ClaimType string
	Search    string
}

// CaseService manages dossiers
type CaseService struct {
	db             *gorm.DB
	storage        StorageProvider
	submitAttempts int
	retryPause     time.Duration
}

// NewCaseService creates a case service
func NewCaseService(db *gorm.DB, storage StorageProvider) *CaseService {
	return &CaseService{db: db, storage: storage, submitAttempts: 3, retryPause: 500 * time.Millisecond}
}

// Submit inserts a new case for userID, retrying transient insert failures
func (s *CaseService) Submit(ctx context.Context, userID string, input CaseInput) (*models.Case, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissingProfile
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.submitAttempts; attempt++ {
		caseRecord := &models.Case{UserID: userID, Status: models.CaseStatusNew}
		input.apply(caseRecord)

		lastErr = s.db.WithContext(ctx).Create(caseRecord).Error
		if lastErr == nil {
			LogActivity(s.db, userID, caseRecord.ID, models.ActivityCaseCreated, map[string]string{
				"type_sinistre": caseRecord.ClaimType,
				"assureur":      caseRecord.InsurerName,
			})
			caseRecord.Client = &profile
			return caseRecord, nil
		}

		zap.L().Warn("case insert failed",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
		if attempt < s.submitAttempts && s.retryPause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryPause):
			}
		}
	}
	return nil, fmt.Errorf("failed to create dossier after %d attempts: %w", s.submitAttempts, lastErr)
}

// Get loads a case with its client, documents, letters, deadlines and payments
func (s *CaseService) Get(ctx context.Context, scope Scope, caseID string) (*models.Case, error) {
	var caseRecord models.Case
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Letters", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Deadlines", func(db *gorm.DB) *gorm.DB { return db.Order("date_echeance ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&caseRecord, "id = ?", caseID).Error
	if err != nil {
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

// ListForUser returns the cases owned by userID, newest first
func (s *CaseService) ListForUser(ctx context.Context, userID string) ([]models.Case, error) {
	var cases []models.Case
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dossiers: %w", err)
	}
	return cases, nil
}

// ListAll returns every case matching the filters, for admins
func (s *CaseService) ListAll(ctx context.Context, filters CaseFilters, page, pageSize int) ([]models.Case, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Case{})
	if filters.Status != "" {
		query = query.Where("statut = ?", filters.Status)
	}
	if filters.ClaimType != "" {
		query = query.Where("type_sinistre = ?", filters.ClaimType)
	}
	if q := strings.TrimSpace(filters.Search); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("compagnie_assurance LIKE ? OR numero_police LIKE ? OR description LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count dossiers: %w", err)
	}

	var cases []models.Case
	page, pageSize = normalizePage(page, pageSize)
	err := query.Preload("Client").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list dossiers: %w", err)
	}
	return cases, total, nil
}

// Update edits the case fields. Owners may edit only while the case is new; admins always.
func (s *CaseService) Update(ctx context.Context, scope Scope, caseID string, input CaseInput) (*models.Case, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	caseRecord, err := s.Get(ctx, scope, caseID)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin && !caseRecord.IsEditableByOwner() {
		return nil, ErrForbidden
	}

	input.apply(caseRecord)
	err = s.db.WithContext(ctx).Model(caseRecord).Select(
		"compagnie_assurance", "numero_police", "type_sinistre", "date_sinistre",
		"date_refus", "montant_refuse", "motif_refus", "description",
	).Updates(caseRecord).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update dossier: %w", err)
	}

	LogActivity(s.db, scope.UserID, caseID, models.ActivityCaseUpdated, nil)
	return caseRecord, nil
}

// UpdateStatus moves a case to a new status (admin only)
func (s *CaseService) UpdateStatus(ctx context.Context, actor AuditContext, caseID, status string) (*models.Case, error) {
	if !models.IsValidCaseStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var caseRecord models.Case
	if err := s.db.WithContext(ctx).First(&caseRecord, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}

	oldStatus := caseRecord.Status
	if err := s.db.WithContext(ctx).Model(&caseRecord).Update("statut", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	caseRecord.Status = status

	LogAdminAction(s.db, actor, models.AdminActionCaseStatus, "dossier", caseID,
		map[string]string{"statut": oldStatus}, map[string]string{"statut": status})
	return &caseRecord, nil
}

// CascadeDelete removes a case with its documents, letters, deadlines and payments in one
// transaction, then deletes the stored files once the rows are committed (admin only)
func (s *CaseService) CascadeDelete(ctx context.Context, actor AuditContext, caseID string) error {
	var caseRecord models.Case
	if err := s.db.WithContext(ctx).Preload("Documents").First(&caseRecord, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCaseNotFound
		}
		return fmt.Errorf("failed to fetch dossier: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			model interface{}
		}{
			{"documents", &models.Document{}},
			{"courriers_projets", &models.Letter{}},
			{"echeances", &models.Deadline{}},
			{"paiements", &models.Payment{}},
		}
		for _, step := range steps {
			if err := tx.Where("dossier_id = ?", caseID).Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.name, err)
			}
		}
		return tx.Delete(&models.Case{}, "id = ?", caseID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete dossier: %w", err)
	}

	// Rows are gone; a stored object left behind is only logged.
	if s.storage != nil {
		for _, doc := range caseRecord.Documents {
			if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
				zap.L().Warn("failed to delete stored document",
					zap.String("dossier_id", caseID),
					zap.String("key", doc.StoragePath),
					zap.Error(err))
			}
		}
	}

	LogAdminAction(s.db, actor, models.AdminActionCaseDelete, "dossier", caseID, map[string]interface{}{
		"compagnie_assurance": caseRecord.InsurerName,
		"numero_police":       caseRecord.PolicyNumber,
		"documents":           len(caseRecord.Documents),
	}, nil)
	zap.L().Info("dossier deleted", zap.String("dossier_id", caseID), zap.String("admin_id", actor.UserID))
	return nil
}
