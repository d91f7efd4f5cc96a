package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reclamassur/models"

	"gorm.io/gorm"
)

// defaultAlertLead is how long before the due date the client is alerted when no alert date is given
const defaultAlertLead = 7 * 24 * time.Hour

// DeadlineInput is the editable part of a deadline
type DeadlineInput struct {
	Title       string     `json:"titre"`
	Description *string    `json:"description"`
	DueDate     time.Time  `json:"date_echeance"`
	AlertDate   *time.Time `json:"date_alerte"`
}

// Validate checks the deadline shape
func (in *DeadlineInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "titre is required")
	}
	if in.DueDate.IsZero() {
		problems = append(problems, "date_echeance is required")
	}
	if in.AlertDate != nil && !in.DueDate.IsZero() && in.AlertDate.After(in.DueDate) {
		problems = append(problems, "date_alerte must not be after date_echeance")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (in *DeadlineInput) alertDate() time.Time {
	if in.AlertDate != nil {
		return *in.AlertDate
	}
	return in.DueDate.Add(-defaultAlertLead)
}

// DeadlineService manages case deadlines
type DeadlineService struct {
	db *gorm.DB
}

// NewDeadlineService creates a deadline service
func NewDeadlineService(db *gorm.DB) *DeadlineService {
	return &DeadlineService{db: db}
}

// Create adds a deadline to a case
func (s *DeadlineService) Create(ctx context.Context, actor AuditContext, caseID string, input DeadlineInput) (*models.Deadline, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Case{}).Where("id = ?", caseID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check dossier: %w", err)
	}
	if count == 0 {
		return nil, ErrCaseNotFound
	}

	deadline := &models.Deadline{
		CaseID:      caseID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DueDate:     input.DueDate,
		AlertDate:   input.alertDate(),
	}
	if err := s.db.WithContext(ctx).Create(deadline).Error; err != nil {
		return nil, fmt.Errorf("failed to create deadline: %w", err)
	}

	LogAdminAction(s.db, actor, models.AdminActionDeadlineSave, "echeance", deadline.ID, nil,
		map[string]interface{}{"titre": deadline.Title, "date_echeance": deadline.DueDate})
	return deadline, nil
}

// ListForCase returns the deadlines of a case visible to the scope, soonest first
func (s *DeadlineService) ListForCase(ctx context.Context, scope Scope, caseID string) ([]models.Deadline, error) {
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

	var deadlines []models.Deadline
	if err := s.db.WithContext(ctx).Where("dossier_id = ?", caseID).Order("date_echeance ASC").Find(&deadlines).Error; err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	return deadlines, nil
}

// ListUpcoming returns active deadlines due before now+within, across all cases
func (s *DeadlineService) ListUpcoming(ctx context.Context, now time.Time, within time.Duration) ([]models.Deadline, error) {
	var deadlines []models.Deadline
	err := s.db.WithContext(ctx).
		Preload("Case").
		Where("statut = ? AND date_echeance <= ?", models.DeadlineStatusActive, now.Add(within)).
		Order("date_echeance ASC").
		Find(&deadlines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming deadlines: %w", err)
	}
	return deadlines, nil
}

// Update replaces the editable fields. A moved alert date re-arms the alert.
func (s *DeadlineService) Update(ctx context.Context, actor AuditContext, id string, input DeadlineInput) (*models.Deadline, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	deadline, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"titre": deadline.Title, "date_echeance": deadline.DueDate, "date_alerte": deadline.AlertDate}
	alertDate := input.alertDate()
	if !alertDate.Equal(deadline.AlertDate) {
		deadline.AlertSentAt = nil
	}
	deadline.Title = strings.TrimSpace(input.Title)
	deadline.Description = input.Description
	deadline.DueDate = input.DueDate
	deadline.AlertDate = alertDate

	if err := s.db.WithContext(ctx).Save(deadline).Error; err != nil {
		return nil, fmt.Errorf("failed to update deadline: %w", err)
	}

	LogAdminAction(s.db, actor, models.AdminActionDeadlineSave, "echeance", deadline.ID, old,
		map[string]interface{}{"titre": deadline.Title, "date_echeance": deadline.DueDate, "date_alerte": deadline.AlertDate})
	return deadline, nil
}

// SetStatus marks a deadline active, handled or expired
func (s *DeadlineService) SetStatus(ctx context.Context, actor AuditContext, id, status string) (*models.Deadline, error) {
	if !models.IsValidDeadlineStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	deadline, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := deadline.Status
	if err := s.db.WithContext(ctx).Model(deadline).Update("statut", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update deadline status: %w", err)
	}
	deadline.Status = status

	LogAdminAction(s.db, actor, models.AdminActionDeadlineSave, "echeance", id,
		map[string]string{"statut": oldStatus}, map[string]string{"statut": status})
	return deadline, nil
}

// Delete removes a deadline
func (s *DeadlineService) Delete(ctx context.Context, actor AuditContext, id string) error {
	deadline, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(deadline).Error; err != nil {
		return fmt.Errorf("failed to delete deadline: %w", err)
	}
	LogAdminAction(s.db, actor, models.AdminActionDeadlineDelete, "echeance", id, map[string]string{"titre": deadline.Title}, nil)
	return nil
}

func (s *DeadlineService) get(ctx context.Context, id string) (*models.Deadline, error) {
	var deadline models.Deadline
	if err := s.db.WithContext(ctx).First(&deadline, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeadlineNotFound
		}
		return nil, fmt.Errorf("failed to fetch deadline: %w", err)
	}
	return &deadline, nil
}
