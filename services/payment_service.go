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

// PaymentInput is the admin-editable part of a payment
type PaymentInput struct {
	CaseID          string  `json:"dossier_id"`
	PaymentIntentID string  `json:"payment_intent_id"`
	Amount          float64 `json:"montant"`
	Currency        string  `json:"devise"`
	Status          string  `json:"statut"`
	Description     *string `json:"description"`
}

// Validate checks the payment shape
func (in *PaymentInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.PaymentIntentID) == "" {
		problems = append(problems, "payment_intent_id is required")
	}
	if in.Amount < 0 {
		problems = append(problems, "montant must not be negative")
	}
	if in.Status != "" && !models.IsValidPaymentStatus(in.Status) {
		problems = append(problems, fmt.Sprintf("invalid statut %q", in.Status))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// PaymentService records and lists case payments
type PaymentService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPaymentService creates a payment service
func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, now: time.Now}
}

// Create records a payment for a case on behalf of its owner
func (s *PaymentService) Create(ctx context.Context, actor AuditContext, input PaymentInput) (*models.Payment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var caseRecord models.Case
	if err := s.db.WithContext(ctx).First(&caseRecord, "id = ?", input.CaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}

	payment := &models.Payment{
		CaseID:          caseRecord.ID,
		UserID:          caseRecord.UserID,
		PaymentIntentID: strings.TrimSpace(input.PaymentIntentID),
		Amount:          input.Amount,
		Currency:        strings.ToLower(input.Currency),
		Status:          input.Status,
		Description:     input.Description,
	}
	if payment.Status == models.PaymentStatusSucceeded {
		now := s.now()
		payment.PaidAt = &now
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	LogAdminAction(s.db, actor, models.AdminActionPaymentSave, "paiement", payment.ID, nil,
		map[string]interface{}{"montant": payment.Amount, "statut": payment.Status})
	return payment, nil
}

// Update changes amount, status and description of a payment
func (s *PaymentService) Update(ctx context.Context, actor AuditContext, id string, input PaymentInput) (*models.Payment, error) {
	payment, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.PaymentIntentID == "" {
		input.PaymentIntentID = payment.PaymentIntentID
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	old := map[string]interface{}{"montant": payment.Amount, "statut": payment.Status}
	payment.Amount = input.Amount
	payment.Description = input.Description
	if input.Status != "" {
		s.applyStatus(payment, input.Status)
	}
	if err := s.db.WithContext(ctx).Save(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	LogAdminAction(s.db, actor, models.AdminActionPaymentSave, "paiement", payment.ID, old,
		map[string]interface{}{"montant": payment.Amount, "statut": payment.Status})
	return payment, nil
}

// applyStatus sets the status and stamps the first successful payment
func (s *PaymentService) applyStatus(payment *models.Payment, status string) {
	payment.Status = status
	if status == models.PaymentStatusSucceeded && payment.PaidAt == nil {
		now := s.now()
		payment.PaidAt = &now
	}
}

// ListForUser returns the payments of a client
func (s *PaymentService) ListForUser(ctx context.Context, userID string) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// ListAll returns payments across clients, optionally by status, paginated
func (s *PaymentService) ListAll(ctx context.Context, status string, page, pageSize int) ([]models.Payment, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := s.db.WithContext(ctx).Model(&models.Payment{})
	if status != "" {
		query = query.Where("statut = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	var payments []models.Payment
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (s *PaymentService) get(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return &payment, nil
}
