package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reclamassur/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment events handled by the webhook
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventPaymentCanceled  = "payment_intent.canceled"
)

var eventStatuses = map[string]string{
	EventPaymentSucceeded: models.PaymentStatusSucceeded,
	EventPaymentFailed:    models.PaymentStatusFailed,
	EventPaymentCanceled:  models.PaymentStatusCanceled,
}

// paymentEvent is the subset of the provider event the webhook reads
type paymentEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// SignPayload returns the hex HMAC-SHA256 of the payload
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a "sha256=<hex>" or bare hex signature in constant time
func VerifySignature(secret string, payload []byte, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	given, err := hex.DecodeString(signature)
	if err != nil || len(given) == 0 {
		return false
	}
	expected, _ := hex.DecodeString(SignPayload(secret, payload))
	return hmac.Equal(given, expected)
}

// WebhookService logs inbound payment webhooks and applies them to payments
type WebhookService struct {
	db            *gorm.DB
	payments      *PaymentService
	secret        string
	requireSecret bool
}

// NewWebhookService creates a webhook service. An empty secret disables signature checks
// unless RequireSignature is set.
func NewWebhookService(db *gorm.DB, payments *PaymentService, secret string) *WebhookService {
	return &WebhookService{db: db, payments: payments, secret: secret}
}

// RequireSignature makes an empty secret reject every webhook instead of skipping the check.
// Production servers always set it.
func (s *WebhookService) RequireSignature(required bool) *WebhookService {
	s.requireSecret = required
	return s
}

func (s *WebhookService) signatureValid(payload []byte, signature string) bool {
	if s.secret == "" {
		return !s.requireSecret
	}
	return VerifySignature(s.secret, payload, signature)
}

// Process stores the raw payload, then verifies and applies it. Only ErrInvalidSignature,
// a malformed payload or a storage failure return an error; unknown events and intents are
// acknowledged as ignored.
func (s *WebhookService) Process(ctx context.Context, source string, payload []byte, signature string) (*models.WebhookLog, error) {
	entry := &models.WebhookLog{Source: source}
	if json.Valid(payload) {
		entry.Payload = datatypes.JSON(payload)
	} else {
		quoted, _ := json.Marshal(string(payload))
		entry.Payload = datatypes.JSON(quoted)
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to log webhook: %w", err)
	}

	if !s.signatureValid(payload, signature) {
		if s.secret == "" {
			zap.L().Error("webhook rejected: WEBHOOK_SECRET is not configured", zap.String("source", source))
		}
		s.finish(ctx, entry, models.WebhookStatusRejected, ErrInvalidSignature)
		return entry, ErrInvalidSignature
	}

	var event paymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		err = fmt.Errorf("%w: malformed payload: %v", ErrValidation, err)
		s.finish(ctx, entry, models.WebhookStatusRejected, err)
		return entry, err
	}
	entry.EventType = event.Type

	status, handled := eventStatuses[event.Type]
	if !handled {
		s.finish(ctx, entry, models.WebhookStatusIgnored, nil)
		return entry, nil
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Where("payment_intent_id = ?", event.Data.Object.ID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		zap.L().Warn("webhook for unknown payment intent", zap.String("payment_intent_id", event.Data.Object.ID))
		s.finish(ctx, entry, models.WebhookStatusIgnored, fmt.Errorf("unknown payment intent %q", event.Data.Object.ID))
		return entry, nil
	}
	if err != nil {
		s.finish(ctx, entry, models.WebhookStatusFailed, err)
		return entry, fmt.Errorf("failed to fetch payment: %w", err)
	}

	oldStatus := payment.Status
	s.payments.applyStatus(&payment, status)
	if err := s.db.WithContext(ctx).Save(&payment).Error; err != nil {
		s.finish(ctx, entry, models.WebhookStatusFailed, err)
		return entry, fmt.Errorf("failed to update payment: %w", err)
	}

	LogActivity(s.db, payment.UserID, payment.CaseID, models.ActivityPaymentUpdated,
		map[string]string{"paiement_id": payment.ID, "ancien_statut": oldStatus, "statut": payment.Status, "event": event.Type})
	s.finish(ctx, entry, models.WebhookStatusProcessed, nil)
	return entry, nil
}

func (s *WebhookService) finish(ctx context.Context, entry *models.WebhookLog, status string, cause error) {
	entry.Status = status
	updates := map[string]interface{}{"status": status, "event_type": entry.EventType}
	if cause != nil {
		msg := cause.Error()
		entry.Error = &msg
		updates["error"] = msg
	}
	if err := s.db.WithContext(ctx).Model(&models.WebhookLog{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to update webhook log", zap.String("webhook_id", entry.ID), zap.Error(err))
	}
}

// ListWebhookLogs returns the most recent webhook logs, optionally by status
func ListWebhookLogs(db *gorm.DB, status string, page, pageSize int) ([]models.WebhookLog, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := db.Model(&models.WebhookLog{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count webhook logs: %w", err)
	}
	var logs []models.WebhookLog
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list webhook logs: %w", err)
	}
	return logs, total, nil
}
