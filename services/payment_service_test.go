package services

import (
	"context"
	"errors"
	"testing"

	"reclamassur/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_CreateAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	profile, caseRecord := seedCase(t, db)
	svc := NewPaymentService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, AuditContext{}, PaymentInput{CaseID: caseRecord.ID, Amount: 49})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.Create(ctx, AuditContext{}, PaymentInput{CaseID: "missing", PaymentIntentID: "pi_1", Amount: 49})
	assert.ErrorIs(t, err, ErrCaseNotFound)

	payment, err := svc.Create(ctx, AuditContext{}, PaymentInput{CaseID: caseRecord.ID, PaymentIntentID: "pi_1", Amount: 49, Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, payment.UserID)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, "eur", payment.Currency)
	assert.Nil(t, payment.PaidAt)

	updated, err := svc.Update(ctx, AuditContext{}, payment.ID, PaymentInput{Amount: 59, Status: models.PaymentStatusSucceeded})
	require.NoError(t, err)
	assert.Equal(t, 59.0, updated.Amount)
	assert.NotNil(t, updated.PaidAt)

	_, err = svc.Update(ctx, AuditContext{}, payment.ID, PaymentInput{Amount: 59, Status: "rembourse"})
	assert.True(t, errors.Is(err, ErrValidation))

	mine, err := svc.ListForUser(ctx, profile.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, total, err := svc.ListAll(ctx, models.PaymentStatusSucceeded, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, all, 1)
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	sig := SignPayload("whsec", payload)

	assert.True(t, VerifySignature("whsec", payload, sig))
	assert.True(t, VerifySignature("whsec", payload, "sha256="+sig))
	assert.False(t, VerifySignature("other", payload, sig))
	assert.False(t, VerifySignature("whsec", []byte(`{}`), sig))
	assert.False(t, VerifySignature("whsec", payload, "not-hex"))
	assert.False(t, VerifySignature("whsec", payload, ""))
}

func TestWebhookService_Process(t *testing.T) {
	db := setupTestDB(t)
	_, caseRecord := seedCase(t, db)
	payments := NewPaymentService(db)
	ctx := context.Background()

	payment, err := payments.Create(ctx, AuditContext{}, PaymentInput{CaseID: caseRecord.ID, PaymentIntentID: "pi_42", Amount: 49})
	require.NoError(t, err)

	svc := NewWebhookService(db, payments, "whsec")
	succeeded := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_42"}}}`)

	t.Run("Bad signature is rejected and logged", func(t *testing.T) {
		entry, err := svc.Process(ctx, "stripe", succeeded, "sha256=00")
		assert.ErrorIs(t, err, ErrInvalidSignature)
		var stored models.WebhookLog
		require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
		assert.Equal(t, models.WebhookStatusRejected, stored.Status)
	})

	t.Run("Succeeded event updates the payment", func(t *testing.T) {
		entry, err := svc.Process(ctx, "stripe", succeeded, SignPayload("whsec", succeeded))
		require.NoError(t, err)
		assert.Equal(t, models.WebhookStatusProcessed, entry.Status)
		assert.Equal(t, EventPaymentSucceeded, entry.EventType)

		var reloaded models.Payment
		require.NoError(t, db.First(&reloaded, "id = ?", payment.ID).Error)
		assert.Equal(t, models.PaymentStatusSucceeded, reloaded.Status)
		assert.NotNil(t, reloaded.PaidAt)

		var activity int64
		db.Model(&models.ActivityLog{}).Where("action = ?", models.ActivityPaymentUpdated).Count(&activity)
		assert.Equal(t, int64(1), activity)
	})

	t.Run("Unknown intent is acknowledged", func(t *testing.T) {
		body := []byte(`{"type":"payment_intent.canceled","data":{"object":{"id":"pi_unknown"}}}`)
		entry, err := svc.Process(ctx, "stripe", body, SignPayload("whsec", body))
		require.NoError(t, err)
		assert.Equal(t, models.WebhookStatusIgnored, entry.Status)
		require.NotNil(t, entry.Error)
	})

	t.Run("Unhandled event type is ignored", func(t *testing.T) {
		body := []byte(`{"type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)
		entry, err := svc.Process(ctx, "stripe", body, SignPayload("whsec", body))
		require.NoError(t, err)
		assert.Equal(t, models.WebhookStatusIgnored, entry.Status)
	})

	t.Run("Malformed payload", func(t *testing.T) {
		body := []byte(`not json`)
		_, err := svc.Process(ctx, "stripe", body, SignPayload("whsec", body))
		assert.ErrorIs(t, err, ErrValidation)
	})

	logs, total, err := ListWebhookLogs(db, "", 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, logs, 5)
}

func TestWebhookService_RequiredSignatureWithoutSecret(t *testing.T) {
	db := setupTestDB(t)
	_, caseRecord := seedCase(t, db)
	payments := NewPaymentService(db)
	ctx := context.Background()

	payment, err := payments.Create(ctx, AuditContext{}, PaymentInput{CaseID: caseRecord.ID, PaymentIntentID: "pi_prod", Amount: 49})
	require.NoError(t, err)
	body := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_prod"}}}`)

	t.Run("Production rejects every webhook", func(t *testing.T) {
		svc := NewWebhookService(db, payments, "").RequireSignature(true)
		entry, err := svc.Process(ctx, "stripe", body, SignPayload("", body))
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.Equal(t, models.WebhookStatusRejected, entry.Status)

		var reloaded models.Payment
		require.NoError(t, db.First(&reloaded, "id = ?", payment.ID).Error)
		assert.NotEqual(t, models.PaymentStatusSucceeded, reloaded.Status)
	})

	t.Run("Development skips the check", func(t *testing.T) {
		svc := NewWebhookService(db, payments, "").RequireSignature(false)
		entry, err := svc.Process(ctx, "stripe", body, "")
		require.NoError(t, err)
		assert.Equal(t, models.WebhookStatusProcessed, entry.Status)
	})
}
