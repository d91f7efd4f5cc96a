package services

import "errors"

var (
	ErrCaseNotFound        = errors.New("dossier not found")
	ErrMissingProfile      = errors.New("client profile missing for dossier")
	ErrForbidden           = errors.New("access denied")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTemplateNotFound    = errors.New("letter template not found")
	ErrLetterNotFound      = errors.New("letter not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDeadlineNotFound    = errors.New("deadline not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvitationInvalid   = errors.New("invitation code invalid or expired")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrCatalogEntryMissing = errors.New("catalog entry not found")
	ErrInvalidLetterType   = errors.New("invalid letter type")
	ErrValidation          = errors.New("validation failed")
)
