package models

// All lists every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&UserRole{},
		&ClaimType{},
		&LetterType{},
		&ClaimLetterMapping{},
		&Case{},
		&Document{},
		&LetterTemplate{},
		&Letter{},
		&Deadline{},
		&Payment{},
		&ActivityLog{},
		&AdminAuditLog{},
		&AdminInvitation{},
		&Configuration{},
		&WebhookLog{},
	}
}
