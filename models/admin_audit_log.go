package models

import (
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminAction names the operation an administrator performed
type AdminAction string

const (
	AdminActionCaseStatus     AdminAction = "dossier_statut"
	AdminActionCaseDelete     AdminAction = "dossier_suppression"
	AdminActionLetterValidate AdminAction = "courrier_validation"
	AdminActionLetterEdit     AdminAction = "courrier_modification"
	AdminActionLetterReject   AdminAction = "courrier_rejet"
	AdminActionLetterSend     AdminAction = "courrier_envoi"
	AdminActionTemplateSave   AdminAction = "modele_enregistrement"
	AdminActionTemplateDelete AdminAction = "modele_suppression"
	AdminActionCatalogSave    AdminAction = "catalogue_enregistrement"
	AdminActionRoleGrant      AdminAction = "role_attribution"
	AdminActionRoleRevoke     AdminAction = "role_retrait"
	AdminActionInvite         AdminAction = "invitation_admin"
	AdminActionConfigSet      AdminAction = "configuration"
	AdminActionPaymentSave    AdminAction = "paiement_enregistrement"
	AdminActionDeadlineSave   AdminAction = "echeance_enregistrement"
	AdminActionDeadlineDelete AdminAction = "echeance_suppression"
	AdminActionExport         AdminAction = "export"
)

// AdminAuditLog is an immutable record of an administrator action
type AdminAuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_admin_audit_created_at" json:"created_at"`

	AdminID    string `gorm:"type:uuid;not null;index:idx_admin_audit_admin" json:"admin_id"`
	AdminEmail string `json:"admin_email,omitempty"` // Denormalized

	Action     AdminAction `gorm:"not null;index:idx_admin_audit_action" json:"action"`
	TargetType string      `gorm:"not null;index:idx_admin_audit_target" json:"target_type"` // e.g. "dossier", "courrier"
	TargetID   string      `gorm:"not null;index:idx_admin_audit_target" json:"target_id"`

	OldValues string `gorm:"type:text" json:"old_values,omitempty"` // JSON encoded
	NewValues string `gorm:"type:text" json:"new_values,omitempty"` // JSON encoded

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// AuditChange represents a single field change
type AuditChange struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

// Changes diffs OldValues against NewValues, sorted by field name
func (a *AdminAuditLog) Changes() []AuditChange {
	oldMap := make(map[string]interface{})
	newMap := make(map[string]interface{})
	if a.OldValues != "" {
		_ = json.Unmarshal([]byte(a.OldValues), &oldMap)
	}
	if a.NewValues != "" {
		_ = json.Unmarshal([]byte(a.NewValues), &newMap)
	}

	keys := make(map[string]struct{}, len(oldMap)+len(newMap))
	for k := range oldMap {
		keys[k] = struct{}{}
	}
	for k := range newMap {
		keys[k] = struct{}{}
	}

	var changes []AuditChange
	for k := range keys {
		o, n := oldMap[k], newMap[k]
		if !reflect.DeepEqual(o, n) {
			changes = append(changes, AuditChange{Field: k, Old: o, New: n})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

// BeforeCreate hook to generate UUID
func (a *AdminAuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of audit entries
func (a *AdminAuditLog) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// BeforeDelete prevents deletion of audit entries
func (a *AdminAuditLog) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// TableName specifies the table name
func (AdminAuditLog) TableName() string {
	return "admin_audit_log"
}
