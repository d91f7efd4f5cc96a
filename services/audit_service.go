package services

import (
	"encoding/json"
	"time"

	"reclamassur/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditContext identifies who performs an action and from where
type AuditContext struct {
	UserID    string
	Email     string
	Role      string
	IPAddress string
	UserAgent string
}

// LogAdminAction records an administrator action. Failures are logged, never returned,
// so the audited operation is not undone by an audit write error.
func LogAdminAction(
	db *gorm.DB,
	ctx AuditContext,
	action models.AdminAction,
	targetType string,
	targetID string,
	oldValues interface{},
	newValues interface{},
) {
	entry := models.AdminAuditLog{
		AdminID:    ctx.UserID,
		AdminEmail: ctx.Email,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		OldValues:  marshalAuditValues(oldValues),
		NewValues:  marshalAuditValues(newValues),
		IPAddress:  ctx.IPAddress,
		UserAgent:  ctx.UserAgent,
	}

	if err := db.Create(&entry).Error; err != nil {
		zap.L().Error("failed to write admin audit log",
			zap.String("action", string(action)),
			zap.String("target_id", targetID),
			zap.Error(err))
	}
}

// LogActivity records a user-facing action on a case
func LogActivity(db *gorm.DB, userID, caseID, action string, details interface{}) {
	entry := models.ActivityLog{
		UserID:  ptrIfNotEmpty(userID),
		CaseID:  ptrIfNotEmpty(caseID),
		Action:  action,
		Details: marshalAuditValues(details),
	}
	if err := db.Create(&entry).Error; err != nil {
		zap.L().Error("failed to write activity log", zap.String("action", action), zap.Error(err))
	}
}

func marshalAuditValues(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// AuditLogFilters contains filter options for audit and activity log queries
type AuditLogFilters struct {
	UserID     string
	CaseID     string
	TargetType string
	Action     string
	DateFrom   time.Time
	DateTo     time.Time
}

// GetTargetAuditHistory retrieves the admin actions performed on one record
func GetTargetAuditHistory(db *gorm.DB, targetType, targetID string) ([]models.AdminAuditLog, error) {
	var logs []models.AdminAuditLog
	err := db.Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// ListAdminAuditLogs retrieves paginated admin audit entries
func ListAdminAuditLogs(db *gorm.DB, filters AuditLogFilters, page, pageSize int) ([]models.AdminAuditLog, int64, error) {
	query := db.Model(&models.AdminAuditLog{})

	if filters.UserID != "" {
		query = query.Where("admin_id = ?", filters.UserID)
	}
	if filters.TargetType != "" {
		query = query.Where("target_type = ?", filters.TargetType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	query = applyDateRange(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AdminAuditLog
	page, pageSize = normalizePage(page, pageSize)
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// ListActivityLogs retrieves paginated user activity entries
func ListActivityLogs(db *gorm.DB, filters AuditLogFilters, page, pageSize int) ([]models.ActivityLog, int64, error) {
	query := db.Model(&models.ActivityLog{})

	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.CaseID != "" {
		query = query.Where("dossier_id = ?", filters.CaseID)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	query = applyDateRange(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.ActivityLog
	page, pageSize = normalizePage(page, pageSize)
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

func applyDateRange(query *gorm.DB, filters AuditLogFilters) *gorm.DB {
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}
	return query
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return page, pageSize
}
