package jobs

import (
	"time"

	"reclamassur/config"
	"reclamassur/models"
	"reclamassur/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeadlineRun summarizes one pass of ProcessDeadlines
type DeadlineRun struct {
	Expired int
	Alerted int
	Failed  int
}

// ProcessDeadlines expires active deadlines past their due date, then e-mails the client of
// every active deadline whose alert date is reached and that was never alerted
func ProcessDeadlines(database *gorm.DB, cfg *config.Config, now time.Time) DeadlineRun {
	var run DeadlineRun

	res := database.Model(&models.Deadline{}).
		Where("statut = ? AND date_echeance < ?", models.DeadlineStatusActive, now).
		Update("statut", models.DeadlineStatusExpired)
	if res.Error != nil {
		zap.L().Error("failed to expire deadlines", zap.Error(res.Error))
	} else {
		run.Expired = int(res.RowsAffected)
	}

	var deadlines []models.Deadline
	err := database.Preload("Case").Preload("Case.Client").
		Where("statut = ?", models.DeadlineStatusActive).
		Where("date_alerte <= ?", now).
		Where("alerte_envoyee_le IS NULL").
		Find(&deadlines).Error
	if err != nil {
		zap.L().Error("failed to fetch deadlines to alert", zap.Error(err))
		return run
	}

	for _, d := range deadlines {
		if d.Case == nil || d.Case.Client == nil || d.Case.Client.Email == "" {
			zap.L().Warn("deadline has no client e-mail", zap.String("echeance_id", d.ID))
			run.Failed++
			continue
		}

		description := ""
		if d.Description != nil {
			description = *d.Description
		}
		email, err := services.BuildDeadlineAlertEmail(d.Case.Client.Email, services.DeadlineAlertEmailData{
			ClientName:   d.Case.Client.FullName(),
			PolicyNumber: d.Case.PolicyNumber,
			Insurer:      d.Case.InsurerName,
			Title:        d.Title,
			Description:  description,
			DueDate:      services.FormatLongDateFR(d.DueDate),
			CaseLink:     services.CaseLink(cfg.AppURL, d.CaseID),
		})
		if err == nil {
			err = services.SendEmail(cfg, email)
		}
		if err != nil {
			zap.L().Error("failed to send deadline alert", zap.String("echeance_id", d.ID), zap.Error(err))
			run.Failed++
			continue
		}

		sentAt := now
		if err := database.Model(&models.Deadline{}).Where("id = ?", d.ID).Update("alerte_envoyee_le", sentAt).Error; err != nil {
			zap.L().Error("failed to mark deadline alerted", zap.String("echeance_id", d.ID), zap.Error(err))
			run.Failed++
			continue
		}
		run.Alerted++
	}

	zap.L().Info("deadline job completed",
		zap.Int("expired", run.Expired),
		zap.Int("alerted", run.Alerted),
		zap.Int("failed", run.Failed))
	return run
}
