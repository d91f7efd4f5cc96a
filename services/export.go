package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"reclamassur/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	sheetCases    = "Dossiers"
	sheetPayments = "Paiements"
)

// ExportWorkbook writes cases and payments to an .xlsx workbook with one sheet each
func ExportWorkbook(ctx context.Context, db *gorm.DB, actor AuditContext, filters CaseFilters) (*bytes.Buffer, error) {
	query := db.WithContext(ctx).Preload("Client").Order("created_at DESC")
	if filters.Status != "" {
		query = query.Where("statut = ?", filters.Status)
	}
	if filters.ClaimType != "" {
		query = query.Where("type_sinistre = ?", filters.ClaimType)
	}
	var cases []models.Case
	if err := query.Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch dossiers: %w", err)
	}

	var payments []models.Payment
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetCases); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetPayments); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	caseHeaders := []string{"ID", "Créé le", "Client", "Email", "Assureur", "N° police", "Type de sinistre",
		"Date du sinistre", "Date du refus", "Montant refusé", "Motif du refus", "Statut"}
	writeHeader(f, sheetCases, caseHeaders, headerStyle)
	for i, c := range cases {
		clientName, clientEmail := "", ""
		if c.Client != nil {
			clientName, clientEmail = c.Client.FullName(), c.Client.Email
		}
		row := []interface{}{
			c.ID, c.CreatedAt.Format("02/01/2006"), clientName, clientEmail, c.InsurerName, c.PolicyNumber,
			ResolveClaimTypeLabel(db, c.ClaimType), formatOptionalDate(c.IncidentDate), formatOptionalDate(c.RefusalDate),
			optionalFloat(c.RefusedAmount), safeString(c.RefusalReason), c.Status,
		}
		writeRow(f, sheetCases, i+2, row)
	}
	f.SetColWidth(sheetCases, "A", "L", 20)

	paymentHeaders := []string{"ID", "Créé le", "Dossier", "Payment intent", "Montant", "Devise", "Statut", "Payé le"}
	writeHeader(f, sheetPayments, paymentHeaders, headerStyle)
	for i, p := range payments {
		row := []interface{}{
			p.ID, p.CreatedAt.Format("02/01/2006"), p.CaseID, p.PaymentIntentID, p.Amount,
			p.Currency, p.Status, formatOptionalDate(p.PaidAt),
		}
		writeRow(f, sheetPayments, i+2, row)
	}
	f.SetColWidth(sheetPayments, "A", "H", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}

	LogAdminAction(db, actor, models.AdminActionExport, "export", "", nil,
		map[string]int{"dossiers": len(cases), "paiements": len(payments)})
	return buf, nil
}

// ExportFileName returns the download name of an export made at t
func ExportFileName(t time.Time) string {
	return "reclamassur_export_" + t.Format("20060102_1504") + ".xlsx"
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, rowIndex int, values []interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowIndex)
		f.SetCellValue(sheet, cell, v)
	}
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatShortDateFR(*t)
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
