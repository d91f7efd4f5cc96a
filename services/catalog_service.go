package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reclamassur/models"

	"gorm.io/gorm"
)

// CatalogInput is the editable part of a claim type or letter type
type CatalogInput struct {
	Code        string  `json:"code"`
	Label       string  `json:"libelle"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"actif"`
	SortOrder   int     `json:"ordre"`
}

// Validate checks the catalog entry shape
func (in *CatalogInput) Validate() error {
	var problems []string
	if !variableNameRegex.MatchString(strings.TrimSpace(in.Code)) {
		problems = append(problems, "code must match [a-zA-Z0-9_]+")
	}
	if strings.TrimSpace(in.Label) == "" {
		problems = append(problems, "libelle is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (in *CatalogInput) active() bool {
	return in.IsActive == nil || *in.IsActive
}

// CatalogService manages the claim-type and letter-type catalogs
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListClaimTypes returns claim types in display order
func (s *CatalogService) ListClaimTypes(ctx context.Context, activeOnly bool) ([]models.ClaimType, error) {
	query := s.db.WithContext(ctx).Order("ordre ASC, libelle ASC")
	if activeOnly {
		query = query.Where("actif = ?", true)
	}
	var items []models.ClaimType
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list claim types: %w", err)
	}
	return items, nil
}

// ListLetterTypes returns letter types in display order
func (s *CatalogService) ListLetterTypes(ctx context.Context, activeOnly bool) ([]models.LetterType, error) {
	query := s.db.WithContext(ctx).Order("ordre ASC, libelle ASC")
	if activeOnly {
		query = query.Where("actif = ?", true)
	}
	var items []models.LetterType
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list letter types: %w", err)
	}
	return items, nil
}

// SaveClaimType creates or updates the claim type with the given code
func (s *CatalogService) SaveClaimType(ctx context.Context, actor AuditContext, input CatalogInput) (*models.ClaimType, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(input.Code)

	var item models.ClaimType
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&item).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch claim type: %w", err)
	}
	old := map[string]interface{}{"libelle": item.Label, "actif": item.IsActive}

	item.Code = code
	item.Label = strings.TrimSpace(input.Label)
	item.Description = input.Description
	item.SortOrder = input.SortOrder
	item.IsActive = input.active()
	if err := s.saveWithActive(ctx, &item, item.ID == "", item.IsActive); err != nil {
		return nil, fmt.Errorf("failed to save claim type: %w", err)
	}
	item.IsActive = input.active()

	LogAdminAction(s.db, actor, models.AdminActionCatalogSave, "type_sinistre", item.ID, old,
		map[string]interface{}{"libelle": item.Label, "actif": item.IsActive})
	return &item, nil
}

// SaveLetterType creates or updates the letter type with the given code
func (s *CatalogService) SaveLetterType(ctx context.Context, actor AuditContext, input CatalogInput) (*models.LetterType, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(input.Code)

	var item models.LetterType
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&item).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch letter type: %w", err)
	}
	old := map[string]interface{}{"libelle": item.Label, "actif": item.IsActive}

	item.Code = code
	item.Label = strings.TrimSpace(input.Label)
	item.Description = input.Description
	item.SortOrder = input.SortOrder
	item.IsActive = input.active()
	if err := s.saveWithActive(ctx, &item, item.ID == "", item.IsActive); err != nil {
		return nil, fmt.Errorf("failed to save letter type: %w", err)
	}
	item.IsActive = input.active()

	LogAdminAction(s.db, actor, models.AdminActionCatalogSave, "type_courrier", item.ID, old,
		map[string]interface{}{"libelle": item.Label, "actif": item.IsActive})
	return &item, nil
}

// saveWithActive writes a catalog row. The actif column defaults to true, so an inactive
// row is created first and then switched off explicitly.
func (s *CatalogService) saveWithActive(ctx context.Context, row interface{}, isNew bool, active bool) error {
	tx := s.db.WithContext(ctx)
	if !isNew {
		return tx.Save(row).Error
	}
	if err := tx.Create(row).Error; err != nil {
		return err
	}
	if !active {
		return tx.Model(row).Update("actif", false).Error
	}
	return nil
}

// DeleteClaimType removes a claim type and its mappings. Cases keep their code and fall back
// to the legacy label or the raw code.
func (s *CatalogService) DeleteClaimType(ctx context.Context, actor AuditContext, code string) error {
	return s.deleteEntry(ctx, actor, &models.ClaimType{}, "type_sinistre", "type_sinistre_code", code)
}

// DeleteLetterType removes a letter type and its mappings
func (s *CatalogService) DeleteLetterType(ctx context.Context, actor AuditContext, code string) error {
	return s.deleteEntry(ctx, actor, &models.LetterType{}, "type_courrier", "type_courrier_code", code)
}

func (s *CatalogService) deleteEntry(ctx context.Context, actor AuditContext, model interface{}, targetType, mappingColumn, code string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("code = ?", code).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCatalogEntryMissing
		}
		return tx.Where(mappingColumn+" = ?", code).Delete(&models.ClaimLetterMapping{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrCatalogEntryMissing) {
			return fmt.Errorf("%w: %s %q", ErrCatalogEntryMissing, targetType, code)
		}
		return fmt.Errorf("failed to delete %s: %w", targetType, err)
	}

	LogAdminAction(s.db, actor, models.AdminActionCatalogSave, targetType, code, map[string]string{"code": code}, nil)
	return nil
}

// SetLetterTypesForClaimType replaces the letter types offered for a claim type
func (s *CatalogService) SetLetterTypesForClaimType(ctx context.Context, actor AuditContext, claimCode string, letterCodes []string) ([]models.ClaimLetterMapping, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ClaimType{}).Where("code = ?", claimCode).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check claim type: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: type_sinistre %q", ErrCatalogEntryMissing, claimCode)
	}

	unique := make([]string, 0, len(letterCodes))
	seen := make(map[string]bool)
	for _, code := range letterCodes {
		if seen[code] {
			continue
		}
		seen[code] = true
		unique = append(unique, code)
	}
	if len(unique) > 0 {
		var known int64
		if err := s.db.WithContext(ctx).Model(&models.LetterType{}).Where("code IN ?", unique).Count(&known).Error; err != nil {
			return nil, fmt.Errorf("failed to check letter types: %w", err)
		}
		if int(known) != len(unique) {
			return nil, fmt.Errorf("%w: unknown type_courrier in %v", ErrCatalogEntryMissing, unique)
		}
	}

	var previous []string
	mappings := make([]models.ClaimLetterMapping, 0, len(unique))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClaimLetterMapping{}).Where("type_sinistre_code = ?", claimCode).
			Pluck("type_courrier_code", &previous).Error; err != nil {
			return err
		}
		if err := tx.Where("type_sinistre_code = ?", claimCode).Delete(&models.ClaimLetterMapping{}).Error; err != nil {
			return err
		}
		for _, code := range unique {
			m := models.ClaimLetterMapping{ClaimTypeCode: claimCode, LetterTypeCode: code, IsActive: true}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			mappings = append(mappings, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set mappings: %w", err)
	}

	LogAdminAction(s.db, actor, models.AdminActionCatalogSave, "sinistre_courrier_mapping", claimCode,
		map[string][]string{"types_courriers": previous}, map[string][]string{"types_courriers": unique})
	return mappings, nil
}

// ListMappings returns every mapping, optionally for one claim type
func (s *CatalogService) ListMappings(ctx context.Context, claimCode string) ([]models.ClaimLetterMapping, error) {
	query := s.db.WithContext(ctx).Order("type_sinistre_code ASC, type_courrier_code ASC")
	if claimCode != "" {
		query = query.Where("type_sinistre_code = ?", claimCode)
	}
	var mappings []models.ClaimLetterMapping
	if err := query.Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return mappings, nil
}

// AllowedLetterTypes returns the active letter types offered for a claim type. A claim type
// without any mapping is offered every active letter type.
func (s *CatalogService) AllowedLetterTypes(ctx context.Context, claimCode string) ([]models.LetterType, error) {
	var mapped int64
	if err := s.db.WithContext(ctx).Model(&models.ClaimLetterMapping{}).
		Where("type_sinistre_code = ?", claimCode).Count(&mapped).Error; err != nil {
		return nil, fmt.Errorf("failed to count mappings: %w", err)
	}
	if mapped == 0 {
		return s.ListLetterTypes(ctx, true)
	}

	var items []models.LetterType
	err := s.db.WithContext(ctx).
		Joins("JOIN sinistre_courrier_mapping m ON m.type_courrier_code = types_courriers.code").
		Where("m.type_sinistre_code = ? AND m.actif = ? AND types_courriers.actif = ?", claimCode, true, true).
		Order("types_courriers.ordre ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list allowed letter types: %w", err)
	}
	return items, nil
}
