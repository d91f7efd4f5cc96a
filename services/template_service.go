package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"reclamassur/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var variableNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// TemplateInput is the admin-editable content of a letter template
type TemplateInput struct {
	Name              string   `json:"nom"`
	Description       *string  `json:"description"`
	ClaimType         string   `json:"type_sinistre"`
	LetterType        string   `json:"type_courrier"`
	Content           string   `json:"contenu"`
	RequiredVariables []string `json:"variables_requises"`
	IsActive          *bool    `json:"actif"`
}

// TemplateFilters narrows the template listing
type TemplateFilters struct {
	ClaimType  string
	LetterType string
	ActiveOnly bool
}

// TemplateService manages letter templates and renders them against cases
type TemplateService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTemplateService creates a template service
func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db, now: time.Now}
}

// normalize validates the plain-text content and the required variable list. An omitted list
// is derived from the placeholders of the content.
func (s *TemplateService) normalize(input TemplateInput) (TemplateInput, error) {
	input.Name = strings.TrimSpace(input.Name)

	var problems []string
	if input.Name == "" {
		problems = append(problems, "nom is required")
	}
	if strings.TrimSpace(input.ClaimType) == "" {
		problems = append(problems, "type_sinistre is required")
	}
	if strings.TrimSpace(input.LetterType) == "" {
		problems = append(problems, "type_courrier is required")
	}
	if problem := plainTextProblem("contenu", input.Content); problem != "" {
		problems = append(problems, problem)
	}

	if input.RequiredVariables == nil {
		input.RequiredVariables = ExtractVariables(input.Content)
	} else {
		present := make(map[string]bool)
		for _, name := range ExtractVariables(input.Content) {
			present[name] = true
		}
		for _, name := range input.RequiredVariables {
			switch {
			case !variableNameRegex.MatchString(name):
				problems = append(problems, fmt.Sprintf("invalid variable name %q", name))
			case !present[name]:
				problems = append(problems, fmt.Sprintf("variable %q is not used in contenu", name))
			}
		}
	}

	if len(problems) > 0 {
		return input, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return input, nil
}

// List returns templates matching the filters
func (s *TemplateService) List(ctx context.Context, filters TemplateFilters) ([]models.LetterTemplate, error) {
	query := s.db.WithContext(ctx).Model(&models.LetterTemplate{})
	if filters.ClaimType != "" {
		query = query.Where("type_sinistre = ?", filters.ClaimType)
	}
	if filters.LetterType != "" {
		query = query.Where("type_courrier = ?", filters.LetterType)
	}
	if filters.ActiveOnly {
		query = query.Where("actif = ?", true)
	}

	var templates []models.LetterTemplate
	if err := query.Order("nom ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// Get loads one template
func (s *TemplateService) Get(ctx context.Context, id string) (*models.LetterTemplate, error) {
	var tmpl models.LetterTemplate
	if err := s.db.WithContext(ctx).First(&tmpl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	return &tmpl, nil
}

// Create validates and stores a new template
func (s *TemplateService) Create(ctx context.Context, actor AuditContext, input TemplateInput) (*models.LetterTemplate, error) {
	input, err := s.normalize(input)
	if err != nil {
		return nil, err
	}

	tmpl := &models.LetterTemplate{
		Name:              input.Name,
		Description:       input.Description,
		ClaimType:         input.ClaimType,
		LetterType:        input.LetterType,
		Content:           input.Content,
		RequiredVariables: datatypes.NewJSONSlice(input.RequiredVariables),
		IsActive:          true,
		CreatedByID:       ptrIfNotEmpty(actor.UserID),
	}
	if err := s.db.WithContext(ctx).Create(tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	if input.IsActive != nil && !*input.IsActive {
		if err := s.db.WithContext(ctx).Model(tmpl).Update("actif", false).Error; err != nil {
			return nil, fmt.Errorf("failed to deactivate template: %w", err)
		}
		tmpl.IsActive = false
	}

	LogAdminAction(s.db, actor, models.AdminActionTemplateSave, "modele", tmpl.ID, nil, map[string]string{"nom": tmpl.Name})
	return tmpl, nil
}

// Update replaces the content of a template
func (s *TemplateService) Update(ctx context.Context, actor AuditContext, id string, input TemplateInput) (*models.LetterTemplate, error) {
	tmpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input, err = s.normalize(input)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"nom": tmpl.Name, "contenu": tmpl.Content, "actif": tmpl.IsActive}
	tmpl.Name = input.Name
	tmpl.Description = input.Description
	tmpl.ClaimType = input.ClaimType
	tmpl.LetterType = input.LetterType
	tmpl.Content = input.Content
	tmpl.RequiredVariables = datatypes.NewJSONSlice(input.RequiredVariables)
	if input.IsActive != nil {
		tmpl.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Save(tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	LogAdminAction(s.db, actor, models.AdminActionTemplateSave, "modele", tmpl.ID, old,
		map[string]interface{}{"nom": tmpl.Name, "contenu": tmpl.Content, "actif": tmpl.IsActive})
	return tmpl, nil
}

// Delete removes a template
func (s *TemplateService) Delete(ctx context.Context, actor AuditContext, id string) error {
	tmpl, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(tmpl).Error; err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	LogAdminAction(s.db, actor, models.AdminActionTemplateDelete, "modele", id, map[string]string{"nom": tmpl.Name}, nil)
	return nil
}

// Analyze loads a template and a case and partitions the template variables
func (s *TemplateService) Analyze(ctx context.Context, scope Scope, templateID, caseID string) (*models.LetterTemplate, TemplateAnalysis, error) {
	tmpl, caseRecord, err := s.load(ctx, scope, templateID, caseID)
	if err != nil {
		return nil, TemplateAnalysis{}, err
	}
	return tmpl, AnalyzeTemplate(tmpl.Content, BuildCaseVariables(s.db, caseRecord, s.now())), nil
}

// Render fills a template for a case with the automatic values and the given manual values
func (s *TemplateService) Render(ctx context.Context, scope Scope, templateID, caseID string, manual map[string]string) (*models.LetterTemplate, string, error) {
	tmpl, caseRecord, err := s.load(ctx, scope, templateID, caseID)
	if err != nil {
		return nil, "", err
	}
	return tmpl, RenderTemplate(tmpl.Content, BuildCaseVariables(s.db, caseRecord, s.now()), manual), nil
}

func (s *TemplateService) load(ctx context.Context, scope Scope, templateID, caseID string) (*models.LetterTemplate, *models.Case, error) {
	tmpl, err := s.Get(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}

	var caseRecord models.Case
	if err := s.db.WithContext(ctx).Preload("Client").First(&caseRecord, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCaseNotFound
		}
		return nil, nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}
	if !scope.CanAccess(&caseRecord) {
		return nil, nil, ErrCaseNotFound
	}
	return tmpl, &caseRecord, nil
}
