package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"reclamassur/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MaxUploadSize = 10 * 1024 * 1024 // 10MB

var allowedUploadExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
	".jpg": true, ".jpeg": true, ".png": true,
}

// ValidateDocumentUpload checks the size and extension of an uploaded file
func ValidateDocumentUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxUploadSize {
		return fmt.Errorf("%w: file size exceeds maximum allowed size of 10MB", ErrValidation)
	}
	if fileHeader.Size == 0 {
		return fmt.Errorf("%w: file is empty", ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExtensions[ext] {
		return fmt.Errorf("%w: file type not allowed. Accepted formats: PDF, DOC, DOCX, TXT, JPG, PNG", ErrValidation)
	}
	return nil
}

// AcquireCommit runs a two-phase write: acquire a resource, commit its metadata, and release the
// resource through compensate when the commit fails. Compensation errors are logged; the commit
// error is returned.
func AcquireCommit[T any](
	ctx context.Context,
	acquire func(ctx context.Context) (T, error),
	commit func(ctx context.Context, resource T) error,
	compensate func(ctx context.Context, resource T) error,
) (T, error) {
	resource, err := acquire(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("acquire: %w", err)
	}

	if err := commit(ctx, resource); err != nil {
		if cErr := compensate(context.WithoutCancel(ctx), resource); cErr != nil {
			zap.L().Error("compensation failed", zap.NamedError("commit_error", err), zap.Error(cErr))
		}
		var zero T
		return zero, fmt.Errorf("commit: %w", err)
	}
	return resource, nil
}

// UploadFailure records why one file of a batch was not stored
type UploadFailure struct {
	FileName string `json:"nom_fichier"`
	Error    string `json:"error"`
}

// BatchResult is the outcome of a multi-file upload
type BatchResult struct {
	Uploaded []models.Document `json:"uploaded"`
	Failed   []UploadFailure   `json:"failed"`
}

// UploadService stores case documents and their metadata rows
type UploadService struct {
	db      *gorm.DB
	storage StorageProvider
	pause   time.Duration
}

// NewUploadService creates an upload service; pause separates files of a batch
func NewUploadService(db *gorm.DB, storage StorageProvider, pause time.Duration) *UploadService {
	return &UploadService{db: db, storage: storage, pause: pause}
}

// Upload validates and stores one file for a case, then inserts its document row.
// The stored object is removed again when the row cannot be inserted.
func (s *UploadService) Upload(ctx context.Context, scope Scope, caseID string, fileHeader *multipart.FileHeader, documentType string) (*models.Document, error) {
	if err := ValidateDocumentUpload(fileHeader); err != nil {
		return nil, err
	}
	if documentType == "" {
		documentType = models.DocumentTypeOther
	}
	if !models.IsValidDocumentType(documentType) {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrValidation, documentType)
	}

	caseRecord, err := s.loadCase(ctx, scope, caseID)
	if err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimeTypeForExtension(filepath.Ext(fileHeader.Filename))
	}
	key := GenerateCaseDocumentKey(caseRecord.UserID, caseRecord.ID, fileHeader.Filename)

	var doc *models.Document
	_, err = AcquireCommit(ctx,
		func(ctx context.Context) (*StorageResult, error) {
			src, err := fileHeader.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open file: %w", err)
			}
			defer src.Close()
			return s.storage.UploadReader(ctx, src, key, contentType, fileHeader.Size)
		},
		func(ctx context.Context, stored *StorageResult) error {
			doc = &models.Document{
				CaseID:       caseRecord.ID,
				UploadedByID: scope.UserID,
				FileName:     filepath.Base(fileHeader.Filename),
				StoragePath:  stored.Key,
				URL:          stored.URL,
				MimeType:     contentType,
				FileSize:     stored.FileSize,
				DocumentType: documentType,
			}
			return s.db.WithContext(ctx).Create(doc).Error
		},
		func(ctx context.Context, stored *StorageResult) error {
			return s.storage.Delete(ctx, stored.Key)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", fileHeader.Filename, err)
	}

	LogActivity(s.db, scope.UserID, caseRecord.ID, models.ActivityDocumentUploaded, map[string]interface{}{
		"nom_fichier": doc.FileName,
		"taille":      doc.FileSize,
	})
	return doc, nil
}

// UploadBatch uploads files one at a time with a pause between them. A failed file is
// recorded and the batch continues.
func (s *UploadService) UploadBatch(ctx context.Context, scope Scope, caseID string, files []*multipart.FileHeader, documentType string) BatchResult {
	result := BatchResult{Uploaded: []models.Document{}, Failed: []UploadFailure{}}
	for i, fh := range files {
		if i > 0 && s.pause > 0 {
			select {
			case <-ctx.Done():
				for _, rest := range files[i:] {
					result.Failed = append(result.Failed, UploadFailure{FileName: rest.Filename, Error: ctx.Err().Error()})
				}
				return result
			case <-time.After(s.pause):
			}
		}

		doc, err := s.Upload(ctx, scope, caseID, fh, documentType)
		if err != nil {
			zap.L().Warn("batch upload: file failed", zap.String("file", fh.Filename), zap.Error(err))
			result.Failed = append(result.Failed, UploadFailure{FileName: fh.Filename, Error: err.Error()})
			continue
		}
		result.Uploaded = append(result.Uploaded, *doc)
	}
	return result
}

// ListDocuments returns the documents of a case visible to scope
func (s *UploadService) ListDocuments(ctx context.Context, scope Scope, caseID string) ([]models.Document, error) {
	if _, err := s.loadCase(ctx, scope, caseID); err != nil {
		return nil, err
	}
	var docs []models.Document
	if err := s.db.WithContext(ctx).Where("dossier_id = ?", caseID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// OpenDocument streams a stored document
func (s *UploadService) OpenDocument(ctx context.Context, scope Scope, docID string) (*models.Document, io.ReadCloser, string, error) {
	doc, err := s.loadDocument(ctx, scope, docID)
	if err != nil {
		return nil, nil, "", err
	}
	reader, contentType, err := s.storage.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, "", err
	}
	return doc, reader, contentType, nil
}

// SignedDocumentURL returns a temporary download URL for a document
func (s *UploadService) SignedDocumentURL(ctx context.Context, scope Scope, docID string, ttl time.Duration) (string, error) {
	doc, err := s.loadDocument(ctx, scope, docID)
	if err != nil {
		return "", err
	}
	return s.storage.GetSignedURL(ctx, doc.StoragePath, ttl)
}

// DeleteDocument removes the document row, then its stored object
func (s *UploadService) DeleteDocument(ctx context.Context, scope Scope, docID string) error {
	doc, err := s.loadDocument(ctx, scope, docID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(doc).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		zap.L().Warn("stored object not removed", zap.String("key", doc.StoragePath), zap.Error(err))
	}

	LogActivity(s.db, scope.UserID, doc.CaseID, models.ActivityDocumentDeleted, map[string]string{"nom_fichier": doc.FileName})
	return nil
}

func (s *UploadService) loadCase(ctx context.Context, scope Scope, caseID string) (*models.Case, error) {
	var caseRecord models.Case
	if err := s.db.WithContext(ctx).First(&caseRecord, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}
	if !scope.CanAccess(&caseRecord) {
		return nil, ErrCaseNotFound
	}
	return &caseRecord, nil
}

func (s *UploadService) loadDocument(ctx context.Context, scope Scope, docID string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).Preload("Case").First(&doc, "id = ?", docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	if doc.Case == nil || !scope.CanAccess(doc.Case) {
		return nil, ErrDocumentNotFound
	}
	return &doc, nil
}
