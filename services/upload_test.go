package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reclamassur/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a mock implementation of StorageProvider
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error) {
	args := m.Called(ctx, reader, key, contentType, size)
	if r := args.Get(0); r != nil {
		return r.(*StorageResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *MockStorage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GetPublicURL(key string) string { return "" }
func (m *MockStorage) IsConfigured() bool             { return true }

// createFileHeader builds a multipart file header the way echo hands it to handlers
func createFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files"][0]
}

func TestValidateDocumentUpload(t *testing.T) {
	assert.NoError(t, ValidateDocumentUpload(&multipart.FileHeader{Filename: "refus.PDF", Size: 1024}))
	assert.ErrorIs(t, ValidateDocumentUpload(&multipart.FileHeader{Filename: "script.exe", Size: 1024}), ErrValidation)
	assert.ErrorIs(t, ValidateDocumentUpload(&multipart.FileHeader{Filename: "big.pdf", Size: MaxUploadSize + 1}), ErrValidation)
	assert.ErrorIs(t, ValidateDocumentUpload(&multipart.FileHeader{Filename: "empty.pdf", Size: 0}), ErrValidation)
}

func TestAcquireCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit success keeps resource", func(t *testing.T) {
		compensated := false
		got, err := AcquireCommit(ctx,
			func(ctx context.Context) (string, error) { return "obj", nil },
			func(ctx context.Context, r string) error { return nil },
			func(ctx context.Context, r string) error { compensated = true; return nil },
		)
		assert.NoError(t, err)
		assert.Equal(t, "obj", got)
		assert.False(t, compensated)
	})

	t.Run("Commit failure compensates", func(t *testing.T) {
		var compensated string
		_, err := AcquireCommit(ctx,
			func(ctx context.Context) (string, error) { return "obj", nil },
			func(ctx context.Context, r string) error { return errors.New("insert failed") },
			func(ctx context.Context, r string) error { compensated = r; return nil },
		)
		assert.ErrorContains(t, err, "insert failed")
		assert.Equal(t, "obj", compensated)
	})

	t.Run("Acquire failure skips commit", func(t *testing.T) {
		committed := false
		_, err := AcquireCommit(ctx,
			func(ctx context.Context) (string, error) { return "", errors.New("bucket down") },
			func(ctx context.Context, r string) error { committed = true; return nil },
			func(ctx context.Context, r string) error { return nil },
		)
		assert.ErrorContains(t, err, "bucket down")
		assert.False(t, committed)
	})
}

func TestUploadService_Upload(t *testing.T) {
	db := setupTestDB(t)
	profile, caseRecord := seedCase(t, db)
	storage := NewLocalStorage(t.TempDir())
	svc := NewUploadService(db, storage, 0)
	ctx := context.Background()
	owner := Scope{UserID: profile.ID}

	doc, err := svc.Upload(ctx, owner, caseRecord.ID, createFileHeader(t, "refus.pdf", []byte("%PDF-1.4 refus")), models.DocumentTypeRefusalLetter)
	require.NoError(t, err)
	assert.Equal(t, "refus.pdf", doc.FileName)
	assert.Equal(t, models.DocumentTypeRefusalLetter, doc.DocumentType)
	assert.True(t, strings.HasPrefix(doc.StoragePath, profile.ID+"/"+caseRecord.ID+"/"))

	_, reader, _, err := svc.OpenDocument(ctx, owner, doc.ID)
	require.NoError(t, err)
	content, _ := io.ReadAll(reader)
	reader.Close()
	assert.Equal(t, "%PDF-1.4 refus", string(content))

	_, err = svc.Upload(ctx, Scope{UserID: "intruder"}, caseRecord.ID, createFileHeader(t, "x.pdf", []byte("x")), "")
	assert.ErrorIs(t, err, ErrCaseNotFound)

	_, _, _, err = svc.OpenDocument(ctx, Scope{UserID: "intruder"}, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, svc.DeleteDocument(ctx, owner, doc.ID))
	_, _, err = storage.Get(ctx, doc.StoragePath)
	assert.Error(t, err)
}

func TestUploadService_CompensatesOnInsertFailure(t *testing.T) {
	db := setupTestDB(t)
	profile, caseRecord := seedCase(t, db)

	storage := new(MockStorage)
	storage.On("UploadReader", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&StorageResult{Key: "k", FileSize: 3}, nil)
	storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	svc := NewUploadService(db, storage, 0)
	require.NoError(t, db.Migrator().DropTable(&models.Document{}))

	_, err := svc.Upload(context.Background(), Scope{UserID: profile.ID}, caseRecord.ID, createFileHeader(t, "a.pdf", []byte("abc")), "")
	require.Error(t, err)
	storage.AssertCalled(t, "Delete", mock.Anything, "k")
}

func TestUploadService_UploadBatchContinuesOnFailure(t *testing.T) {
	db := setupTestDB(t)
	profile, caseRecord := seedCase(t, db)
	svc := NewUploadService(db, NewLocalStorage(t.TempDir()), time.Millisecond)

	files := []*multipart.FileHeader{
		createFileHeader(t, "facture.pdf", []byte("%PDF facture")),
		createFileHeader(t, "virus.exe", []byte("MZ")),
		createFileHeader(t, "photo.jpg", []byte("jpeg")),
	}

	result := svc.UploadBatch(context.Background(), Scope{UserID: profile.ID}, caseRecord.ID, files, models.DocumentTypeOther)

	require.Len(t, result.Uploaded, 2)
	assert.Equal(t, "facture.pdf", result.Uploaded[0].FileName)
	assert.Equal(t, "photo.jpg", result.Uploaded[1].FileName)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "virus.exe", result.Failed[0].FileName)

	docs, err := svc.ListDocuments(context.Background(), Scope{UserID: profile.ID}, caseRecord.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
