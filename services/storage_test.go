package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reclamassur/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "hello storage"
	key := "user-1/case-1/file.txt"

	t.Run("UploadReader creates file", func(t *testing.T) {
		result, err := storage.UploadReader(ctx, strings.NewReader(content), key, "text/plain", int64(len(content)))
		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.EqualValues(t, len(content), result.FileSize)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves file content", func(t *testing.T) {
		reader, contentType, err := storage.Get(ctx, key)
		require.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
		assert.Equal(t, "application/octet-stream", contentType)
	})

	t.Run("Get detects MIME types", func(t *testing.T) {
		pdfKey := "user-1/case-1/doc.pdf"
		_, err := storage.UploadReader(ctx, strings.NewReader("%PDF-1.4"), pdfKey, "application/pdf", 8)
		require.NoError(t, err)

		_, contentType, err := storage.Get(ctx, pdfKey)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("Delete removes file and tolerates missing files", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, key))
		_, err := os.Stat(filepath.Join(tempDir, key))
		assert.True(t, os.IsNotExist(err))

		assert.NoError(t, storage.Delete(ctx, key))
	})

	t.Run("Signed URL is the local path", func(t *testing.T) {
		signed, err := storage.GetSignedURL(ctx, "some/key", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "/"+filepath.Join(tempDir, "some/key"), signed)
	})
}

func TestGenerateCaseDocumentKey(t *testing.T) {
	key := GenerateCaseDocumentKey("user-1", "case-9", "Lettre Refus.PDF")

	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, "user-1", parts[0])
	assert.Equal(t, "case-9", parts[1])
	assert.True(t, strings.HasSuffix(parts[2], ".pdf"))
	assert.Len(t, strings.TrimSuffix(parts[2], ".pdf"), 26)

	assert.NotEqual(t, key, GenerateCaseDocumentKey("user-1", "case-9", "Lettre Refus.PDF"))
}

func TestInitializeStorage_LocalWhenUnconfigured(t *testing.T) {
	cfg := &config.Config{UploadDir: t.TempDir()}
	InitializeStorage(cfg)
	_, ok := Storage.(*LocalStorage)
	assert.True(t, ok)
}

func TestS3Storage_PublicURL(t *testing.T) {
	s, err := NewS3Storage(&config.Config{
		StorageEndpoint:        "https://project.supabase.co/storage/v1/s3",
		StorageRegion:          "eu-west-3",
		StorageAccessKeyID:     "id",
		StorageSecretAccessKey: "secret",
		StorageBucket:          "documents",
		StoragePublicURL:       "https://cdn.example.fr/",
	})
	require.NoError(t, err)
	assert.True(t, s.IsConfigured())
	assert.Equal(t, "https://cdn.example.fr/u/c/f.pdf", s.GetPublicURL("u/c/f.pdf"))

	url, err := s.GetSignedURL(context.Background(), "u/c/f.pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Signature")
	assert.Contains(t, url, "/documents/u/c/f.pdf")
}
