package handlers

import (
	"net/http"
	"time"

	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

const signedURLTTL = 10 * time.Minute

// UploadDocumentsHandler stores one or more files for a case. Files are read from the
// "files" multipart field, or "file" for a single upload.
func UploadDocumentsHandler(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest("Expected a multipart form")
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		return badRequest("No file provided")
	}

	documentType := c.FormValue("type_document")
	uploads := getUploadService(c)
	scope := middleware.GetScope(c)

	if len(files) == 1 {
		doc, err := uploads.Upload(c.Request().Context(), scope, c.Param("id"), files[0], documentType)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, doc)
	}

	result := uploads.UploadBatch(c.Request().Context(), scope, c.Param("id"), files, documentType)
	status := http.StatusCreated
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, result)
}

// ListDocumentsHandler lists the documents of a case
func ListDocumentsHandler(c echo.Context) error {
	docs, err := getUploadService(c).ListDocuments(c.Request().Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

// DownloadDocumentHandler redirects to a signed URL on object storage, or streams the file
// from local storage
func DownloadDocumentHandler(c echo.Context) error {
	uploads := getUploadService(c)
	scope := middleware.GetScope(c)

	if _, remote := services.Storage.(*services.S3Storage); remote {
		url, err := uploads.SignedDocumentURL(c.Request().Context(), scope, c.Param("id"), signedURLTTL)
		if err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, url)
	}

	doc, reader, contentType, err := uploads.OpenDocument(c.Request().Context(), scope, c.Param("id"))
	if err != nil {
		return err
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+doc.FileName+"\"")
	return c.Stream(http.StatusOK, contentType, reader)
}

// DeleteDocumentHandler removes a document
func DeleteDocumentHandler(c echo.Context) error {
	if err := getUploadService(c).DeleteDocument(c.Request().Context(), middleware.GetScope(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
