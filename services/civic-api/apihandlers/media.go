package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/civic"
	"github.com/civic-lens/civic-backend/pkg/utils"
	"github.com/civic-lens/civic-backend/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const MEDIA_FORM_FIELD = "media"

func (h *HttpEndpoints) getReportMedia(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	media, err := h.civicService.ListMedia(c.Request.Context(), id)
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

func (h *HttpEndpoints) attachReportMedia(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadSizeLimit)

	fileHeader, err := c.FormFile(MEDIA_FORM_FIELD)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			apihelpers.RespondWithError(c, (&validation.ValidationError{}).Add(MEDIA_FORM_FIELD, "max", "file is too large"))
			return
		}
		slog.Debug("no media file in upload", slog.String("error", err.Error()))
		apihelpers.RespondWithError(c, (&validation.ValidationError{}).Add(MEDIA_FORM_FIELD, "required", "is required"))
		return
	}
	if fileHeader.Size > h.uploadSizeLimit {
		apihelpers.RespondWithError(c, (&validation.ValidationError{}).Add(MEDIA_FORM_FIELD, "max", "file is too large"))
		return
	}

	// stage under a fresh name so concurrent uploads never share a path
	tempPath, err := h.stageUpload(fileHeader.Filename, func(dst string) error {
		return c.SaveUploadedFile(fileHeader, dst)
	})
	if err != nil {
		apihelpers.RespondWithError(c, civic.Internal("failed to stage upload", err))
		return
	}

	contentType, err := utils.ValidateFileTypeFromContent(tempPath, utils.AllowedMediaTypes)
	if err != nil {
		removeStagedFile(tempPath)
		if errors.Is(err, utils.ErrUnsupportedFileType) {
			apihelpers.RespondWithError(c, (&validation.ValidationError{}).Add(MEDIA_FORM_FIELD, "type", err.Error()))
			return
		}
		apihelpers.RespondWithError(c, civic.Internal("failed to inspect upload", err))
		return
	}

	ref, err := h.civicService.AttachMedia(c.Request.Context(), id, tempPath, utils.GetFileExtensionFromContentType(contentType))
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": ref})
}

func (h *HttpEndpoints) detachReportMedia(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.civicService.DetachMedia(c.Request.Context(), id, c.Query("media")); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *HttpEndpoints) stageUpload(originalName string, save func(dst string) error) (string, error) {
	if err := os.MkdirAll(h.uploadTempDir, 0o755); err != nil {
		return "", err
	}
	tempPath := filepath.Join(h.uploadTempDir, "upload-"+uuid.NewString())
	if err := save(tempPath); err != nil {
		removeStagedFile(tempPath)
		return "", err
	}
	slog.Debug("staged upload", slog.String("original", originalName), slog.String("path", tempPath))
	return tempPath, nil
}

func removeStagedFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove staged upload", slog.String("path", path), slog.String("error", err.Error()))
	}
}
