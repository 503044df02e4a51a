package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Media types accepted for report attachments.
var AllowedMediaTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// ErrUnsupportedFileType is returned when the sniffed content type is not allowed.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ValidateFileTypeFromContent detects the content type of the file at path from its first
// 512 bytes and checks it against allowedTypes. The client supplied content type is ignored.
func ValidateFileTypeFromContent(path string, allowedTypes []string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return DetectContentType(file, allowedTypes)
}

// DetectContentType sniffs r and returns the content type if it is one of allowedTypes.
func DetectContentType(r io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrUnsupportedFileType)
	}

	contentType := http.DetectContentType(buffer[:n])
	for _, t := range allowedTypes {
		if t == contentType {
			return contentType, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
}

// GetFileExtensionFromContentType returns the file extension (with leading dot) for a detected
// content type, or an empty string if it is not recognized.
func GetFileExtensionFromContentType(contentType string) string {
	extensionMap := map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}

	if ext, ok := extensionMap[contentType]; ok {
		return ext
	}
	return ""
}
