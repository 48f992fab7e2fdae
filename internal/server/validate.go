package server

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// Rejection reasons for invalid uploads.
const (
	ReasonMissing  = "missing"
	ReasonTooLarge = "too_large"
	ReasonBadType  = "bad_type"
)

// allowedImageTypes is the MIME allow-list for uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// InvalidUploadError represents an upload rejected before any external
// call is made.
type InvalidUploadError struct {
	Reason  string
	Message string
}

func (e *InvalidUploadError) Error() string {
	return e.Message
}

// validateUpload enforces the upload constraints: presence, size ceiling,
// MIME allow-list. Check order matters for user feedback.
func validateUpload(header *multipart.FileHeader, maxUploadMB int64) error {
	if header == nil {
		return &InvalidUploadError{Reason: ReasonMissing, Message: "No file uploaded"}
	}

	if header.Size > maxUploadMB*1024*1024 {
		return &InvalidUploadError{
			Reason:  ReasonTooLarge,
			Message: fmt.Sprintf("File size exceeds %dMB limit", maxUploadMB),
		}
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if !allowedImageTypes[contentType] {
		return &InvalidUploadError{Reason: ReasonBadType, Message: "Only JPG and PNG files are allowed"}
	}

	return nil
}
