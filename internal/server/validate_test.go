package server

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "page.png",
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name       string
		header     *multipart.FileHeader
		wantReason string
		wantMsg    string
	}{
		{
			name:       "missing file",
			header:     nil,
			wantReason: ReasonMissing,
			wantMsg:    "No file uploaded",
		},
		{
			name:       "over size limit",
			header:     makeFileHeader("image/png", 10*1024*1024+1),
			wantReason: ReasonTooLarge,
			wantMsg:    "File size exceeds 10MB limit",
		},
		{
			name:       "unsupported type",
			header:     makeFileHeader("image/gif", 1024),
			wantReason: ReasonBadType,
			wantMsg:    "Only JPG and PNG files are allowed",
		},
		{
			name:       "size checked before type",
			header:     makeFileHeader("image/gif", 11*1024*1024),
			wantReason: ReasonTooLarge,
			wantMsg:    "File size exceeds 10MB limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUpload(tt.header, 10)
			require.Error(t, err)

			var invalid *InvalidUploadError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantReason, invalid.Reason)
			assert.Equal(t, tt.wantMsg, invalid.Message)
		})
	}
}

func TestValidateUpload_AllowedTypes(t *testing.T) {
	for _, contentType := range []string{"image/jpeg", "image/jpg", "image/png", "IMAGE/PNG", " image/jpeg "} {
		t.Run(contentType, func(t *testing.T) {
			assert.NoError(t, validateUpload(makeFileHeader(contentType, 1024), 10))
		})
	}
}

func TestValidateUpload_ExactlyAtLimit(t *testing.T) {
	assert.NoError(t, validateUpload(makeFileHeader("image/png", 10*1024*1024), 10))
}
