package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fileHeader(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		size         int64
		expectedCode string
	}{
		{name: "JPG within limit", filename: "banner.jpg", size: 1024},
		{name: "PNG within limit", filename: "banner.png", size: 1024},
		{name: "WebP within limit", filename: "banner.webp", size: 1024},
		{name: "Uppercase extension accepted", filename: "banner.JPEG", size: 1024},
		{name: "Oversize image rejected", filename: "banner.jpg", size: MaxImageSize + 1, expectedCode: "FILE_TOO_LARGE"},
		{name: "PDF rejected", filename: "banner.pdf", size: 1024, expectedCode: "INVALID_FILE_FORMAT"},
		{name: "Video rejected as image", filename: "clip.mp4", size: 1024, expectedCode: "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageFile(fileHeader(tt.filename, tt.size))
			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}
			var uploadErr *FileUploadError
			assert.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}

func TestValidateEvidenceFile(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		size         int64
		expectedCode string
	}{
		{name: "Image within image limit", filename: "seam.jpg", size: 1024},
		{name: "Video within video limit", filename: "unboxing.mp4", size: MaxImageSize + 1},
		{name: "Image over image limit", filename: "seam.jpg", size: MaxImageSize + 1, expectedCode: "FILE_TOO_LARGE"},
		{name: "Video over video limit", filename: "unboxing.mp4", size: MaxVideoSize + 1, expectedCode: "FILE_TOO_LARGE"},
		{name: "Unknown format rejected", filename: "evidence.gif", size: 1024, expectedCode: "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvidenceFile(fileHeader(tt.filename, tt.size))
			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}
			var uploadErr *FileUploadError
			assert.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("unboxing.mp4"))
	assert.True(t, IsVideoFile("UNBOXING.MP4"))
	assert.False(t, IsVideoFile("seam.jpg"))
	assert.False(t, IsVideoFile("noextension"))
}
