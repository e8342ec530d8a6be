package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxImageSize is 10MB in bytes
	MaxImageSize = 10 * 1024 * 1024
	// MaxVideoSize is 50MB in bytes
	MaxVideoSize = 50 * 1024 * 1024
)

var (
	allowedImageFormats = map[string]bool{
		".png":  true,
		".jpg":  true,
		".jpeg": true,
		".webp": true,
	}
	allowedVideoFormats = map[string]bool{
		".mp4": true,
	}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates an uploaded image's format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxImageSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("Image size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageFormats[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PNG, JPG and WebP images are allowed",
		}
	}

	return nil
}

// ValidateEvidenceFile validates an uploaded return-evidence file, which
// may be an image or a short video.
func ValidateEvidenceFile(fileHeader *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))

	if allowedImageFormats[ext] {
		if fileHeader.Size > MaxImageSize {
			return &FileUploadError{
				Code:    "FILE_TOO_LARGE",
				Message: fmt.Sprintf("Image size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024)),
			}
		}
		return nil
	}

	if allowedVideoFormats[ext] {
		if fileHeader.Size > MaxVideoSize {
			return &FileUploadError{
				Code:    "FILE_TOO_LARGE",
				Message: fmt.Sprintf("Video size exceeds maximum allowed size of %d MB", MaxVideoSize/(1024*1024)),
			}
		}
		return nil
	}

	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: "Only PNG, JPG, WebP images and MP4 videos are allowed",
	}
}

// IsVideoFile reports whether the filename has a video extension
func IsVideoFile(filename string) bool {
	return allowedVideoFormats[strings.ToLower(filepath.Ext(filename))]
}
