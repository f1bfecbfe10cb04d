package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxImageSize    = 10 << 20  // 10 MB
	MaxDocumentSize = 25 << 20  // 25 MB
	MaxVideoSize    = 200 << 20 // 200 MB
	UploadPath      = "uploads/files"
)

var imageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var documentTypes = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
	".zip":  true,
	".hwp":  true,
}

var videoTypes = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
}

// ValidateUpload checks the extension allow-list and the per-kind size cap.
func ValidateUpload(header *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))

	var limit int64
	switch {
	case imageTypes[ext]:
		limit = MaxImageSize
	case documentTypes[ext]:
		limit = MaxDocumentSize
	case videoTypes[ext]:
		limit = MaxVideoSize
	default:
		return fmt.Errorf("invalid file type: %s", ext)
	}

	if header.Size > limit {
		return fmt.Errorf("file size exceeds maximum limit of %d MB", limit/(1<<20))
	}
	return nil
}

// UploadFilename builds a collision-free stored name for an upload.
func UploadFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102"),
		uuid.New().String(),
		ext,
	)
}

// SaveFile writes an already validated upload to local disk and returns
// its URL path. Used when no bucket storage is configured.
func SaveFile(file multipart.File, filename string) (string, error) {
	if err := os.MkdirAll(UploadPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	filePath := filepath.Join(UploadPath, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	return fmt.Sprintf("/files/%s", filename), nil
}


func DeleteFile(fileURL string) error {
	filename := filepath.Base(fileURL)
	filePath := filepath.Join(UploadPath, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(filePath)
}


// ContentType maps an upload extension to its serving content type.
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
