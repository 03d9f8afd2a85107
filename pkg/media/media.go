package media

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const maxAttachmentSize = 15 * 1024 * 1024 // 15MB, the inline-part limit

// Attachment is one piece of media supplied with a request: raw bytes
// plus a MIME type. The core forwards attachments to the generative
// model unmodified.
type Attachment struct {
	Data     []byte
	MIMEType string
	FileName string
}

// imageExts maps file extensions to MIME types for supported image formats.
var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// LoadFile reads a file from disk and returns it as an Attachment.
// The MIME type comes from the extension for known image formats and
// PDFs, otherwise from content sniffing.
func LoadFile(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("empty file: %s", path)
	}
	if info.Size() > maxAttachmentSize {
		return nil, fmt.Errorf("file too large: %s (%.1f MB)", path, float64(info.Size())/(1024*1024))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &Attachment{
		Data:     data,
		MIMEType: DetectMIME(path, data),
		FileName: filepath.Base(path),
	}, nil
}

// DetectMIME returns the MIME type for a file, preferring the extension
// for known formats and falling back to content sniffing.
func DetectMIME(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mimeType, ok := imageExts[ext]; ok {
		return mimeType
	}
	if ext == ".pdf" {
		return "application/pdf"
	}
	return http.DetectContentType(data)
}
