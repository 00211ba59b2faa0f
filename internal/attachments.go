package internal

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxAttachmentFiles is the number of files one message may carry
	MaxAttachmentFiles = 10
	// MaxAttachmentBytes caps the cumulative size of a message's files
	MaxAttachmentBytes int64 = 50 * 1024 * 1024
)

var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	".txt": true, ".md": true, ".html": true, ".css": true, ".js": true,
	".yaml": true, ".yml": true, ".xml": true, ".csv": true, ".tsv": true,
	".py": true, ".sh": true, ".c": true, ".cpp": true, ".java": true,
	".pdf": true, ".json": true, ".rtf": true,
}

var blockedMimePrefixes = []string{
	"video/", "audio/",
	"application/x-executable", "application/x-msdownload",
	"application/zip", "application/x-rar-compressed", "application/x-7z-compressed",
}

// FileAttachment is the wire descriptor of one attached file
type FileAttachment struct {
	Name           string `json:"name"`
	Size           int64  `json:"size"`
	MimeType       string `json:"type"`
	LastModifiedAt int64  `json:"lastModified"`
	Base64Data     string `json:"data"`
	ID             string `json:"id"`
}

// AttachmentSet collects the files for the next message
type AttachmentSet struct {
	files []FileAttachment
	total int64
	now   func() time.Time
}

// NewAttachmentSet creates an empty set
func NewAttachmentSet() *AttachmentSet {
	return &AttachmentSet{now: time.Now}
}

// AddFile validates and encodes the file at path.
// Count, type and size limits are checked before the file is read.
func (s *AttachmentSet) AddFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return &ValidationError{Field: "attachment", Reason: fmt.Sprintf("%q is a directory", path)}
	}

	name := filepath.Base(path)
	mimeType, err := s.check(name, info.Size())
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	s.add(name, mimeType, data, info.ModTime())
	return nil
}

// AddData validates and encodes an in-memory file
func (s *AttachmentSet) AddData(name string, data []byte, modTime time.Time) error {
	mimeType, err := s.check(name, int64(len(data)))
	if err != nil {
		return err
	}
	s.add(name, mimeType, data, modTime)
	return nil
}

func (s *AttachmentSet) check(name string, size int64) (string, error) {
	if len(s.files) >= MaxAttachmentFiles {
		return "", &ValidationError{Field: "attachment", Reason: fmt.Sprintf("maximum %d files allowed", MaxAttachmentFiles)}
	}

	ext := strings.ToLower(filepath.Ext(name))
	mimeType := DetectMimeType(name)
	if !allowedExtensions[ext] || isBlockedMime(mimeType) {
		return "", &ValidationError{
			Field:  "attachment",
			Reason: fmt.Sprintf("file type not supported: %q; only PNG, JPEG, WebP, text files, PDF, JSON, RTF and code files are allowed", name),
		}
	}

	if s.total+size > MaxAttachmentBytes {
		remaining := float64(MaxAttachmentBytes-s.total) / (1024 * 1024)
		return "", &ValidationError{
			Field:  "attachment",
			Reason: fmt.Sprintf("file %q exceeds remaining space (%.1fMB available)", name, remaining),
		}
	}
	return mimeType, nil
}

func (s *AttachmentSet) add(name, mimeType string, data []byte, modTime time.Time) {
	file := FileAttachment{
		Name:           name,
		Size:           int64(len(data)),
		MimeType:       mimeType,
		LastModifiedAt: modTime.UnixMilli(),
		Base64Data:     base64.StdEncoding.EncodeToString(data),
		ID:             NewFileID(s.now()),
	}
	s.files = append(s.files, file)
	s.total += file.Size
	LogDebug("attached %s (%d bytes, %s)", name, file.Size, mimeType)
}

// Files returns a copy of the attached files
func (s *AttachmentSet) Files() []FileAttachment {
	return append([]FileAttachment(nil), s.files...)
}

// Len returns the number of attached files
func (s *AttachmentSet) Len() int {
	return len(s.files)
}

// TotalSize returns the cumulative size in bytes
func (s *AttachmentSet) TotalSize() int64 {
	return s.total
}

// Remove drops the file with the given id
func (s *AttachmentSet) Remove(id string) bool {
	for i, file := range s.files {
		if file.ID == id {
			s.total -= file.Size
			s.files = append(s.files[:i], s.files[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the set
func (s *AttachmentSet) Clear() {
	s.files = nil
	s.total = 0
}

// AttachmentSummary is the line appended to a user message that carries files
func AttachmentSummary(files []FileAttachment) string {
	var total int64
	for _, file := range files {
		total += file.Size
	}
	return fmt.Sprintf("📎 %d file(s) attached (%.1fMB)", len(files), float64(total)/(1024*1024))
}

// DetectMimeType maps a file name to its MIME type, defaulting to application/octet-stream
func DetectMimeType(name string) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}

func isBlockedMime(mimeType string) bool {
	for _, prefix := range blockedMimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
