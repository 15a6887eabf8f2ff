package library

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Upload is a source video registered with the catalog.
type Upload struct {
	ID              string
	OriginalName    string
	StoredName      string
	Path            string
	Title           string
	SizeBytes       int64
	DurationSeconds float64
	TranscriptPath  string
	ThumbnailPath   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasTranscript reports whether a cached transcript exists for the upload.
func (u Upload) HasTranscript() bool {
	return strings.TrimSpace(u.TranscriptPath) != ""
}

// Clip is one rendered highlight cut from an upload.
type Clip struct {
	ID           int64
	UploadID     string
	Position     int
	Title        string
	Excerpt      string
	Score        int
	StartSeconds float64
	EndSeconds   float64
	Path         string
	CreatedAt    time.Time
}

// NewUpload builds an Upload for a source file, assigning a fresh UUID and
// a display title derived from the original filename.
func NewUpload(originalName, path string, sizeBytes int64) Upload {
	id := uuid.NewString()
	return Upload{
		ID:           id,
		OriginalName: originalName,
		StoredName:   filepath.Base(path),
		Path:         path,
		Title:        DeriveTitle(originalName),
		SizeBytes:    sizeBytes,
	}
}

// StoredNameFor returns the on-disk filename for an upload, preserving the
// original extension behind a UUID to avoid collisions.
func StoredNameFor(id, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return id + ext
}

// DeriveTitle turns a filename into a human-readable title. Separators
// collapse to single spaces and the result is title-cased.
func DeriveTitle(name string) string {
	if name == "" {
		return "Untitled Video"
	}
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Video"
	}
	return cases.Title(language.Und).String(title)
}
