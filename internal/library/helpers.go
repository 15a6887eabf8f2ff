package library

import (
	"database/sql"
	"errors"
	"time"
)

const uploadColumns = "id, original_name, stored_name, path, title, size_bytes, duration_seconds, transcript_path, thumbnail_path, created_at, updated_at"

const clipColumns = "id, upload_id, position, title, excerpt, score, start_seconds, end_seconds, path, created_at"

func scanUpload(scanner interface{ Scan(dest ...any) error }) (*Upload, error) {
	var (
		id             string
		originalName   string
		storedName     string
		path           string
		title          string
		sizeBytes      int64
		duration       float64
		transcriptPath sql.NullString
		thumbnailPath  sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&originalName,
		&storedName,
		&path,
		&title,
		&sizeBytes,
		&duration,
		&transcriptPath,
		&thumbnailPath,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	upload := &Upload{
		ID:              id,
		OriginalName:    originalName,
		StoredName:      storedName,
		Path:            path,
		Title:           title,
		SizeBytes:       sizeBytes,
		DurationSeconds: duration,
		TranscriptPath:  transcriptPath.String,
		ThumbnailPath:   thumbnailPath.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		upload.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		upload.UpdatedAt = updated
	}
	return upload, nil
}

func scanClip(scanner interface{ Scan(dest ...any) error }) (Clip, error) {
	var (
		clip       Clip
		excerpt    sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&clip.ID,
		&clip.UploadID,
		&clip.Position,
		&clip.Title,
		&excerpt,
		&clip.Score,
		&clip.StartSeconds,
		&clip.EndSeconds,
		&clip.Path,
		&createdRaw,
	); err != nil {
		return Clip{}, err
	}
	clip.Excerpt = excerpt.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		clip.CreatedAt = created
	}
	return clip, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
