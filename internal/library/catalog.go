package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clipper/internal/config"
)

// ErrUploadNotFound is returned when a catalog lookup misses.
var ErrUploadNotFound = errors.New("upload not found")

// Catalog manages upload persistence backed by SQLite.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies
// migrations.
func Open(cfg *config.Config) (*Catalog, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One pooled connection: the pragmas below are per-connection, and
	// a single writer rules out SQLITE_BUSY on concurrent clip
	// replacement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	catalog := &Catalog{db: db, path: dbPath}
	if err := catalog.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return catalog, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Catalog) Path() string {
	return c.path
}

// Register inserts a new upload row and returns the stored record.
func (c *Catalog) Register(ctx context.Context, upload Upload) (*Upload, error) {
	if strings.TrimSpace(upload.ID) == "" {
		return nil, errors.New("upload id is empty")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO uploads (
            id, original_name, stored_name, path, title, size_bytes,
            duration_seconds, transcript_path, thumbnail_path, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		upload.ID,
		upload.OriginalName,
		upload.StoredName,
		upload.Path,
		upload.Title,
		upload.SizeBytes,
		upload.DurationSeconds,
		nullableString(upload.TranscriptPath),
		nullableString(upload.ThumbnailPath),
		timestamp,
		timestamp,
	)
	if err != nil {
		// Registration is idempotent per path. A concurrent or repeated
		// registration of the same stored file returns the existing row.
		if existing, findErr := c.FindByPath(ctx, upload.Path); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("insert upload: %w", err)
	}

	return c.GetUpload(ctx, upload.ID)
}

// GetUpload fetches an upload by identifier.
func (c *Catalog) GetUpload(ctx context.Context, id string) (*Upload, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, id)
	upload, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get upload: %w", err)
	}
	return upload, nil
}

// FindByPath returns the upload stored at the given path, or
// ErrUploadNotFound.
func (c *Catalog) FindByPath(ctx context.Context, path string) (*Upload, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE path = ?`, path)
	upload, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find upload by path: %w", err)
	}
	return upload, nil
}

// ListUploads returns all uploads ordered newest first.
func (c *Catalog) ListUploads(ctx context.Context) ([]*Upload, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+uploadColumns+` FROM uploads ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

// AttachTranscript records the cached transcript location for an upload.
func (c *Catalog) AttachTranscript(ctx context.Context, id, transcriptPath string) error {
	return c.updateColumn(ctx, id, "transcript_path", nullableString(transcriptPath))
}

// AttachThumbnail records the extracted thumbnail location for an upload.
func (c *Catalog) AttachThumbnail(ctx context.Context, id, thumbnailPath string) error {
	return c.updateColumn(ctx, id, "thumbnail_path", nullableString(thumbnailPath))
}

// SetDuration records the probed media duration for an upload.
func (c *Catalog) SetDuration(ctx context.Context, id string, seconds float64) error {
	return c.updateColumn(ctx, id, "duration_seconds", seconds)
}

func (c *Catalog) updateColumn(ctx context.Context, id, column string, value any) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(
		ctx,
		`UPDATE uploads SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("update upload %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUploadNotFound
	}
	return nil
}

// ReplaceClips swaps the clip set for an upload inside one transaction so
// readers never see a partial highlight list.
func (c *Catalog) ReplaceClips(ctx context.Context, uploadID string, clips []Clip) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clip tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM uploads WHERE id = ?`, uploadID).Scan(&exists); err != nil {
		return fmt.Errorf("check upload: %w", err)
	}
	if exists == 0 {
		return ErrUploadNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM clips WHERE upload_id = ?`, uploadID); err != nil {
		return fmt.Errorf("clear clips: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for i, clip := range clips {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO clips (
                upload_id, position, title, excerpt, score,
                start_seconds, end_seconds, path, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uploadID,
			i,
			clip.Title,
			nullableString(clip.Excerpt),
			clip.Score,
			clip.StartSeconds,
			clip.EndSeconds,
			clip.Path,
			timestamp,
		); err != nil {
			return fmt.Errorf("insert clip %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE uploads SET updated_at = ? WHERE id = ?`, timestamp, uploadID); err != nil {
		return fmt.Errorf("touch upload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clips: %w", err)
	}
	return nil
}

// ClipsFor returns the clips of an upload in render order.
func (c *Catalog) ClipsFor(ctx context.Context, uploadID string) ([]Clip, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+clipColumns+` FROM clips WHERE upload_id = ? ORDER BY position`,
		uploadID,
	)
	if err != nil {
		return nil, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	var clips []Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

// ClipCount returns the number of clips stored for an upload.
func (c *Catalog) ClipCount(ctx context.Context, uploadID string) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clips WHERE upload_id = ?`, uploadID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return count, nil
}

// DeleteUpload removes an upload row and, via cascade, its clips. Files on
// disk are the caller's responsibility.
func (c *Catalog) DeleteUpload(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUploadNotFound
	}
	return nil
}

// Stats summarizes catalog contents for the status endpoint.
type Stats struct {
	Uploads     int
	Clips       int
	Transcribed int
}

// Stats returns aggregate upload and clip counts.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM uploads`).Scan(&stats.Uploads); err != nil {
		return Stats{}, fmt.Errorf("count uploads: %w", err)
	}
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clips`).Scan(&stats.Clips); err != nil {
		return Stats{}, fmt.Errorf("count clips: %w", err)
	}
	if err := c.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM uploads WHERE transcript_path IS NOT NULL AND transcript_path != ''`,
	).Scan(&stats.Transcribed); err != nil {
		return Stats{}, fmt.Errorf("count transcribed: %w", err)
	}
	return stats, nil
}
