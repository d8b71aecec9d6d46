// Package drawings stores engineering drawings: file bytes on local disk,
// metadata in the Drawings table.
package drawings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopfloor/toolcrib/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a drawing lookup matches no row.
var ErrNotFound = errors.New("drawings: drawing not found")

// ErrFileMissing is returned when a drawing row exists but its file is
// gone from disk.
var ErrFileMissing = errors.New("drawings: file missing on disk")

// Store manages drawing files and their metadata rows.
type Store struct {
	db  *gorm.DB
	dir string
}

// StoreOpts configures a Store.
type StoreOpts struct {
	DB  *gorm.DB
	Dir string // on-disk directory for drawing files
}

// NewStore creates a Store and ensures the storage directory exists.
func NewStore(opts StoreOpts) (*Store, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("drawings: DB is required")
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("drawings: Dir is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("drawings: create dir %s: %w", opts.Dir, err)
	}
	return &Store{db: opts.DB, dir: opts.Dir}, nil
}

// Save writes the file to disk as <dir>/<stampID>_<filename> and records a
// metadata row. The file lands first; the row only exists if the write
// succeeded.
func (s *Store) Save(stampID uint, filename string, data []byte, description string) (*models.Drawing, error) {
	filename = filepath.Base(filename)
	if filename == "" || filename == "." {
		return nil, fmt.Errorf("drawings: filename is required")
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%d_%s", stampID, filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("drawings: write %s: %w", path, err)
	}

	drawing := &models.Drawing{
		StampID:     stampID,
		Name:        filename,
		FileType:    strings.TrimPrefix(filepath.Ext(filename), "."),
		FilePath:    path,
		Description: description,
	}
	if err := s.db.Create(drawing).Error; err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("drawings: save %s for stamp %d: %w", filename, stampID, err)
	}
	return drawing, nil
}

// ListByStamp returns all drawings for a stamp, newest first.
func (s *Store) ListByStamp(stampID uint) ([]models.Drawing, error) {
	var list []models.Drawing
	if err := s.db.Where("stamp_id = ?", stampID).
		Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("drawings: list for stamp %d: %w", stampID, err)
	}
	return list, nil
}

// SearchRow is a search hit joined with its stamp name.
type SearchRow struct {
	ID          uint
	Stamp       string
	Name        string
	Description string
}

// Search looks for the query in drawing names and descriptions,
// case-insensitively, and joins the owning stamp's name for display.
func (s *Store) Search(query string) ([]SearchRow, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []SearchRow
	err := s.db.Table("Drawings").
		Select("Drawings.id, Stamps.name AS stamp, Drawings.name, Drawings.description").
		Joins("JOIN Stamps ON Stamps.id = Drawings.stamp_id").
		Where("LOWER(Drawings.name) LIKE ? OR LOWER(Drawings.description) LIKE ?", pattern, pattern).
		Order("Stamps.name ASC, Drawings.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("drawings: search %q: %w", query, err)
	}
	return rows, nil
}

// Get returns a drawing row by id.
func (s *Store) Get(id uint) (*models.Drawing, error) {
	var drawing models.Drawing
	err := s.db.Where("id = ?", id).First(&drawing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("drawings: get %d: %w", id, err)
	}
	return &drawing, nil
}

// Open returns a reader over the drawing's file. The caller must close it.
// A row whose file has been removed from disk yields ErrFileMissing.
func (s *Store) Open(id uint) (io.ReadCloser, *models.Drawing, error) {
	drawing, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(drawing.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrFileMissing
	}
	if err != nil {
		return nil, nil, fmt.Errorf("drawings: open %s: %w", drawing.FilePath, err)
	}
	return f, drawing, nil
}

// Delete removes the metadata row and the file. A missing file is not an
// error; the row is the source of truth.
func (s *Store) Delete(id uint) error {
	drawing, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Drawing{}, id).Error; err != nil {
		return fmt.Errorf("drawings: delete %d: %w", id, err)
	}
	if err := os.Remove(drawing.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("drawings: remove %s: %w", drawing.FilePath, err)
	}
	return nil
}
