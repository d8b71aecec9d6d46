package catalog

import (
	"errors"
	"fmt"

	"github.com/shopfloor/toolcrib/internal/models"
	"gorm.io/gorm"
)

// ErrStampNotFound is returned when a stamp lookup matches no row.
var ErrStampNotFound = errors.New("catalog: stamp not found")

// StampByName finds a stamp by its display name.
func (s *Store) StampByName(name string) (*models.Stamp, error) {
	var stamp models.Stamp
	err := s.db.Where("name = ?", name).First(&stamp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStampNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: stamp %q: %w", name, err)
	}
	return &stamp, nil
}

// StampByID finds a stamp by primary key.
func (s *Store) StampByID(id uint) (*models.Stamp, error) {
	var stamp models.Stamp
	err := s.db.Where("id = ?", id).First(&stamp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStampNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: stamp id %d: %w", id, err)
	}
	return &stamp, nil
}

// ListStamps returns all stamps ordered by name.
func (s *Store) ListStamps() ([]models.Stamp, error) {
	var stamps []models.Stamp
	if err := s.db.Order("name ASC").Find(&stamps).Error; err != nil {
		return nil, fmt.Errorf("catalog: list stamps: %w", err)
	}
	return stamps, nil
}
