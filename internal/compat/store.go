// Package compat manages part-compatibility links between stamps. A link
// is stored as two mirrored rows so it is visible from either stamp; all
// writes keep the pair in step.
package compat

import (
	"errors"
	"fmt"

	"github.com/shopfloor/toolcrib/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a link lookup matches no row.
var ErrNotFound = errors.New("compat: link not found")

// Store performs compatibility-link operations.
type Store struct {
	db *gorm.DB
}

// StoreOpts configures a Store.
type StoreOpts struct {
	DB *gorm.DB
}

// NewStore creates a Store. DB is required.
func NewStore(opts StoreOpts) (*Store, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("compat: DB is required")
	}
	return &Store{db: opts.DB}, nil
}

// Add records a link between two stamps. Two mirrored rows are created in
// one transaction; if either insert fails, neither row persists.
func (s *Store) Add(sourceStampID, targetStampID uint, partType, notes string) error {
	if sourceStampID == targetStampID {
		return fmt.Errorf("compat: a stamp cannot be compatible with itself")
	}
	if partType == "" {
		return fmt.Errorf("compat: part type is required")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		forward := models.CompatibilityLink{
			SourceStampID: sourceStampID,
			TargetStampID: targetStampID,
			PartType:      partType,
			Notes:         notes,
		}
		if err := tx.Create(&forward).Error; err != nil {
			return fmt.Errorf("compat: add link %d->%d: %w", sourceStampID, targetStampID, err)
		}
		reverse := models.CompatibilityLink{
			SourceStampID: targetStampID,
			TargetStampID: sourceStampID,
			PartType:      partType,
			Notes:         notes,
		}
		if err := tx.Create(&reverse).Error; err != nil {
			return fmt.Errorf("compat: add link %d->%d: %w", targetStampID, sourceStampID, err)
		}
		return nil
	})
}

// LinkRow is one compatibility link joined with both stamp names.
type LinkRow struct {
	ID          uint
	SourceStamp string
	TargetStamp string
	PartType    string
	Notes       string
}

// ListForStamp returns all links where the given stamp is the source,
// joined with stamp names, ordered by target then part type.
func (s *Store) ListForStamp(stampID uint) ([]LinkRow, error) {
	var rows []LinkRow
	err := s.db.Table("Parts_Compatibility").
		Select("Parts_Compatibility.id, src.name AS source_stamp, dst.name AS target_stamp, Parts_Compatibility.part_type, Parts_Compatibility.notes").
		Joins("JOIN Stamps src ON src.id = Parts_Compatibility.source_stamp_id").
		Joins("JOIN Stamps dst ON dst.id = Parts_Compatibility.target_stamp_id").
		Where("Parts_Compatibility.source_stamp_id = ?", stampID).
		Order("target_stamp ASC, Parts_Compatibility.part_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("compat: list for stamp %d: %w", stampID, err)
	}
	return rows, nil
}

// ListPairs returns every logical link exactly once, keeping the row whose
// source stamp id is the smaller of the pair.
func (s *Store) ListPairs() ([]LinkRow, error) {
	var rows []LinkRow
	err := s.db.Table("Parts_Compatibility").
		Select("Parts_Compatibility.id, src.name AS source_stamp, dst.name AS target_stamp, Parts_Compatibility.part_type, Parts_Compatibility.notes").
		Joins("JOIN Stamps src ON src.id = Parts_Compatibility.source_stamp_id").
		Joins("JOIN Stamps dst ON dst.id = Parts_Compatibility.target_stamp_id").
		Where("Parts_Compatibility.source_stamp_id < Parts_Compatibility.target_stamp_id").
		Order("source_stamp ASC, target_stamp ASC, Parts_Compatibility.part_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("compat: list pairs: %w", err)
	}
	return rows, nil
}

// Get returns a single link row by id.
func (s *Store) Get(id uint) (*models.CompatibilityLink, error) {
	var link models.CompatibilityLink
	err := s.db.Where("id = ?", id).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("compat: get link %d: %w", id, err)
	}
	return &link, nil
}

// UpdateNotes sets the notes on both rows of the pair the given row
// belongs to.
func (s *Store) UpdateNotes(id uint, notes string) error {
	link, err := s.Get(id)
	if err != nil {
		return err
	}
	cond, args := pairCondition(link)
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CompatibilityLink{}).
			Where(cond, args...).
			Update("notes", notes)
		if res.Error != nil {
			return fmt.Errorf("compat: update notes on link %d: %w", id, res.Error)
		}
		return nil
	})
}

// DeletePair removes both rows of the pair the given row belongs to.
func (s *Store) DeletePair(id uint) error {
	link, err := s.Get(id)
	if err != nil {
		return err
	}
	cond, args := pairCondition(link)
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(cond, args...).Delete(&models.CompatibilityLink{})
		if res.Error != nil {
			return fmt.Errorf("compat: delete pair of link %d: %w", id, res.Error)
		}
		return nil
	})
}

// pairCondition matches both rows of a pair: same part type, stamps in
// either order.
func pairCondition(link *models.CompatibilityLink) (string, []interface{}) {
	cond := "part_type = ? AND ((source_stamp_id = ? AND target_stamp_id = ?) OR (source_stamp_id = ? AND target_stamp_id = ?))"
	args := []interface{}{
		link.PartType,
		link.SourceStampID, link.TargetStampID,
		link.TargetStampID, link.SourceStampID,
	}
	return cond, args
}
