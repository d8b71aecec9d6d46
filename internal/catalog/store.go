package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopfloor/toolcrib/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateName is returned by Insert when the stamp already has an
// item with the same name, compared case-insensitively.
var ErrDuplicateName = errors.New("catalog: item with this name already exists")

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("catalog: item not found")

// Store performs inventory operations against the category tables. One
// Store serves all seven categories; each call selects its table through
// the category descriptor.
type Store struct {
	db          *gorm.DB
	maxQuantity int
}

// StoreOpts configures a Store.
type StoreOpts struct {
	DB          *gorm.DB
	MaxQuantity int // upper bound for quantities, 0 means 10000
}

// NewStore creates a Store. DB is required.
func NewStore(opts StoreOpts) (*Store, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("catalog: DB is required")
	}
	if opts.MaxQuantity == 0 {
		opts.MaxQuantity = 10000
	}
	return &Store{db: opts.DB, maxQuantity: opts.MaxQuantity}, nil
}

// MaxQuantity returns the configured quantity upper bound.
func (s *Store) MaxQuantity() int { return s.maxQuantity }

// ListByStamp returns all items of a category for a stamp, ordered by name.
func (s *Store) ListByStamp(d Descriptor, stampID uint) ([]models.Part, error) {
	var parts []models.Part
	if err := s.db.Table(d.Table).Where("stamp_id = ?", stampID).
		Order("name ASC").Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("catalog: list %s for stamp %d: %w", d.Key, stampID, err)
	}
	return parts, nil
}

// GetByName finds an item by name within a stamp, case-insensitively.
func (s *Store) GetByName(d Descriptor, stampID uint, name string) (*models.Part, error) {
	var part models.Part
	err := s.db.Table(d.Table).
		Where("stamp_id = ? AND LOWER(name) = ?", stampID, strings.ToLower(strings.TrimSpace(name))).
		First(&part).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s %q for stamp %d: %w", d.Key, name, stampID, err)
	}
	return &part, nil
}

// GetByID finds an item by primary key.
func (s *Store) GetByID(d Descriptor, id uint) (*models.Part, error) {
	var part models.Part
	err := s.db.Table(d.Table).Where("id = ?", id).First(&part).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s id %d: %w", d.Key, id, err)
	}
	return &part, nil
}

// Insert validates and stores a new item. Duplicate names within the same
// stamp are rejected before any write.
func (s *Store) Insert(d Descriptor, part *models.Part) error {
	if err := ValidateName(part.Name); err != nil {
		return fmt.Errorf("catalog: insert: %w", err)
	}
	if part.Quantity < 0 || part.Quantity > s.maxQuantity {
		return fmt.Errorf("catalog: insert: quantity must be between 0 and %d", s.maxQuantity)
	}
	if _, err := s.GetByName(d, part.StampID, part.Name); err == nil {
		return ErrDuplicateName
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	now := time.Now()
	part.LastModified = &now
	if err := s.db.Table(d.Table).Create(part).Error; err != nil {
		return fmt.Errorf("catalog: insert %s %q: %w", d.Key, part.Name, err)
	}
	return nil
}

// UpdateField sets a single column on an item. The value must already be
// validated against the category schema; quantity values arrive as ints
// through SetQuantity instead.
func (s *Store) UpdateField(d Descriptor, id uint, field, value string) error {
	if err := ValidateField(field, value, s.maxQuantity); err != nil {
		return fmt.Errorf("catalog: update %s: %w", d.Key, err)
	}
	updates := map[string]interface{}{
		field:           strings.TrimSpace(value),
		"last_modified": time.Now(),
	}
	res := s.db.Table(d.Table).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("catalog: update %s id %d: %w", d.Key, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetQuantity stores a new quantity for an item. Negative values clamp to
// zero; values above the maximum are rejected.
func (s *Store) SetQuantity(d Descriptor, id uint, quantity int) error {
	if quantity < 0 {
		quantity = 0
	}
	if quantity > s.maxQuantity {
		return fmt.Errorf("catalog: quantity must be at most %d", s.maxQuantity)
	}
	res := s.db.Table(d.Table).Where("id = ?", id).Updates(map[string]interface{}{
		"quantity":      quantity,
		"last_modified": time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("catalog: set quantity on %s id %d: %w", d.Key, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item.
func (s *Store) Delete(d Descriptor, id uint) error {
	res := s.db.Table(d.Table).Where("id = ?", id).Delete(&models.Part{})
	if res.Error != nil {
		return fmt.Errorf("catalog: delete %s id %d: %w", d.Key, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LowStockItem is one row of the low-stock digest, joined with its stamp
// and category for display.
type LowStockItem struct {
	Category string
	Stamp    string
	Name     string
	Quantity int
}

// LowStock returns all items across every category at or below threshold,
// ordered by category then stamp then name.
func (s *Store) LowStock(threshold int) ([]LowStockItem, error) {
	var out []LowStockItem
	for _, d := range categories {
		var rows []struct {
			Name     string
			Quantity int
			Stamp    string
		}
		err := s.db.Table(d.Table).
			Select(d.Table+".name, "+d.Table+".quantity, Stamps.name AS stamp").
			Joins("JOIN Stamps ON Stamps.id = "+d.Table+".stamp_id").
			Where(d.Table+".quantity <= ?", threshold).
			Order("stamp ASC, " + d.Table + ".name ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("catalog: low stock scan %s: %w", d.Key, err)
		}
		for _, r := range rows {
			out = append(out, LowStockItem{
				Category: d.Label,
				Stamp:    r.Stamp,
				Name:     r.Name,
				Quantity: r.Quantity,
			})
		}
	}
	return out, nil
}
