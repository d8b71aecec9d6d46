package dashboard

import (
	"time"

	"gorm.io/gorm"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/models"
)

// CategoryCount holds item and quantity totals for one category of a stamp.
type CategoryCount struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
	Quantity int    `json:"quantity"`
}

// StampSummary holds per-category totals for one stamp.
type StampSummary struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Categories    []CategoryCount `json:"categories"`
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	Drawings      int             `json:"drawings"`
}

// StampSummaries returns every stamp with its per-category item counts and
// quantity totals, ordered by stamp name.
func StampSummaries(db *gorm.DB) ([]StampSummary, error) {
	var stamps []models.Stamp
	if err := db.Order("name ASC").Find(&stamps).Error; err != nil {
		return nil, err
	}

	summaries := make([]StampSummary, len(stamps))
	for i, stamp := range stamps {
		s := StampSummary{
			ID:          stamp.ID,
			Name:        stamp.Name,
			Description: stamp.Description,
		}
		for _, d := range catalog.Categories() {
			var row struct {
				Items    int
				Quantity int
			}
			err := db.Table(d.Table).
				Select("count(*) as items, coalesce(sum(quantity), 0) as quantity").
				Where("stamp_id = ?", stamp.ID).
				Scan(&row).Error
			if err != nil {
				return nil, err
			}
			if row.Items == 0 {
				continue
			}
			s.Categories = append(s.Categories, CategoryCount{
				Category: d.Label,
				Items:    row.Items,
				Quantity: row.Quantity,
			})
			s.TotalItems += row.Items
			s.TotalQuantity += row.Quantity
		}

		var drawings int64
		if err := db.Model(&models.Drawing{}).
			Where("stamp_id = ?", stamp.ID).
			Count(&drawings).Error; err != nil {
			return nil, err
		}
		s.Drawings = int(drawings)

		summaries[i] = s
	}
	return summaries, nil
}

// ItemRow holds one inventory item for the stamp detail view.
type ItemRow struct {
	ID           uint       `json:"id"`
	Category     string     `json:"category"`
	Name         string     `json:"name"`
	Type         string     `json:"type,omitempty"`
	Size         string     `json:"size,omitempty"`
	Quantity     int        `json:"quantity"`
	Description  string     `json:"description,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// StampDetail holds a stamp's full inventory across every category.
type StampDetail struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Items       []ItemRow `json:"items"`
}

// GetStampDetail returns every item a stamp holds, category by category in
// menu order, names sorted within each.
func GetStampDetail(db *gorm.DB, id uint) (*StampDetail, error) {
	var stamp models.Stamp
	if err := db.Where("id = ?", id).First(&stamp).Error; err != nil {
		return nil, err
	}

	detail := &StampDetail{
		ID:          stamp.ID,
		Name:        stamp.Name,
		Description: stamp.Description,
		Items:       []ItemRow{},
	}
	for _, d := range catalog.Categories() {
		var parts []models.Part
		err := db.Table(d.Table).
			Where("stamp_id = ?", stamp.ID).
			Order("name ASC").
			Find(&parts).Error
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			detail.Items = append(detail.Items, ItemRow{
				ID:           p.ID,
				Category:     d.Label,
				Name:         p.Name,
				Type:         p.Type,
				Size:         p.Size,
				Quantity:     p.Quantity,
				Description:  p.Description,
				LastModified: p.LastModified,
			})
		}
	}
	return detail, nil
}

// LowStockRow holds one low-stock item for display.
type LowStockRow struct {
	Category string `json:"category"`
	Stamp    string `json:"stamp"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// LowStockReport returns every item at or below threshold across all
// categories, joined with its stamp name.
func LowStockReport(db *gorm.DB, threshold int) ([]LowStockRow, error) {
	out := []LowStockRow{}
	for _, d := range catalog.Categories() {
		var rows []struct {
			Name     string
			Quantity int
			Stamp    string
		}
		err := db.Table(d.Table).
			Select(d.Table+".name, "+d.Table+".quantity, Stamps.name AS stamp").
			Joins("JOIN Stamps ON Stamps.id = "+d.Table+".stamp_id").
			Where(d.Table+".quantity <= ?", threshold).
			Order("stamp ASC, " + d.Table + ".name ASC").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, LowStockRow{
				Category: d.Label,
				Stamp:    r.Stamp,
				Name:     r.Name,
				Quantity: r.Quantity,
			})
		}
	}
	return out, nil
}

// DrawingRow holds drawing metadata for display. The file itself is not
// served; the dashboard is read-only metadata.
type DrawingRow struct {
	ID        uint      `json:"id"`
	Stamp     string    `json:"stamp"`
	Name      string    `json:"name"`
	FileType  string    `json:"file_type,omitempty"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// DrawingList returns drawing metadata, optionally filtered to one stamp,
// newest first.
func DrawingList(db *gorm.DB, stampID uint) ([]DrawingRow, error) {
	q := db.Model(&models.Drawing{}).
		Select("Drawings.id, Drawings.name, Drawings.file_type, Drawings.version, Drawings.created_at, Stamps.name AS stamp").
		Joins("JOIN Stamps ON Stamps.id = Drawings.stamp_id").
		Order("Drawings.created_at DESC")
	if stampID != 0 {
		q = q.Where("Drawings.stamp_id = ?", stampID)
	}

	rows := []DrawingRow{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
