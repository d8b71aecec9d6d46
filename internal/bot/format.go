package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/models"
)

// placeholder is rendered for optional columns that hold no value, so a
// category's declared columns always show up in the report.
const placeholder = "-"

// timeLayout is the timestamp format used in balance reports.
const timeLayout = "2006-01-02 15:04"

// FormatBalance renders the full balance report for one category of one
// stamp: every row with its quantity, the category's declared optional
// columns (placeholder when empty), and the row's timestamps shifted by
// clockOffset to shop wall-clock time.
func FormatBalance(d catalog.Descriptor, stampName string, parts []models.Part, clockOffset time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, stamp %s", d.Label, stampName)
	if len(parts) == 0 {
		b.WriteString("\n\nNo items recorded yet.")
		return b.String()
	}
	fmt.Fprintf(&b, " (%d items)\n", len(parts))

	for _, p := range parts {
		fmt.Fprintf(&b, "\n%s\n", p.Name)
		fmt.Fprintf(&b, "  quantity: %d\n", p.Quantity)
		for _, col := range d.OptionalColumns() {
			fmt.Fprintf(&b, "  %s: %s\n", colLabel(col), orPlaceholder(colValue(p, col)))
		}
		fmt.Fprintf(&b, "  added: %s\n", p.CreatedAt.Add(clockOffset).Format(timeLayout))
		fmt.Fprintf(&b, "  updated: %s\n", p.UpdatedAt.Add(clockOffset).Format(timeLayout))
		if p.LastModified != nil {
			fmt.Fprintf(&b, "  last change: %s\n", p.LastModified.Add(clockOffset).Format(timeLayout))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func colLabel(col string) string {
	if col == "image_url" {
		return "image"
	}
	return col
}

func colValue(p models.Part, col string) string {
	switch col {
	case "type":
		return p.Type
	case "size":
		return p.Size
	case "image_url":
		return p.ImageURL
	case "description":
		return p.Description
	}
	return ""
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
