package bot

import (
	"fmt"
	"strings"

	"github.com/shopfloor/toolcrib/internal/catalog"
)

// BuildLowStockDigest scans every category for items at or below the
// threshold and returns the formatted report. Returns "" when nothing is
// low, so callers can suppress the post.
func BuildLowStockDigest(store *catalog.Store, threshold int) (string, error) {
	items, err := store.LowStock(threshold)
	if err != nil {
		return "", fmt.Errorf("bot: low stock digest: %w", err)
	}
	if len(items) == 0 {
		return "", nil
	}
	return FormatLowStock(items, threshold), nil
}

// FormatLowStock renders the low-stock report, grouped by category.
func FormatLowStock(items []catalog.LowStockItem, threshold int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Low stock report (%d item(s) at or below %d):", len(items), threshold)
	category := ""
	for _, it := range items {
		if it.Category != category {
			category = it.Category
			fmt.Fprintf(&b, "\n%s:", category)
		}
		fmt.Fprintf(&b, "\n  %s / %s: %d left", it.Stamp, it.Name, it.Quantity)
	}
	return b.String()
}
