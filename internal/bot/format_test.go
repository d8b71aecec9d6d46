package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/models"
)

func TestFormatBalance_Empty(t *testing.T) {
	d, _ := catalog.ByKey("inserts")
	got := FormatBalance(d, "11.3", nil, 0)
	if !strings.Contains(got, "No items recorded yet.") {
		t.Errorf("empty balance = %q", got)
	}
	if !strings.Contains(got, "Inserts, stamp 11.3") {
		t.Errorf("missing header in %q", got)
	}
}

func TestFormatBalance_PlaceholderForEmptyColumns(t *testing.T) {
	d, _ := catalog.ByKey("punches")
	parts := []models.Part{{
		Name:     "Die-7",
		Quantity: 3,
		Type:     "forming",
		// size, image and description left blank
	}}
	got := FormatBalance(d, "11.3", parts, 0)

	if !strings.Contains(got, "(1 items)") {
		t.Errorf("missing count in %q", got)
	}
	if !strings.Contains(got, "type: forming") {
		t.Errorf("missing type in %q", got)
	}
	// Declared but empty columns still render, with the placeholder.
	for _, line := range []string{"size: -", "image: -", "description: -"} {
		if !strings.Contains(got, line) {
			t.Errorf("missing %q in %q", line, got)
		}
	}
}

func TestFormatBalance_ClockOffsetShiftsTimestamps(t *testing.T) {
	d, _ := catalog.ByKey("cams")
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	parts := []models.Part{{
		Name:      "Cam-2",
		Quantity:  1,
		CreatedAt: created,
		UpdatedAt: created,
	}}
	got := FormatBalance(d, "12.8", parts, 3*time.Hour)
	if !strings.Contains(got, "added: 2026-03-01 15:00") {
		t.Errorf("expected +3h shift, got %q", got)
	}
}

func TestFormatBalance_LastChangeOnlyWhenSet(t *testing.T) {
	d, _ := catalog.ByKey("cams")
	modified := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	withMod := []models.Part{{Name: "A", LastModified: &modified}}
	withoutMod := []models.Part{{Name: "B"}}

	if got := FormatBalance(d, "11.3", withMod, 0); !strings.Contains(got, "last change: 2026-03-02 08:00") {
		t.Errorf("missing last change in %q", got)
	}
	if got := FormatBalance(d, "11.3", withoutMod, 0); strings.Contains(got, "last change") {
		t.Errorf("unexpected last change in %q", got)
	}
}

func TestFormatLowStock_GroupsByCategory(t *testing.T) {
	items := []catalog.LowStockItem{
		{Category: "Inserts", Stamp: "11.3", Name: "Die-7", Quantity: 1},
		{Category: "Inserts", Stamp: "12.8", Name: "Die-9", Quantity: 0},
		{Category: "Knives", Stamp: "11.3", Name: "K-2", Quantity: 2},
	}
	got := FormatLowStock(items, 2)
	if !strings.Contains(got, "3 item(s) at or below 2") {
		t.Errorf("missing header in %q", got)
	}
	if strings.Count(got, "Inserts:") != 1 {
		t.Errorf("category header should appear once in %q", got)
	}
	if !strings.Contains(got, "11.3 / Die-7: 1 left") {
		t.Errorf("missing row in %q", got)
	}
}
