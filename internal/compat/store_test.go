package compat

import (
	"errors"
	"testing"

	"github.com/shopfloor/toolcrib/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Stamp{}, &models.CompatibilityLink{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, name := range []string{"11.3", "12.8", "14.0"} {
		if err := gdb.Create(&models.Stamp{Name: name}).Error; err != nil {
			t.Fatalf("seed stamp %s: %v", name, err)
		}
	}
	store, err := NewStore(StoreOpts{DB: gdb})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, gdb
}

func TestNewStore_RequiresDB(t *testing.T) {
	_, err := NewStore(StoreOpts{})
	if err == nil {
		t.Fatal("expected error for missing DB")
	}
}

func TestAdd_CreatesMirroredPair(t *testing.T) {
	store, gdb := openTestStore(t)

	if err := store.Add(1, 2, "Punches - Die-7", "fits with shim"); err != nil {
		t.Fatalf("add: %v", err)
	}

	var count int64
	gdb.Model(&models.CompatibilityLink{}).Count(&count)
	if count != 2 {
		t.Fatalf("row count = %d, want 2", count)
	}

	var reverse models.CompatibilityLink
	if err := gdb.Where("source_stamp_id = ? AND target_stamp_id = ?", 2, 1).First(&reverse).Error; err != nil {
		t.Fatalf("reverse row missing: %v", err)
	}
	if reverse.PartType != "Punches - Die-7" {
		t.Errorf("reverse PartType = %q, want %q", reverse.PartType, "Punches - Die-7")
	}
	if reverse.Notes != "fits with shim" {
		t.Errorf("reverse Notes = %q, want %q", reverse.Notes, "fits with shim")
	}
}

func TestAdd_RejectsSelfLink(t *testing.T) {
	store, _ := openTestStore(t)
	if err := store.Add(1, 1, "Punches", ""); err == nil {
		t.Fatal("expected error for self link")
	}
}

func TestAdd_RequiresPartType(t *testing.T) {
	store, _ := openTestStore(t)
	if err := store.Add(1, 2, "", ""); err == nil {
		t.Fatal("expected error for empty part type")
	}
}

func TestListForStamp_VisibleFromBothSides(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.Add(1, 2, "Inserts", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	from1, err := store.ListForStamp(1)
	if err != nil {
		t.Fatalf("list for stamp 1: %v", err)
	}
	if len(from1) != 1 {
		t.Fatalf("len(from1) = %d, want 1", len(from1))
	}
	if from1[0].SourceStamp != "11.3" || from1[0].TargetStamp != "12.8" {
		t.Errorf("from1[0] = %+v, want 11.3 -> 12.8", from1[0])
	}

	from2, err := store.ListForStamp(2)
	if err != nil {
		t.Fatalf("list for stamp 2: %v", err)
	}
	if len(from2) != 1 {
		t.Fatalf("len(from2) = %d, want 1", len(from2))
	}
	if from2[0].SourceStamp != "12.8" || from2[0].TargetStamp != "11.3" {
		t.Errorf("from2[0] = %+v, want 12.8 -> 11.3", from2[0])
	}
}

func TestListPairs_Deduplicates(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.Add(1, 2, "Inserts", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(3, 1, "Knives", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	pairs, err := store.ListPairs()
	if err != nil {
		t.Fatalf("list pairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2 (one per logical link)", len(pairs))
	}
}

func TestUpdateNotes_TouchesBothRows(t *testing.T) {
	store, gdb := openTestStore(t)

	if err := store.Add(1, 2, "Inserts", "old"); err != nil {
		t.Fatalf("add: %v", err)
	}
	var one models.CompatibilityLink
	if err := gdb.Where("source_stamp_id = ?", 1).First(&one).Error; err != nil {
		t.Fatalf("find row: %v", err)
	}

	if err := store.UpdateNotes(one.ID, "new notes"); err != nil {
		t.Fatalf("update notes: %v", err)
	}

	var links []models.CompatibilityLink
	gdb.Find(&links)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	for _, l := range links {
		if l.Notes != "new notes" {
			t.Errorf("link %d Notes = %q, want %q", l.ID, l.Notes, "new notes")
		}
	}
}

func TestDeletePair_RemovesBothRows(t *testing.T) {
	store, gdb := openTestStore(t)

	if err := store.Add(1, 2, "Inserts", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(1, 3, "Knives", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	var one models.CompatibilityLink
	if err := gdb.Where("source_stamp_id = ? AND target_stamp_id = ?", 2, 1).First(&one).Error; err != nil {
		t.Fatalf("find row: %v", err)
	}
	if err := store.DeletePair(one.ID); err != nil {
		t.Fatalf("delete pair: %v", err)
	}

	var count int64
	gdb.Model(&models.CompatibilityLink{}).Count(&count)
	if count != 2 {
		t.Errorf("row count = %d, want 2 (the other pair stays)", count)
	}
	var remaining []models.CompatibilityLink
	gdb.Find(&remaining)
	for _, l := range remaining {
		if l.PartType != "Knives" {
			t.Errorf("unexpected surviving link: %+v", l)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	store, _ := openTestStore(t)
	if _, err := store.Get(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := store.DeletePair(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeletePair err = %v, want ErrNotFound", err)
	}
	if err := store.UpdateNotes(99, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateNotes err = %v, want ErrNotFound", err)
	}
}
