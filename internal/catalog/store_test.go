package catalog

import (
	"errors"
	"testing"

	"github.com/shopfloor/toolcrib/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestStore opens an in-memory database with all category tables
// migrated and two stamps seeded.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Stamp{}); err != nil {
		t.Fatalf("migrate stamps: %v", err)
	}
	for _, table := range TableNames() {
		if err := gdb.Table(table).AutoMigrate(&models.Part{}); err != nil {
			t.Fatalf("migrate %s: %v", table, err)
		}
	}
	for _, name := range []string{"11.3", "12.8"} {
		if err := gdb.Create(&models.Stamp{Name: name}).Error; err != nil {
			t.Fatalf("seed stamp %s: %v", name, err)
		}
	}
	store, err := NewStore(StoreOpts{DB: gdb})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func punches(t *testing.T) Descriptor {
	t.Helper()
	d, ok := ByKey("punches")
	if !ok {
		t.Fatal("punches descriptor missing")
	}
	return d
}

func TestNewStore_RequiresDB(t *testing.T) {
	_, err := NewStore(StoreOpts{})
	if err == nil {
		t.Fatal("expected error for missing DB")
	}
}

func TestInsert_And_ListByStamp(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	part := &models.Part{StampID: 1, Name: "Die-7", Type: "round", Size: "12mm", Quantity: 12}
	if err := store.Insert(d, part); err != nil {
		t.Fatalf("insert: %v", err)
	}

	parts, err := store.ListByStamp(d, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("len(parts) = %d, want 1", len(parts))
	}
	if parts[0].Name != "Die-7" {
		t.Errorf("Name = %q, want %q", parts[0].Name, "Die-7")
	}
	if parts[0].Quantity != 12 {
		t.Errorf("Quantity = %d, want 12", parts[0].Quantity)
	}
	if parts[0].LastModified == nil {
		t.Error("LastModified not stamped on insert")
	}
}

func TestInsert_DuplicateName_CaseInsensitive(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	if err := store.Insert(d, &models.Part{StampID: 1, Name: "Die-7", Quantity: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := store.Insert(d, &models.Part{StampID: 1, Name: "die-7", Quantity: 5})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestInsert_SameNameDifferentStamp_OK(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	if err := store.Insert(d, &models.Part{StampID: 1, Name: "Die-7", Quantity: 1}); err != nil {
		t.Fatalf("insert stamp 1: %v", err)
	}
	if err := store.Insert(d, &models.Part{StampID: 2, Name: "Die-7", Quantity: 1}); err != nil {
		t.Fatalf("insert stamp 2: %v", err)
	}
}

func TestInsert_SameNameDifferentCategory_OK(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)
	knives, ok := ByKey("knives")
	if !ok {
		t.Fatal("knives descriptor missing")
	}

	if err := store.Insert(d, &models.Part{StampID: 1, Name: "Blade-2", Quantity: 1}); err != nil {
		t.Fatalf("insert punch: %v", err)
	}
	if err := store.Insert(knives, &models.Part{StampID: 1, Name: "Blade-2", Quantity: 1}); err != nil {
		t.Fatalf("insert knife: %v", err)
	}
}

func TestInsert_RejectsBadName(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	err := store.Insert(d, &models.Part{StampID: 1, Name: "Die<script>", Quantity: 1})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGetByName_CaseInsensitive(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	if err := store.Insert(d, &models.Part{StampID: 1, Name: "Die-7", Quantity: 3}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	part, err := store.GetByName(d, 1, "DIE-7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if part.Name != "Die-7" {
		t.Errorf("Name = %q, want %q", part.Name, "Die-7")
	}
}

func TestGetByName_NotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetByName(punches(t), 1, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetQuantity_ClampsNegativeToZero(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	part := &models.Part{StampID: 1, Name: "Die-7", Quantity: 3}
	if err := store.Insert(d, part); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.SetQuantity(d, part.ID, -5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	got, err := store.GetByID(d, part.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != 0 {
		t.Errorf("Quantity = %d, want 0", got.Quantity)
	}
}

func TestSetQuantity_RejectsAboveMax(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	part := &models.Part{StampID: 1, Name: "Die-7", Quantity: 3}
	if err := store.Insert(d, part); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.SetQuantity(d, part.ID, 10001); err == nil {
		t.Fatal("expected error for quantity above max")
	}
}

func TestSetQuantity_NotFound(t *testing.T) {
	store := openTestStore(t)
	err := store.SetQuantity(punches(t), 999, 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateField(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	part := &models.Part{StampID: 1, Name: "Die-7", Quantity: 3}
	if err := store.Insert(d, part); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.UpdateField(d, part.ID, "size", "14mm"); err != nil {
		t.Fatalf("update field: %v", err)
	}

	got, err := store.GetByID(d, part.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Size != "14mm" {
		t.Errorf("Size = %q, want %q", got.Size, "14mm")
	}
}

func TestUpdateField_RejectsInvalidValue(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	part := &models.Part{StampID: 1, Name: "Die-7", Quantity: 3}
	if err := store.Insert(d, part); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.UpdateField(d, part.ID, "quantity", "-4"); err == nil {
		t.Fatal("expected error for negative quantity string")
	}
	if err := store.UpdateField(d, part.ID, "image_url", "not a url"); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)

	part := &models.Part{StampID: 1, Name: "Die-7", Quantity: 3}
	if err := store.Insert(d, part); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Delete(d, part.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(d, part.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
	if err := store.Delete(d, part.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestLowStock(t *testing.T) {
	store := openTestStore(t)
	d := punches(t)
	knives, _ := ByKey("knives")

	if err := store.Insert(d, &models.Part{StampID: 1, Name: "Die-7", Quantity: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(d, &models.Part{StampID: 1, Name: "Die-8", Quantity: 50}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(knives, &models.Part{StampID: 2, Name: "Blade-1", Quantity: 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	items, err := store.LowStock(2)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Category != "Punches" || items[0].Name != "Die-7" || items[0].Stamp != "11.3" {
		t.Errorf("items[0] = %+v, want Die-7 on 11.3 in Punches", items[0])
	}
	if items[1].Category != "Knives" || items[1].Quantity != 0 {
		t.Errorf("items[1] = %+v, want Blade-1 qty 0 in Knives", items[1])
	}
}

func TestStampByName(t *testing.T) {
	store := openTestStore(t)
	stamp, err := store.StampByName("11.3")
	if err != nil {
		t.Fatalf("stamp by name: %v", err)
	}
	if stamp.ID == 0 {
		t.Error("stamp ID is zero")
	}

	if _, err := store.StampByName("99.9"); !errors.Is(err, ErrStampNotFound) {
		t.Fatalf("err = %v, want ErrStampNotFound", err)
	}
}

func TestListStamps_Ordered(t *testing.T) {
	store := openTestStore(t)
	stamps, err := store.ListStamps()
	if err != nil {
		t.Fatalf("list stamps: %v", err)
	}
	if len(stamps) != 2 {
		t.Fatalf("len(stamps) = %d, want 2", len(stamps))
	}
	if stamps[0].Name != "11.3" || stamps[1].Name != "12.8" {
		t.Errorf("stamps = [%s, %s], want [11.3, 12.8]", stamps[0].Name, stamps[1].Name)
	}
}
