// Package catalog manages the per-stamp part inventory across the seven
// category tables.
package catalog

// Descriptor describes one part category: which table holds it and which
// optional columns its rows carry. Every category has a name and a
// quantity; the rest varies.
type Descriptor struct {
	Key            string // action-id key, e.g. "punches"
	Table          string // backing table name
	Label          string // display label
	HasType        bool
	HasSize        bool
	HasImageURL    bool
	HasDescription bool
}

// categories is ordered the way the category menus present them.
var categories = []Descriptor{
	{Key: "punches", Table: "Punches", Label: "Punches", HasType: true, HasSize: true, HasImageURL: true, HasDescription: true},
	{Key: "inserts", Table: "Inserts", Label: "Inserts", HasSize: true, HasDescription: true},
	{Key: "knives", Table: "Knives", Label: "Knives", HasSize: true, HasDescription: true},
	{Key: "cams", Table: "Clamps", Label: "Cams", HasDescription: true},
	{Key: "discparts", Table: "Disc_Parts", Label: "Disc parts", HasDescription: true},
	{Key: "pushers", Table: "Pushers", Label: "Pushers", HasSize: true, HasDescription: true},
	{Key: "stampparts", Table: "Parts", Label: "Stamp parts", HasDescription: true},
}

// Categories returns all category descriptors in menu order.
func Categories() []Descriptor {
	out := make([]Descriptor, len(categories))
	copy(out, categories)
	return out
}

// ByKey returns the descriptor for a category key.
func ByKey(key string) (Descriptor, bool) {
	for _, d := range categories {
		if d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}

// TableNames returns the backing table name of every category, used by
// migration.
func TableNames() []string {
	names := make([]string, len(categories))
	for i, d := range categories {
		names[i] = d.Table
	}
	return names
}

// InputFields returns the ordered field names a comma-separated add-item
// line must supply for this category. Description, when the category
// carries one, may be omitted from the end of the line.
func (d Descriptor) InputFields() []string {
	fields := []string{"name"}
	if d.HasType {
		fields = append(fields, "type")
	}
	if d.HasSize {
		fields = append(fields, "size")
	}
	fields = append(fields, "quantity")
	if d.HasImageURL {
		fields = append(fields, "image_url")
	}
	if d.HasDescription {
		fields = append(fields, "description")
	}
	return fields
}

// OptionalColumns returns the optional column names this category carries,
// in display order. The balance report renders each with a placeholder when
// empty.
func (d Descriptor) OptionalColumns() []string {
	var cols []string
	if d.HasType {
		cols = append(cols, "type")
	}
	if d.HasSize {
		cols = append(cols, "size")
	}
	if d.HasImageURL {
		cols = append(cols, "image_url")
	}
	if d.HasDescription {
		cols = append(cols, "description")
	}
	return cols
}
