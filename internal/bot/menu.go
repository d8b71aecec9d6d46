package bot

import (
	"fmt"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/config"
)

// Menu names that exist independently of the stamp list.
const (
	menuMain          = "main_menu"
	menuInventory     = "inventory"
	menuCompatibility = "compatibility"
	menuDrawings      = "drawings"
)

// Menu is one screen of the button hierarchy.
type Menu struct {
	Title string
	Rows  [][]Button
}

// MenuRegistry holds every menu, built once at startup from the
// configured stamp list and the category table. Navigation actions are
// "menu:<name>"; the leaf inventory buttons carry compound action ids
// decoded by ParseAction.
type MenuRegistry struct {
	menus map[string]Menu
}

// NewMenuRegistry builds the full menu hierarchy for the given stamps.
func NewMenuRegistry(stamps []config.StampConfig) (*MenuRegistry, error) {
	if len(stamps) == 0 {
		return nil, fmt.Errorf("bot: menu registry: at least one stamp is required")
	}
	menus := make(map[string]Menu)

	menus[menuMain] = Menu{
		Title: "What would you like to do?",
		Rows: [][]Button{
			{{Label: "Inventory", Action: "menu:" + menuInventory}},
			{{Label: "Parts compatibility", Action: "menu:" + menuCompatibility}},
			{{Label: "Drawings", Action: "menu:" + menuDrawings}},
			{{Label: "Excel export", Action: "stub:excel"}},
			{{Label: "Bolts", Action: "stub:bolts"}, {Label: "Stationery", Action: "stub:stationery"}},
		},
	}

	// Inventory: one button per stamp.
	var stampRows [][]Button
	for _, s := range stamps {
		stampRows = append(stampRows, []Button{{Label: s.Name, Action: "menu:stamp_" + s.Ref}})
	}
	stampRows = append(stampRows, []Button{{Label: "Back", Action: "menu:" + menuMain}})
	menus[menuInventory] = Menu{Title: "Pick a stamp:", Rows: stampRows}

	// Per stamp: category list, then per category: the four operations.
	for _, s := range stamps {
		var catRows [][]Button
		for _, d := range catalog.Categories() {
			catRows = append(catRows, []Button{{
				Label:  d.Label,
				Action: fmt.Sprintf("menu:cat_%s_%s", d.Key, s.Ref),
			}})
		}
		catRows = append(catRows, []Button{{Label: "Back", Action: "menu:" + menuInventory}})
		menus["stamp_"+s.Ref] = Menu{
			Title: fmt.Sprintf("Stamp %s. Pick a category:", s.Name),
			Rows:  catRows,
		}

		for _, d := range catalog.Categories() {
			name := fmt.Sprintf("cat_%s_%s", d.Key, s.Ref)
			menus[name] = Menu{
				Title: fmt.Sprintf("%s, stamp %s:", d.Label, s.Name),
				Rows: [][]Button{
					{{Label: "Show balance", Action: string(OpShowBalance) + d.Key + s.Ref}},
					{{Label: "Add new item", Action: string(OpAddNewItem) + d.Key + s.Ref}},
					{{Label: "Change quantity", Action: string(OpChangeQuantity) + d.Key + s.Ref}},
					{{Label: "Edit or delete", Action: string(OpEditDelete) + d.Key + s.Ref}},
					{{Label: "Back", Action: "menu:stamp_" + s.Ref}},
				},
			}
		}
	}

	menus[menuCompatibility] = Menu{
		Title: "Parts compatibility:",
		Rows: [][]Button{
			{{Label: "Check compatibility", Action: "compat:check"}},
			{{Label: "Add a link", Action: "compat:add"}},
			{{Label: "Edit links", Action: "compat:edit"}},
			{{Label: "Back", Action: "menu:" + menuMain}},
		},
	}

	menus[menuDrawings] = Menu{
		Title: "Drawings:",
		Rows: [][]Button{
			{{Label: "Upload a drawing", Action: "drw:upload"}},
			{{Label: "View by stamp", Action: "drw:view"}},
			{{Label: "Search", Action: "drw:search"}},
			{{Label: "Back", Action: "menu:" + menuMain}},
		},
	}

	return &MenuRegistry{menus: menus}, nil
}

// Get returns the named menu. Unknown names return ok=false; every caller
// guards rather than panicking mid-dialogue.
func (r *MenuRegistry) Get(name string) (Menu, bool) {
	m, ok := r.menus[name]
	return m, ok
}

// CategoryMenuName returns the menu name of a category screen, the place
// dialogues return to when they finish.
func CategoryMenuName(categoryKey, stampRef string) string {
	return fmt.Sprintf("cat_%s_%s", categoryKey, stampRef)
}
