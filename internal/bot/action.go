package bot

import "regexp"

// Op names the four inventory operations a category menu offers.
type Op string

const (
	OpShowBalance    Op = "showbalance"
	OpAddNewItem     Op = "addnewitem"
	OpChangeQuantity Op = "changequantity"
	OpEditDelete     Op = "editdelete"
)

// Command is a decoded inventory action id.
type Command struct {
	Op       Op
	Category string // category key, e.g. "punches"
	StampRef string // stamp ref, may contain underscores ("13_3_dwb_new")
}

// actionPattern decodes compound action ids like
// "changequantitypunches13_3_dwb_new": operation, then category key, then
// the stamp ref. Stamp refs always begin with a digit, which is what
// separates them from the letters-only category key. Decoding happens once
// here; everything downstream works with the structured Command.
var actionPattern = regexp.MustCompile(`^(showbalance|addnewitem|changequantity|editdelete)([a-z]+)(\d[\w.-]*)$`)

// ParseAction decodes an inventory action id into a Command. Returns
// ok=false for anything that is not one of the four operations.
func ParseAction(action string) (Command, bool) {
	m := actionPattern.FindStringSubmatch(action)
	if m == nil {
		return Command{}, false
	}
	return Command{Op: Op(m[1]), Category: m[2], StampRef: m[3]}, true
}
