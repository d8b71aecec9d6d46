package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopfloor/toolcrib/internal/catalog"
)

// startEditDelete enters the edit/delete dialogue with the action choice.
func (e *Engine) startEditDelete(ctx context.Context, sess *Session, channelID string, d catalog.Descriptor, stampID uint, returnMenu string) {
	sess.ClearScratch()
	sess.Edit = &EditScratch{Category: d.Key, StampID: stampID, Return: returnMenu}
	sess.State = StateNone
	e.replyButtons(ctx, channelID, fmt.Sprintf("%s: what do you want to do?", d.Label), [][]Button{
		{{Label: "Edit an item", Action: "ed:edit"}, {Label: "Delete an item", Action: "ed:delete"}},
		{{Label: "Back", Action: "menu:" + returnMenu}},
	})
}

// handleEditAction processes the edit/delete family buttons.
func (e *Engine) handleEditAction(ctx context.Context, sess *Session, channelID, action string) {
	ed := sess.Edit
	if ed == nil {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	d, _ := catalog.ByKey(ed.Category)

	switch {
	case action == "edit" || action == "delete":
		ed.Mode = action
		sess.State = StateEditChoosingItem
		e.reply(ctx, channelID, fmt.Sprintf("Type the name of the item to %s:", action))

	case strings.HasPrefix(action, "field:"):
		if sess.State != StateEditChoosingField {
			e.reply(ctx, channelID, fallbackReply)
			return
		}
		field := strings.TrimPrefix(action, "field:")
		if !fieldAllowed(d, field) {
			e.reply(ctx, channelID, fallbackReply)
			return
		}
		ed.Field = field
		sess.State = StateEditEnteringValue
		e.reply(ctx, channelID, fmt.Sprintf("Enter the new %s for %s:", field, ed.PartName))

	case action == "del:yes":
		if sess.State != StateEditDeleteConfirm {
			e.reply(ctx, channelID, fallbackReply)
			return
		}
		if err := e.catalog.Delete(d, ed.PartID); err != nil {
			e.fail(ctx, channelID, "delete item", err)
			return
		}
		e.reply(ctx, channelID, fmt.Sprintf("%s deleted.", ed.PartName))
		e.finishEdit(ctx, sess, channelID)

	case action == "del:no":
		e.reply(ctx, channelID, "Nothing deleted.")
		e.finishEdit(ctx, sess, channelID)

	default:
		e.reply(ctx, channelID, fallbackReply)
	}
}

// editChooseItem resolves the typed item name for edit or delete.
func (e *Engine) editChooseItem(ctx context.Context, sess *Session, channelID, text string) {
	ed := sess.Edit
	if ed == nil {
		sess.State = StateNone
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	d, _ := catalog.ByKey(ed.Category)
	part, err := e.catalog.GetByName(d, ed.StampID, text)
	if errors.Is(err, catalog.ErrNotFound) {
		e.reply(ctx, channelID, fmt.Sprintf("No item named %q here. Try again:", text))
		return
	}
	if err != nil {
		e.fail(ctx, channelID, "find item to edit", err)
		return
	}
	ed.PartID = part.ID
	ed.PartName = part.Name

	if ed.Mode == "delete" {
		sess.State = StateEditDeleteConfirm
		e.replyButtons(ctx, channelID,
			fmt.Sprintf("Delete %s (quantity %d)? This cannot be undone.", part.Name, part.Quantity),
			[][]Button{{
				{Label: "Yes, delete", Action: "ed:del:yes"},
				{Label: "No, keep it", Action: "ed:del:no"},
			}})
		return
	}

	sess.State = StateEditChoosingField
	var row []Button
	var rows [][]Button
	for _, field := range d.InputFields() {
		row = append(row, Button{Label: field, Action: "ed:field:" + field})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	e.replyButtons(ctx, channelID, fmt.Sprintf("Which field of %s do you want to change?", part.Name), rows)
}

// editEnterValue validates and stores the new field value.
func (e *Engine) editEnterValue(ctx context.Context, sess *Session, channelID, text string) {
	ed := sess.Edit
	if ed == nil {
		sess.State = StateNone
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	d, _ := catalog.ByKey(ed.Category)
	value := strings.TrimSpace(text)

	if ed.Field == "quantity" {
		qty, err := catalog.ValidateQuantity(value, e.catalog.MaxQuantity())
		if err != nil {
			e.reply(ctx, channelID, fmt.Sprintf("%v. Try again:", err))
			return
		}
		if err := e.catalog.SetQuantity(d, ed.PartID, qty); err != nil {
			e.fail(ctx, channelID, "update quantity", err)
			return
		}
	} else {
		if ed.Field == "name" {
			// Renaming onto an existing item would create a duplicate.
			if existing, err := e.catalog.GetByName(d, ed.StampID, value); err == nil && existing.ID != ed.PartID {
				e.reply(ctx, channelID, fmt.Sprintf("An item named %q already exists here. Pick another name:", value))
				return
			}
		}
		if err := e.catalog.UpdateField(d, ed.PartID, ed.Field, value); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				e.fail(ctx, channelID, "update field", err)
				return
			}
			e.reply(ctx, channelID, fmt.Sprintf("%v. Try again:", err))
			return
		}
	}

	e.reply(ctx, channelID, fmt.Sprintf("Updated %s of %s.", ed.Field, ed.PartName))
	e.finishEdit(ctx, sess, channelID)
}

// finishEdit ends the dialogue and returns to the category menu.
func (e *Engine) finishEdit(ctx context.Context, sess *Session, channelID string) {
	target := sess.Edit.Return
	sess.State = StateNone
	sess.ClearScratch()
	e.sendMenu(ctx, channelID, sess, target)
}

// fieldAllowed reports whether a field name belongs to the category schema.
func fieldAllowed(d catalog.Descriptor, field string) bool {
	for _, f := range d.InputFields() {
		if f == field {
			return true
		}
	}
	return false
}
