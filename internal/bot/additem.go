package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopfloor/toolcrib/internal/catalog"
)

// startAddItem enters the add-item dialogue: one comma-separated line per
// the category schema.
func (e *Engine) startAddItem(ctx context.Context, sess *Session, channelID string, d catalog.Descriptor, stampID uint, returnMenu string) {
	sess.ClearScratch()
	sess.Add = &AddScratch{Category: d.Key, StampID: stampID, Return: returnMenu}
	sess.State = StateAddEntering
	e.reply(ctx, channelID, addPrompt(d))
}

// addPrompt spells out the expected line for a category, e.g.
// "name, size, quantity, description (description optional)".
func addPrompt(d catalog.Descriptor) string {
	fields := d.InputFields()
	prompt := fmt.Sprintf("Enter the new item on one line, comma-separated: %s", strings.Join(fields, ", "))
	if d.HasDescription {
		prompt += " (description optional)"
	}
	return prompt
}

// addItemEntry parses and stores the entered line. Validation failures and
// duplicate names re-enter the same state with a pointed message.
func (e *Engine) addItemEntry(ctx context.Context, sess *Session, channelID, text string) {
	a := sess.Add
	if a == nil {
		sess.State = StateNone
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	d, _ := catalog.ByKey(a.Category)

	part, err := catalog.ParseEntry(d, text, e.catalog.MaxQuantity())
	if err != nil {
		e.reply(ctx, channelID, fmt.Sprintf("That doesn't look right: %v. Try again:", err))
		return
	}
	part.StampID = a.StampID

	err = e.catalog.Insert(d, part)
	if errors.Is(err, catalog.ErrDuplicateName) {
		e.reply(ctx, channelID, fmt.Sprintf("An item named %q already exists here. Pick another name:", part.Name))
		return
	}
	if err != nil {
		e.fail(ctx, channelID, "insert item", err)
		return
	}

	e.reply(ctx, channelID, fmt.Sprintf("Added %s with quantity %d.", part.Name, part.Quantity))
	sess.State = StateNone
	sess.ClearScratch()
	e.sendMenu(ctx, channelID, sess, a.Return)
}
