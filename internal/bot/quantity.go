package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopfloor/toolcrib/internal/catalog"
)

// startQuantityChange enters the quantity-change dialogue: the user types
// an item name, then adjusts a working copy with buttons.
func (e *Engine) startQuantityChange(ctx context.Context, sess *Session, channelID string, d catalog.Descriptor, stampID uint, returnMenu string) {
	sess.ClearScratch()
	sess.Quantity = &QuantityScratch{Category: d.Key, StampID: stampID, Return: returnMenu}
	sess.State = StateQtyChoosingItem
	e.reply(ctx, channelID, fmt.Sprintf("Type the name of the %s item to adjust:", d.Label))
}

// quantityChooseItem resolves the typed item name. A miss re-prompts in
// the same state.
func (e *Engine) quantityChooseItem(ctx context.Context, sess *Session, channelID, text string) {
	q := sess.Quantity
	if q == nil {
		sess.State = StateNone
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	d, _ := catalog.ByKey(q.Category)
	part, err := e.catalog.GetByName(d, q.StampID, text)
	if errors.Is(err, catalog.ErrNotFound) {
		e.reply(ctx, channelID, fmt.Sprintf("No item named %q here. Check the balance and try again:", text))
		return
	}
	if err != nil {
		e.fail(ctx, channelID, "find item for quantity change", err)
		return
	}

	q.PartID = part.ID
	q.PartName = part.Name
	q.Stored = part.Quantity
	q.Scratch = part.Quantity
	sess.State = StateQtyAdjusting
	e.sendAdjuster(ctx, channelID, q)
}

// handleQuantityAction processes the adjuster buttons. Changes accumulate
// on the scratch copy only; nothing is stored until Done.
func (e *Engine) handleQuantityAction(ctx context.Context, sess *Session, channelID, action string) {
	q := sess.Quantity
	if q == nil || sess.State != StateQtyAdjusting {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}

	switch action {
	case "+1", "-1", "+10", "-10":
		delta := map[string]int{"+1": 1, "-1": -1, "+10": 10, "-10": -10}[action]
		q.Scratch += delta
		if q.Scratch < 0 {
			q.Scratch = 0
		}
		if max := e.catalog.MaxQuantity(); q.Scratch > max {
			q.Scratch = max
		}
		e.sendAdjuster(ctx, channelID, q)
	case "done":
		e.quantitySave(ctx, sess, channelID, q.Return)
	case "back":
		if q.Unsaved() {
			q.PendingMenu = q.Return
			sess.State = StateQtyConfirmExit
			e.sendConfirmExit(ctx, channelID, sess)
			return
		}
		sess.State = StateNone
		sess.ClearScratch()
		e.sendMenu(ctx, channelID, sess, q.Return)
	default:
		e.reply(ctx, channelID, fallbackReply)
		e.sendAdjuster(ctx, channelID, q)
	}
}

// handleConfirmAction resolves the forced save/discard choice when the
// user tries to leave with unsaved changes.
func (e *Engine) handleConfirmAction(ctx context.Context, sess *Session, channelID, action string) {
	q := sess.Quantity
	if q == nil || sess.State != StateQtyConfirmExit {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	target := q.PendingMenu
	if target == "" {
		target = q.Return
	}

	switch action {
	case "save":
		e.quantitySave(ctx, sess, channelID, target)
	case "discard":
		e.reply(ctx, channelID, fmt.Sprintf("Changes to %s discarded.", q.PartName))
		sess.State = StateNone
		sess.ClearScratch()
		e.sendMenu(ctx, channelID, sess, target)
	default:
		e.sendConfirmExit(ctx, channelID, sess)
	}
}

// quantitySave persists the scratch value and ends the dialogue.
func (e *Engine) quantitySave(ctx context.Context, sess *Session, channelID, target string) {
	q := sess.Quantity
	d, _ := catalog.ByKey(q.Category)
	if q.Unsaved() {
		if err := e.catalog.SetQuantity(d, q.PartID, q.Scratch); err != nil {
			e.fail(ctx, channelID, "save quantity", err)
			e.sendAdjuster(ctx, channelID, q)
			sess.State = StateQtyAdjusting
			return
		}
		e.reply(ctx, channelID, fmt.Sprintf("Saved: %s is now %d.", q.PartName, q.Scratch))
	} else {
		e.reply(ctx, channelID, fmt.Sprintf("%s unchanged at %d.", q.PartName, q.Stored))
	}
	sess.State = StateNone
	sess.ClearScratch()
	e.sendMenu(ctx, channelID, sess, target)
}

// sendAdjuster shows the working quantity with the adjuster buttons.
func (e *Engine) sendAdjuster(ctx context.Context, channelID string, q *QuantityScratch) {
	text := fmt.Sprintf("%s: %d", q.PartName, q.Scratch)
	if q.Unsaved() {
		text = fmt.Sprintf("%s: %d (stored: %d, not saved yet)", q.PartName, q.Scratch, q.Stored)
	}
	e.replyButtons(ctx, channelID, text, [][]Button{
		{
			{Label: "-10", Action: "qty:-10"},
			{Label: "-1", Action: "qty:-1"},
			{Label: "+1", Action: "qty:+1"},
			{Label: "+10", Action: "qty:+10"},
		},
		{
			{Label: "Done", Action: "qty:done"},
			{Label: "Back", Action: "qty:back"},
		},
	})
}

// sendConfirmExit shows the forced save/discard prompt.
func (e *Engine) sendConfirmExit(ctx context.Context, channelID string, sess *Session) {
	q := sess.Quantity
	e.replyButtons(ctx, channelID,
		fmt.Sprintf("You changed %s from %d to %d but didn't save. Save or discard?", q.PartName, q.Stored, q.Scratch),
		[][]Button{{
			{Label: "Save", Action: "confirm:save"},
			{Label: "Discard", Action: "confirm:discard"},
		}})
}
