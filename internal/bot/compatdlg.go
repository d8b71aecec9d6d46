package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopfloor/toolcrib/internal/catalog"
)

// handleCompatAction processes all compatibility-family buttons.
func (e *Engine) handleCompatAction(ctx context.Context, sess *Session, channelID, action string) {
	switch {
	case action == "compat:check":
		e.compatStampPick(ctx, sess, channelID, StateCompatCheckStamp, "Check compatibility for which stamp?")
	case action == "compat:add":
		e.compatStampPick(ctx, sess, channelID, StateCompatAddSource, "Link from which stamp?")
	case action == "compat:edit":
		e.compatListForEdit(ctx, sess, channelID)
	case action == "compat:skipnotes":
		if sess.State != StateCompatAddNotes || sess.Compat == nil {
			e.reply(ctx, channelID, fallbackReply)
			return
		}
		e.compatSave(ctx, sess, channelID, "")
	case action == "compat:editnotes":
		if sess.State != StateCompatEditAction || sess.Compat == nil {
			e.reply(ctx, channelID, fallbackReply)
			return
		}
		sess.State = StateCompatEditNotes
		e.reply(ctx, channelID, "Enter the new notes for this link:")
	case action == "compat:dellink":
		if sess.State != StateCompatEditAction || sess.Compat == nil {
			e.reply(ctx, channelID, fallbackReply)
			return
		}
		if err := e.compat.DeletePair(sess.Compat.LinkID); err != nil {
			e.fail(ctx, channelID, "delete compatibility pair", err)
			return
		}
		e.reply(ctx, channelID, "Link removed from both stamps.")
		e.finishCompat(ctx, sess, channelID)
	case strings.HasPrefix(action, "cstamp:"):
		e.compatStampChosen(ctx, sess, channelID, strings.TrimPrefix(action, "cstamp:"))
	case strings.HasPrefix(action, "ccat:"):
		e.compatCategoryChosen(ctx, sess, channelID, strings.TrimPrefix(action, "ccat:"))
	case strings.HasPrefix(action, "cpart:"):
		e.compatPartChosen(ctx, sess, channelID, strings.TrimPrefix(action, "cpart:"))
	case strings.HasPrefix(action, "clink:"):
		e.compatLinkChosen(ctx, sess, channelID, strings.TrimPrefix(action, "clink:"))
	default:
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
	}
}

// compatStampPick shows the stamp buttons and arms the given state.
func (e *Engine) compatStampPick(ctx context.Context, sess *Session, channelID string, state State, prompt string) {
	rows, err := e.stampButtons("cstamp:", 0)
	if err != nil {
		e.fail(ctx, channelID, "list stamps", err)
		return
	}
	sess.ClearScratch()
	sess.Compat = &CompatScratch{}
	sess.State = state
	e.replyButtons(ctx, channelID, prompt, rows)
}

// compatStampChosen routes a stamp pick by the armed state.
func (e *Engine) compatStampChosen(ctx context.Context, sess *Session, channelID, idStr string) {
	id, ok := parseID(idStr)
	c := sess.Compat
	if !ok || c == nil {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	stamp, err := e.catalog.StampByID(id)
	if err != nil {
		e.fail(ctx, channelID, "resolve stamp", err)
		return
	}

	switch sess.State {
	case StateCompatCheckStamp:
		e.compatShowLinks(ctx, sess, channelID, stamp.ID, stamp.Name)

	case StateCompatAddSource:
		c.SourceStampID = stamp.ID
		c.SourceName = stamp.Name
		rows, err := e.stampButtons("cstamp:", stamp.ID)
		if err != nil {
			e.fail(ctx, channelID, "list stamps", err)
			return
		}
		sess.State = StateCompatAddTarget
		e.replyButtons(ctx, channelID, fmt.Sprintf("%s is compatible with which stamp?", stamp.Name), rows)

	case StateCompatAddTarget:
		c.TargetStampID = stamp.ID
		c.TargetName = stamp.Name
		var rows [][]Button
		for _, d := range catalog.Categories() {
			rows = append(rows, []Button{{Label: d.Label, Action: "ccat:" + d.Key}})
		}
		sess.State = StateCompatAddCategory
		e.replyButtons(ctx, channelID, "Which part category does the link concern?", rows)

	default:
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
	}
}

// compatShowLinks renders the links of a stamp and ends the dialogue.
func (e *Engine) compatShowLinks(ctx context.Context, sess *Session, channelID string, stampID uint, stampName string) {
	links, err := e.compat.ListForStamp(stampID)
	if err != nil {
		e.fail(ctx, channelID, "list compatibility links", err)
		return
	}
	if len(links) == 0 {
		e.reply(ctx, channelID, fmt.Sprintf("No compatibility records for %s.", stampName))
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "Compatibility for %s:", stampName)
		for _, l := range links {
			fmt.Fprintf(&b, "\n  %s: %s", l.TargetStamp, l.PartType)
			if l.Notes != "" {
				fmt.Fprintf(&b, " (%s)", l.Notes)
			}
		}
		e.reply(ctx, channelID, b.String())
	}
	e.finishCompat(ctx, sess, channelID)
}

// compatCategoryChosen offers the source stamp's parts of that category,
// or a plain category-level link.
func (e *Engine) compatCategoryChosen(ctx context.Context, sess *Session, channelID, key string) {
	c := sess.Compat
	if c == nil || sess.State != StateCompatAddCategory {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	d, ok := catalog.ByKey(key)
	if !ok {
		e.reply(ctx, channelID, fallbackReply)
		return
	}
	c.Category = d.Key
	c.PartType = d.Label

	parts, err := e.catalog.ListByStamp(d, c.SourceStampID)
	if err != nil {
		e.fail(ctx, channelID, "list parts for link", err)
		return
	}
	var rows [][]Button
	for _, p := range parts {
		rows = append(rows, []Button{{Label: p.Name, Action: fmt.Sprintf("cpart:%d", p.ID)}})
	}
	rows = append(rows, []Button{{Label: "Whole category", Action: "cpart:skip"}})
	sess.State = StateCompatAddPart
	e.replyButtons(ctx, channelID, "Pick the specific part, or link the whole category:", rows)
}

// compatPartChosen narrows the link to a specific part, or keeps the
// category-level link, then asks for notes.
func (e *Engine) compatPartChosen(ctx context.Context, sess *Session, channelID, idStr string) {
	c := sess.Compat
	if c == nil || sess.State != StateCompatAddPart {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	if idStr != "skip" {
		id, ok := parseID(idStr)
		if !ok {
			e.reply(ctx, channelID, fallbackReply)
			return
		}
		d, _ := catalog.ByKey(c.Category)
		part, err := e.catalog.GetByID(d, id)
		if err != nil {
			e.fail(ctx, channelID, "resolve part for link", err)
			return
		}
		c.PartType = fmt.Sprintf("%s - %s", d.Label, part.Name)
	}
	sess.State = StateCompatAddNotes
	e.replyButtons(ctx, channelID, "Any notes for this link? Type them, or skip:", [][]Button{
		{{Label: "No notes", Action: "compat:skipnotes"}},
	})
}

// compatSaveWithNotes stores the pair using the typed notes.
func (e *Engine) compatSaveWithNotes(ctx context.Context, sess *Session, channelID, text string) {
	if sess.Compat == nil {
		sess.State = StateNone
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	e.compatSave(ctx, sess, channelID, strings.TrimSpace(text))
}

// compatSave writes the symmetric pair and ends the dialogue.
func (e *Engine) compatSave(ctx context.Context, sess *Session, channelID, notes string) {
	c := sess.Compat
	if err := e.compat.Add(c.SourceStampID, c.TargetStampID, c.PartType, notes); err != nil {
		e.fail(ctx, channelID, "save compatibility pair", err)
		return
	}
	e.reply(ctx, channelID, fmt.Sprintf("Linked %s and %s: %s. Both stamps now show it.",
		c.SourceName, c.TargetName, c.PartType))
	e.finishCompat(ctx, sess, channelID)
}

// compatListForEdit shows every logical link once, as buttons.
func (e *Engine) compatListForEdit(ctx context.Context, sess *Session, channelID string) {
	pairs, err := e.compat.ListPairs()
	if err != nil {
		e.fail(ctx, channelID, "list compatibility pairs", err)
		return
	}
	if len(pairs) == 0 {
		e.reply(ctx, channelID, "No compatibility records yet.")
		e.sendMenu(ctx, channelID, sess, menuCompatibility)
		return
	}
	var rows [][]Button
	for _, p := range pairs {
		label := fmt.Sprintf("%s <-> %s: %s", p.SourceStamp, p.TargetStamp, p.PartType)
		rows = append(rows, []Button{{Label: label, Action: fmt.Sprintf("clink:%d", p.ID)}})
	}
	sess.ClearScratch()
	sess.Compat = &CompatScratch{}
	sess.State = StateCompatEditPick
	e.replyButtons(ctx, channelID, "Pick a record:", rows)
}

// compatLinkChosen offers edit-notes or delete for the picked record.
func (e *Engine) compatLinkChosen(ctx context.Context, sess *Session, channelID, idStr string) {
	c := sess.Compat
	id, ok := parseID(idStr)
	if !ok || c == nil || sess.State != StateCompatEditPick {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	link, err := e.compat.Get(id)
	if err != nil {
		e.fail(ctx, channelID, "load compatibility link", err)
		return
	}
	c.LinkID = link.ID
	sess.State = StateCompatEditAction
	notes := link.Notes
	if notes == "" {
		notes = "(none)"
	}
	e.replyButtons(ctx, channelID,
		fmt.Sprintf("%s. Notes: %s", link.PartType, notes),
		[][]Button{
			{{Label: "Edit notes", Action: "compat:editnotes"}, {Label: "Delete link", Action: "compat:dellink"}},
			{{Label: "Back", Action: "menu:" + menuCompatibility}},
		})
}

// compatUpdateNotes stores new notes on both rows of the pair.
func (e *Engine) compatUpdateNotes(ctx context.Context, sess *Session, channelID, text string) {
	c := sess.Compat
	if c == nil {
		sess.State = StateNone
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	if err := e.compat.UpdateNotes(c.LinkID, strings.TrimSpace(text)); err != nil {
		e.fail(ctx, channelID, "update link notes", err)
		return
	}
	e.reply(ctx, channelID, "Notes updated on both stamps.")
	e.finishCompat(ctx, sess, channelID)
}

// finishCompat ends the dialogue and returns to the compatibility menu.
func (e *Engine) finishCompat(ctx context.Context, sess *Session, channelID string) {
	sess.State = StateNone
	sess.ClearScratch()
	e.sendMenu(ctx, channelID, sess, menuCompatibility)
}
