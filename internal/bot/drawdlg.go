package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopfloor/toolcrib/internal/drawings"
)

// handleDrawAction processes all drawings-family buttons.
func (e *Engine) handleDrawAction(ctx context.Context, sess *Session, channelID, action string) {
	switch {
	case action == "drw:upload":
		e.drawStampPick(ctx, sess, channelID, StateDrawUploadStamp, "Upload a drawing for which stamp?")
	case action == "drw:view":
		e.drawStampPick(ctx, sess, channelID, StateDrawViewStamp, "View drawings of which stamp?")
	case action == "drw:search":
		sess.ClearScratch()
		sess.Draw = &DrawScratch{}
		sess.State = StateDrawSearch
		e.reply(ctx, channelID, "Type a word from the drawing name or description:")
	case strings.HasPrefix(action, "dstamp:"):
		e.drawStampChosen(ctx, sess, channelID, strings.TrimPrefix(action, "dstamp:"))
	case strings.HasPrefix(action, "dfile:"):
		e.drawSendFile(ctx, sess, channelID, strings.TrimPrefix(action, "dfile:"))
	default:
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
	}
}

// drawStampPick shows the stamp buttons and arms the given state.
func (e *Engine) drawStampPick(ctx context.Context, sess *Session, channelID string, state State, prompt string) {
	rows, err := e.stampButtons("dstamp:", 0)
	if err != nil {
		e.fail(ctx, channelID, "list stamps", err)
		return
	}
	sess.ClearScratch()
	sess.Draw = &DrawScratch{}
	sess.State = state
	e.replyButtons(ctx, channelID, prompt, rows)
}

// drawStampChosen routes a stamp pick by the armed state.
func (e *Engine) drawStampChosen(ctx context.Context, sess *Session, channelID, idStr string) {
	id, ok := parseID(idStr)
	if !ok || sess.Draw == nil {
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
		return
	}
	stamp, err := e.catalog.StampByID(id)
	if err != nil {
		e.fail(ctx, channelID, "resolve stamp", err)
		return
	}
	sess.Draw.StampID = stamp.ID
	sess.Draw.StampName = stamp.Name

	switch sess.State {
	case StateDrawUploadStamp:
		sess.State = StateDrawUploadFile
		e.reply(ctx, channelID, fmt.Sprintf(
			"Attach the drawing file for %s. Any text you send with it becomes the description.", stamp.Name))

	case StateDrawViewStamp:
		e.drawListForStamp(ctx, sess, channelID, stamp.ID, stamp.Name)

	default:
		e.reply(ctx, channelID, fallbackReply)
		e.sendMenu(ctx, channelID, sess, sess.Menu)
	}
}

// drawListForStamp shows the stamp's drawings as fetch buttons.
func (e *Engine) drawListForStamp(ctx context.Context, sess *Session, channelID string, stampID uint, stampName string) {
	list, err := e.drawings.ListByStamp(stampID)
	if err != nil {
		e.fail(ctx, channelID, "list drawings", err)
		return
	}
	if len(list) == 0 {
		e.reply(ctx, channelID, fmt.Sprintf("No drawings on file for %s.", stampName))
		e.finishDraw(ctx, sess, channelID)
		return
	}
	var rows [][]Button
	for _, d := range list {
		label := d.Name
		if d.Version > 1 {
			label = fmt.Sprintf("%s (v%d)", d.Name, d.Version)
		}
		rows = append(rows, []Button{{Label: label, Action: fmt.Sprintf("dfile:%d", d.ID)}})
	}
	rows = append(rows, []Button{{Label: "Back", Action: "menu:" + menuDrawings}})
	e.replyButtons(ctx, channelID, fmt.Sprintf("Drawings for %s:", stampName), rows)
}

// drawSendFile reads a stored drawing and ships it back as an attachment.
func (e *Engine) drawSendFile(ctx context.Context, sess *Session, channelID, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		e.reply(ctx, channelID, fallbackReply)
		return
	}
	rc, drawing, err := e.drawings.Open(id)
	if errors.Is(err, drawings.ErrFileMissing) {
		e.reply(ctx, channelID, "That drawing's file is missing from disk. Ask the toolroom office.")
		return
	}
	if err != nil {
		e.fail(ctx, channelID, "open drawing", err)
		return
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		e.fail(ctx, channelID, "read drawing", err)
		return
	}
	text := drawing.Name
	if drawing.Description != "" {
		text = fmt.Sprintf("%s: %s", drawing.Name, drawing.Description)
	}
	out := OutboundMessage{
		ChannelID: channelID,
		Text:      text,
		File:      &FilePayload{Name: drawing.Name, Data: data},
	}
	if err := e.adapter.Send(ctx, out); err != nil {
		e.fail(ctx, channelID, "send drawing", err)
	}
}

// drawReceiveFile stores the attachments of an upload-state message. The
// message text, if any, becomes the description of every file.
func (e *Engine) drawReceiveFile(ctx context.Context, sess *Session, msg InboundMessage) {
	scratch := sess.Draw
	if scratch == nil {
		sess.State = StateNone
		e.sendMenu(ctx, msg.ChannelID, sess, sess.Menu)
		return
	}
	if len(msg.Attachments) == 0 {
		e.reply(ctx, msg.ChannelID, "Please attach the drawing file itself, not just text.")
		return
	}

	description := strings.TrimSpace(msg.Text)
	saved := 0
	for _, att := range msg.Attachments {
		data, err := e.adapter.Download(ctx, att)
		if err != nil {
			e.fail(ctx, msg.ChannelID, "download attachment", err)
			continue
		}
		if _, err := e.drawings.Save(scratch.StampID, att.Filename, data, description); err != nil {
			e.fail(ctx, msg.ChannelID, "save drawing", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		e.reply(ctx, msg.ChannelID, fmt.Sprintf("Saved %d drawing(s) for %s.", saved, scratch.StampName))
	}
	e.finishDraw(ctx, sess, msg.ChannelID)
}

// drawSearch answers a search term typed in the search state.
func (e *Engine) drawSearch(ctx context.Context, sess *Session, channelID, text string) {
	term := strings.TrimSpace(text)
	if term == "" {
		e.reply(ctx, channelID, "Type at least one character to search for.")
		return
	}
	rows, err := e.drawings.Search(term)
	if err != nil {
		e.fail(ctx, channelID, "search drawings", err)
		return
	}
	if len(rows) == 0 {
		e.reply(ctx, channelID, fmt.Sprintf("Nothing matched %q.", term))
		e.finishDraw(ctx, sess, channelID)
		return
	}
	var buttons [][]Button
	for _, r := range rows {
		label := fmt.Sprintf("%s: %s", r.Stamp, r.Name)
		buttons = append(buttons, []Button{{Label: label, Action: fmt.Sprintf("dfile:%d", r.ID)}})
	}
	buttons = append(buttons, []Button{{Label: "Back", Action: "menu:" + menuDrawings}})
	sess.State = StateNone
	sess.ClearScratch()
	e.replyButtons(ctx, channelID, fmt.Sprintf("Matches for %q:", term), buttons)
}

// finishDraw ends the dialogue and returns to the drawings menu.
func (e *Engine) finishDraw(ctx context.Context, sess *Session, channelID string) {
	sess.State = StateNone
	sess.ClearScratch()
	e.sendMenu(ctx, channelID, sess, menuDrawings)
}
