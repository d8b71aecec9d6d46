package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/compat"
	"github.com/shopfloor/toolcrib/internal/config"
	"github.com/shopfloor/toolcrib/internal/drawings"
)

// errReply is the uniform answer for storage failures. The real error is
// logged; the user just gets a way to retry.
const errReply = "Something went wrong, please try again later."

// fallbackReply answers free text the active state has no use for.
const fallbackReply = "I didn't understand that. Please use the buttons."

// Engine walks users through the dialogue families. It classifies every
// inbound message or button press against the session's menu and state,
// runs the matching handler, and replies through the adapter. Handler
// errors never tear a session down; they are logged and answered with a
// retry message.
type Engine struct {
	catalog   *catalog.Store
	compat    *compat.Store
	drawings  *drawings.Store
	menus     *MenuRegistry
	sessions  *SessionManager
	adapter   Adapter
	stamps    []config.StampConfig
	offset    time.Duration
	botUserID string
	out       io.Writer
}

// EngineOpts holds parameters for creating an Engine.
type EngineOpts struct {
	Catalog     *catalog.Store
	Compat      *compat.Store
	Drawings    *drawings.Store
	Menus       *MenuRegistry
	Sessions    *SessionManager
	Adapter     Adapter
	Stamps      []config.StampConfig
	ClockOffset time.Duration // display shift for report timestamps
	BotUserID   string        // bot's user ID for self-message filtering
	Out         io.Writer     // defaults to os.Stdout
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("bot: engine: catalog store is required")
	}
	if opts.Compat == nil {
		return nil, fmt.Errorf("bot: engine: compat store is required")
	}
	if opts.Drawings == nil {
		return nil, fmt.Errorf("bot: engine: drawings store is required")
	}
	if opts.Menus == nil {
		return nil, fmt.Errorf("bot: engine: menu registry is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("bot: engine: session manager is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: engine: adapter is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Engine{
		catalog:   opts.Catalog,
		compat:    opts.Compat,
		drawings:  opts.Drawings,
		menus:     opts.Menus,
		sessions:  opts.Sessions,
		adapter:   opts.Adapter,
		stamps:    opts.Stamps,
		offset:    opts.ClockOffset,
		botUserID: opts.BotUserID,
		out:       out,
	}, nil
}

// Handle classifies and routes a single inbound message. Routing paths:
//  1. Bot self-message → ignore
//  2. Reset command ("/start") → root menu
//  3. Button press → action handler for the session's state
//  4. Free text or attachment → the active state's text handler
//  5. No active state → fallback plus the current menu
func (e *Engine) Handle(ctx context.Context, msg InboundMessage) {
	if e.isSelfMessage(msg) {
		return
	}

	sess := e.sessions.Get(msg.ChannelID, msg.UserID)

	if msg.Action != "" {
		fmt.Fprintf(e.out, "bot: engine: recv action [ch=%s user=%s] %q\n",
			msg.ChannelID, msg.UserName, msg.Action)
		e.handleAction(ctx, sess, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	fmt.Fprintf(e.out, "bot: engine: recv text [ch=%s user=%s state=%s] %q\n",
		msg.ChannelID, msg.UserName, sess.State, truncate(text, 80))

	if isResetCommand(text) {
		sess.Reset()
		e.sendMenu(ctx, msg.ChannelID, sess, menuMain)
		return
	}

	e.handleText(ctx, sess, msg, text)
}

// handleAction routes a button press.
func (e *Engine) handleAction(ctx context.Context, sess *Session, msg InboundMessage) {
	action := msg.Action

	switch {
	case strings.HasPrefix(action, "menu:"):
		e.navigate(ctx, sess, msg.ChannelID, strings.TrimPrefix(action, "menu:"))
	case strings.HasPrefix(action, "stub:"):
		e.reply(ctx, msg.ChannelID, "That section isn't available here yet. Ask the toolroom office.")
		e.sendMenu(ctx, msg.ChannelID, sess, sess.Menu)
	case strings.HasPrefix(action, "qty:"):
		e.handleQuantityAction(ctx, sess, msg.ChannelID, strings.TrimPrefix(action, "qty:"))
	case strings.HasPrefix(action, "confirm:"):
		e.handleConfirmAction(ctx, sess, msg.ChannelID, strings.TrimPrefix(action, "confirm:"))
	case strings.HasPrefix(action, "ed:"):
		e.handleEditAction(ctx, sess, msg.ChannelID, strings.TrimPrefix(action, "ed:"))
	case strings.HasPrefix(action, "compat:"), strings.HasPrefix(action, "cstamp:"),
		strings.HasPrefix(action, "ccat:"), strings.HasPrefix(action, "cpart:"),
		strings.HasPrefix(action, "clink:"):
		e.handleCompatAction(ctx, sess, msg.ChannelID, action)
	case strings.HasPrefix(action, "drw:"), strings.HasPrefix(action, "dstamp:"),
		strings.HasPrefix(action, "dfile:"):
		e.handleDrawAction(ctx, sess, msg.ChannelID, action)
	default:
		if cmd, ok := ParseAction(action); ok {
			e.startCommand(ctx, sess, msg.ChannelID, cmd)
			return
		}
		fmt.Fprintf(e.out, "bot: engine: unknown action %q, ignoring\n", action)
		e.reply(ctx, msg.ChannelID, fallbackReply)
		e.sendMenu(ctx, msg.ChannelID, sess, sess.Menu)
	}
}

// handleText routes free text (or an attachment) by the session's state.
func (e *Engine) handleText(ctx context.Context, sess *Session, msg InboundMessage, text string) {
	switch sess.State {
	case StateQtyChoosingItem:
		e.quantityChooseItem(ctx, sess, msg.ChannelID, text)
	case StateAddEntering:
		e.addItemEntry(ctx, sess, msg.ChannelID, text)
	case StateEditChoosingItem:
		e.editChooseItem(ctx, sess, msg.ChannelID, text)
	case StateEditEnteringValue:
		e.editEnterValue(ctx, sess, msg.ChannelID, text)
	case StateCompatAddNotes:
		e.compatSaveWithNotes(ctx, sess, msg.ChannelID, text)
	case StateCompatEditNotes:
		e.compatUpdateNotes(ctx, sess, msg.ChannelID, text)
	case StateDrawUploadFile:
		e.drawReceiveFile(ctx, sess, msg)
	case StateDrawSearch:
		e.drawSearch(ctx, sess, msg.ChannelID, text)
	default:
		e.reply(ctx, msg.ChannelID, fallbackReply)
		e.sendMenu(ctx, msg.ChannelID, sess, sess.Menu)
	}
}

// startCommand begins one of the four inventory operations for a decoded
// action id.
func (e *Engine) startCommand(ctx context.Context, sess *Session, channelID string, cmd Command) {
	d, ok := catalog.ByKey(cmd.Category)
	if !ok {
		e.reply(ctx, channelID, "Unknown category. Please use the buttons.")
		return
	}
	name := e.stampName(cmd.StampRef)
	if name == "" {
		e.reply(ctx, channelID, "Unknown stamp. Please use the buttons.")
		return
	}
	stamp, err := e.catalog.StampByName(name)
	if err != nil {
		e.fail(ctx, channelID, "resolve stamp", err)
		return
	}
	returnMenu := CategoryMenuName(cmd.Category, cmd.StampRef)

	switch cmd.Op {
	case OpShowBalance:
		e.showBalance(ctx, sess, channelID, d, stamp.ID, name, returnMenu)
	case OpAddNewItem:
		e.startAddItem(ctx, sess, channelID, d, stamp.ID, returnMenu)
	case OpChangeQuantity:
		e.startQuantityChange(ctx, sess, channelID, d, stamp.ID, returnMenu)
	case OpEditDelete:
		e.startEditDelete(ctx, sess, channelID, d, stamp.ID, returnMenu)
	}
}

// showBalance renders and sends the category balance, staying in the menu.
func (e *Engine) showBalance(ctx context.Context, sess *Session, channelID string, d catalog.Descriptor, stampID uint, stampName, returnMenu string) {
	parts, err := e.catalog.ListByStamp(d, stampID)
	if err != nil {
		e.fail(ctx, channelID, "list balance", err)
		return
	}
	e.reply(ctx, channelID, FormatBalance(d, stampName, parts, e.offset))
	e.sendMenu(ctx, channelID, sess, returnMenu)
}

// navigate moves to a menu, intercepting the move when a quantity dialogue
// holds unsaved changes.
func (e *Engine) navigate(ctx context.Context, sess *Session, channelID, target string) {
	if sess.State == StateQtyAdjusting && sess.Quantity != nil && sess.Quantity.Unsaved() {
		sess.Quantity.PendingMenu = target
		sess.State = StateQtyConfirmExit
		e.sendConfirmExit(ctx, channelID, sess)
		return
	}
	sess.State = StateNone
	sess.ClearScratch()
	e.sendMenu(ctx, channelID, sess, target)
}

// sendMenu shows a menu and records it as the session's current screen.
func (e *Engine) sendMenu(ctx context.Context, channelID string, sess *Session, name string) {
	menu, ok := e.menus.Get(name)
	if !ok {
		log.Printf("bot: engine: unknown menu %q, falling back to root", name)
		menu, _ = e.menus.Get(menuMain)
		name = menuMain
	}
	sess.Menu = name
	e.replyButtons(ctx, channelID, menu.Title, menu.Rows)
}

// reply sends plain text.
func (e *Engine) reply(ctx context.Context, channelID, text string) {
	if err := e.adapter.Send(ctx, OutboundMessage{ChannelID: channelID, Text: text}); err != nil {
		log.Printf("bot: engine: send reply: %v", err)
	}
}

// replyButtons sends text with button rows.
func (e *Engine) replyButtons(ctx context.Context, channelID, text string, rows [][]Button) {
	if err := e.adapter.Send(ctx, OutboundMessage{ChannelID: channelID, Text: text, Buttons: rows}); err != nil {
		log.Printf("bot: engine: send buttons: %v", err)
	}
}

// fail logs a storage error and sends the uniform retry reply.
func (e *Engine) fail(ctx context.Context, channelID, what string, err error) {
	log.Printf("bot: engine: %s: %v", what, err)
	e.reply(ctx, channelID, errReply)
}

// stampName resolves a stamp ref from the configured list to its display
// name, or "" when the ref is unknown.
func (e *Engine) stampName(ref string) string {
	for _, s := range e.stamps {
		if s.Ref == ref {
			return s.Name
		}
	}
	return ""
}

// stampButtons builds one button per known stamp, with the stamp's DB id
// embedded in the action.
func (e *Engine) stampButtons(actionPrefix string, excludeID uint) ([][]Button, error) {
	stamps, err := e.catalog.ListStamps()
	if err != nil {
		return nil, err
	}
	var rows [][]Button
	for _, s := range stamps {
		if s.ID == excludeID {
			continue
		}
		rows = append(rows, []Button{{Label: s.Name, Action: fmt.Sprintf("%s%d", actionPrefix, s.ID)}})
	}
	return rows, nil
}

// isSelfMessage returns true if the message is from the bot itself.
func (e *Engine) isSelfMessage(msg InboundMessage) bool {
	return e.botUserID != "" && msg.UserID == e.botUserID
}

// isResetCommand matches the platform-appropriate reset commands.
func isResetCommand(text string) bool {
	switch strings.ToLower(text) {
	case "/start", "!start", "start":
		return true
	}
	return false
}

// truncate returns s truncated to maxLen with "..." appended if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// parseID parses the numeric tail of an action like "cstamp:7".
func parseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
