// Package discord implements the bot Adapter for Discord using the Gateway WebSocket.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopfloor/toolcrib/internal/bot"
)

const (
	// maxRetries is the max number of retries for rate-limited API calls.
	maxRetries = 3
	// baseBackoff is the initial backoff duration for rate-limit retries.
	baseBackoff = 2 * time.Second
	// maxBackoff caps the exponential backoff.
	maxBackoff = 2 * time.Minute
	// maxRowsPerMessage is Discord's component row limit per message.
	maxRowsPerMessage = 5
	// maxButtonsPerRow is Discord's button limit per component row.
	maxButtonsPerRow = 5
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	Open() error
	Close() error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	AddHandler(handler interface{}) func()
}

// realSession wraps *discordgo.Session to implement the session interface.
type realSession struct {
	s *discordgo.Session
}

func (r *realSession) Open() error  { return r.s.Open() }
func (r *realSession) Close() error { return r.s.Close() }
func (r *realSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return r.s.ChannelMessageSendComplex(channelID, data, options...)
}
func (r *realSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	return r.s.InteractionRespond(interaction, resp, options...)
}
func (r *realSession) AddHandler(handler interface{}) func() {
	return r.s.AddHandler(handler)
}

// Adapter implements bot.Adapter for Discord via the Gateway WebSocket.
// Buttons are message components; presses arrive as interactions and are
// acknowledged before the action id is forwarded inbound.
type Adapter struct {
	sess           session
	botToken       string
	channelID      string // default channel for messages
	botUserID      string
	mu             sync.Mutex
	connected      bool
	closed         bool
	inbound        chan bot.InboundMessage
	cancelFunc     context.CancelFunc
	removeHandlers []func()
	httpClient     *http.Client
	baseBackoff    time.Duration
	maxBackoff     time.Duration
}

// AdapterOpts holds parameters for creating a Discord Adapter.
type AdapterOpts struct {
	BotToken  string // Discord bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock session instead of real Discord API.
	Session session
	// For testing: inject an HTTP client for attachment downloads.
	HTTPClient *http.Client
}

// New creates a Discord Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	a := &Adapter{
		botToken:    opts.BotToken,
		channelID:   opts.ChannelID,
		inbound:     make(chan bot.InboundMessage, 100),
		httpClient:  httpClient,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
	}

	if opts.Session != nil {
		a.sess = opts.Session
	}

	return a, nil
}

// Connect establishes the Discord Gateway WebSocket connection.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("discord: adapter already closed")
	}
	if a.connected {
		return nil
	}

	// Create real session if not injected (production path).
	if a.sess == nil {
		dg, err := discordgo.New("Bot " + a.botToken)
		if err != nil {
			return fmt.Errorf("discord: create session: %w", err)
		}
		dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
		a.sess = &realSession{s: dg}
	}

	// Register Ready handler to capture bot user ID on connect/reconnect.
	a.sess.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.mu.Lock()
		a.botUserID = r.User.ID
		a.mu.Unlock()
		log.Printf("discord: connected as %s (ID: %s)", r.User.Username, r.User.ID)
	})

	// discordgo reconnects the gateway on its own; log it for observability.
	a.sess.AddHandler(func(_ *discordgo.Session, d *discordgo.Disconnect) {
		log.Printf("discord: gateway disconnected, discordgo will auto-reconnect")
	})
	a.sess.AddHandler(func(_ *discordgo.Session, r *discordgo.Resumed) {
		log.Printf("discord: gateway session resumed")
	})

	if err := a.sess.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}

	a.connected = true
	return nil
}

// Listen returns a channel of inbound messages and button presses from
// Discord. Must be called after Connect.
func (a *Adapter) Listen(ctx context.Context) (<-chan bot.InboundMessage, error) {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return nil, fmt.Errorf("discord: not connected")
	}
	a.mu.Unlock()

	_, cancel := context.WithCancel(ctx)

	removeMsg := a.sess.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		a.handleMessage(m)
	})
	removeInteraction := a.sess.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		a.handleInteraction(i)
	})

	a.mu.Lock()
	a.cancelFunc = cancel
	a.removeHandlers = append(a.removeHandlers, removeMsg, removeInteraction)
	a.mu.Unlock()

	return a.inbound, nil
}

// Send delivers a message to Discord, rendering button rows as message
// components. Discord allows five component rows per message, so longer
// button lists are split across continuation messages.
func (a *Adapter) Send(ctx context.Context, msg bot.OutboundMessage) error {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return fmt.Errorf("discord: not connected")
	}
	a.mu.Unlock()

	channelID := msg.ChannelID
	if channelID == "" {
		channelID = a.channelID
	}
	if channelID == "" {
		return fmt.Errorf("discord: no channel specified")
	}

	for i, data := range buildMessageSends(msg) {
		if i > 0 {
			data.Content = "" // text goes on the first message only
		}
		err := a.retryOnRateLimit(ctx, func() error {
			_, sendErr := a.sess.ChannelMessageSendComplex(channelID, data)
			return sendErr
		})
		if err != nil {
			return fmt.Errorf("discord: send message: %w", err)
		}
	}
	return nil
}

// Download fetches the bytes of an inbound attachment from Discord's CDN.
func (a *Adapter) Download(ctx context.Context, att bot.Attachment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("discord: build download request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord: download %s: %w", att.Filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord: download %s: status %d", att.Filename, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discord: read download %s: %w", att.Filename, err)
	}
	return data, nil
}

// Close gracefully shuts down the adapter connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	a.connected = false
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	for _, remove := range a.removeHandlers {
		remove()
	}
	close(a.inbound)
	if a.sess != nil {
		return a.sess.Close()
	}
	return nil
}

// BotUserID returns the bot's Discord user ID (available after Connect).
func (a *Adapter) BotUserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.botUserID
}

// SetBotUserID sets the bot user ID (used for self-message filtering).
func (a *Adapter) SetBotUserID(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.botUserID = id
}

// handleMessage converts a Discord message event to an InboundMessage.
func (a *Adapter) handleMessage(m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	a.mu.Lock()
	botID := a.botUserID
	a.mu.Unlock()

	if m.Author.ID == botID || m.Author.Bot {
		return
	}

	var attachments []bot.Attachment
	for _, att := range m.Attachments {
		attachments = append(attachments, bot.Attachment{
			Filename: att.Filename,
			URL:      att.URL,
			Size:     int64(att.Size),
		})
	}

	ts, _ := discordgo.SnowflakeTimestamp(m.ID)

	a.inbound <- bot.InboundMessage{
		Platform:    "discord",
		ChannelID:   m.ChannelID,
		UserID:      m.Author.ID,
		UserName:    m.Author.Username,
		Text:        m.Content,
		Attachments: attachments,
		Timestamp:   ts,
	}
}

// handleInteraction converts a button press to an InboundMessage carrying
// the button's action id. The interaction is acknowledged immediately so
// Discord does not show a failure to the user.
func (a *Adapter) handleInteraction(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	if err := a.sess.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("discord: ack interaction: %v", err)
	}

	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user == nil {
		return
	}

	a.inbound <- bot.InboundMessage{
		Platform:  "discord",
		ChannelID: i.ChannelID,
		UserID:    user.ID,
		UserName:  user.Username,
		Action:    i.MessageComponentData().CustomID,
		Timestamp: time.Now(),
	}
}

// buildMessageSends translates an OutboundMessage into one or more Discord
// sends, splitting component rows at the platform's five-row limit.
func buildMessageSends(msg bot.OutboundMessage) []*discordgo.MessageSend {
	rows := buildComponentRows(msg.Buttons)

	first := &discordgo.MessageSend{Content: msg.Text}
	if msg.File != nil {
		first.Files = []*discordgo.File{{
			Name:   msg.File.Name,
			Reader: bytes.NewReader(msg.File.Data),
		}}
	}

	sends := []*discordgo.MessageSend{first}
	for len(rows) > 0 {
		n := len(rows)
		if n > maxRowsPerMessage {
			n = maxRowsPerMessage
		}
		target := sends[len(sends)-1]
		if len(target.Components) > 0 {
			target = &discordgo.MessageSend{}
			sends = append(sends, target)
		}
		target.Components = rows[:n]
		rows = rows[n:]
	}
	return sends
}

// buildComponentRows renders button rows as Discord action rows, splitting
// rows that exceed the per-row button limit.
func buildComponentRows(rows [][]bot.Button) []discordgo.MessageComponent {
	var out []discordgo.MessageComponent
	for _, row := range rows {
		for len(row) > 0 {
			n := len(row)
			if n > maxButtonsPerRow {
				n = maxButtonsPerRow
			}
			var buttons []discordgo.MessageComponent
			for _, b := range row[:n] {
				buttons = append(buttons, discordgo.Button{
					Label:    b.Label,
					Style:    discordgo.SecondaryButton,
					CustomID: b.Action,
				})
			}
			out = append(out, discordgo.ActionsRow{Components: buttons})
			row = row[n:]
		}
	}
	return out
}

// retryOnRateLimit calls fn and retries with exponential backoff on Discord
// rate limit errors. It respects context cancellation.
func (a *Adapter) retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		restErr, ok := err.(*discordgo.RESTError)
		if !ok || restErr.Response == nil || restErr.Response.StatusCode != 429 {
			return err // not a rate limit error
		}

		if attempt == maxRetries {
			return err
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * a.baseBackoff
		if wait > a.maxBackoff {
			wait = a.maxBackoff
		}

		log.Printf("discord: rate limited (attempt %d/%d), retrying in %v",
			attempt+1, maxRetries, wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}
