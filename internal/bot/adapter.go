// Package bot implements the conversational inventory bot: platform
// adapters feed it inbound messages and button presses, and a dialogue
// engine walks users through balances, quantity changes, item entry,
// compatibility links, and drawings.
package bot

import (
	"context"
	"time"
)

// Adapter is the interface that platform-specific implementations must
// satisfy. Each adapter handles connection management, message and button
// delivery, and attachment downloads for a single chat platform.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound messages from the platform.
	// The channel is closed when the context is cancelled or the adapter
	// is closed. Listen must only be called after Connect.
	Listen(ctx context.Context) (<-chan InboundMessage, error)

	// Send delivers an outbound message, including any button rows or
	// file attachment, to the platform.
	Send(ctx context.Context, msg OutboundMessage) error

	// Download fetches the bytes of an inbound attachment.
	Download(ctx context.Context, att Attachment) ([]byte, error)

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// InboundMessage represents a message or button press received from the
// chat platform. Exactly one of Text and Action is meaningful: button
// presses carry the button's action id in Action, typed messages carry
// Text.
type InboundMessage struct {
	Platform    string       // e.g. "slack", "discord"
	ChannelID   string       // platform-specific channel identifier
	UserID      string       // platform-specific user identifier
	UserName    string       // human-readable username
	Text        string       // raw message text
	Action      string       // button action id, empty for plain messages
	Attachments []Attachment // uploaded files, if any
	Timestamp   time.Time    // when the message was sent
}

// Attachment describes an uploaded file on an inbound message. The bytes
// are fetched on demand through Adapter.Download.
type Attachment struct {
	Filename string
	URL      string // platform download URL
	Size     int64
}

// OutboundMessage represents a message to be sent to the chat platform.
type OutboundMessage struct {
	ChannelID string     // target channel
	Text      string     // message text (platform-native formatting)
	Buttons   [][]Button // button rows rendered under the text
	File      *FilePayload
}

// Button is a single pressable button. Action round-trips back on the
// resulting InboundMessage.
type Button struct {
	Label  string
	Action string
}

// FilePayload attaches a file to an outbound message, used for drawing
// downloads.
type FilePayload struct {
	Name string
	Data []byte
}

// BotUserIDer is an optional interface that adapters can implement to
// expose the bot's own user ID. This enables self-message filtering.
type BotUserIDer interface {
	BotUserID() string
}
