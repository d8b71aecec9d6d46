package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/shopfloor/toolcrib/internal/bot"
)

// --- Mock Slack client ---

type mockSlackClient struct {
	mu        sync.Mutex
	authResp  *slackapi.AuthTestResponse
	authErr   error
	posted    []postedMessage
	postErr   error
	uploads   []slackapi.FileUploadParameters
	uploadErr error
	files     map[string]*slackapi.File
	users     map[string]*slackapi.User
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func newMockSlackClient() *mockSlackClient {
	return &mockSlackClient{
		authResp: &slackapi.AuthTestResponse{UserID: "U_BOT_123"},
		files:    make(map[string]*slackapi.File),
		users:    make(map[string]*slackapi.User),
	}
}

func (m *mockSlackClient) AuthTest() (*slackapi.AuthTestResponse, error) {
	return m.authResp, m.authErr
}

func (m *mockSlackClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return "", "", m.postErr
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func (m *mockSlackClient) UploadFile(params slackapi.FileUploadParameters) (*slackapi.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploads = append(m.uploads, params)
	return &slackapi.File{ID: "F123", Name: params.Filename}, nil
}

func (m *mockSlackClient) GetFileInfo(fileID string, count, page int) (*slackapi.File, []slackapi.Comment, *slackapi.Paging, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[fileID]; ok {
		return f, nil, nil, nil
	}
	return nil, nil, nil, fmt.Errorf("file not found: %s", fileID)
}

func (m *mockSlackClient) GetUserInfo(userID string) (*slackapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %s", userID)
}

func (m *mockSlackClient) postedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posted)
}

func (m *mockSlackClient) lastPosted() postedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posted[len(m.posted)-1]
}

func (m *mockSlackClient) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

// --- Mock Socket Mode client ---

type mockSocketClient struct {
	events chan socketmode.Event
	acked  []socketmode.Request
	mu     sync.Mutex
	done   chan struct{}
}

func newMockSocketClient() *mockSocketClient {
	return &mockSocketClient{
		events: make(chan socketmode.Event, 100),
		done:   make(chan struct{}),
	}
}

func (m *mockSocketClient) Run() error {
	// Block until done is closed (don't consume from events).
	<-m.done
	return nil
}

func (m *mockSocketClient) EventsChan() chan socketmode.Event {
	return m.events
}

func (m *mockSocketClient) Ack(req socketmode.Request, payload ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, req)
}

func (m *mockSocketClient) ackedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.acked)
}

// --- Helpers ---

func newTestAdapter(t *testing.T) (*Adapter, *mockSlackClient, *mockSocketClient, <-chan bot.InboundMessage) {
	t.Helper()
	client := newMockSlackClient()
	socket := newMockSocketClient()
	a, err := New(AdapterOpts{Client: client, Socket: socket, ChannelID: "C_DEFAULT"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	inbound, err := a.Listen(context.Background())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { close(socket.done) })
	return a, client, socket, inbound
}

func recvInbound(t *testing.T, ch <-chan bot.InboundMessage) bot.InboundMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound message")
		return bot.InboundMessage{}
	}
}

// --- Tests ---

func TestNew_Validation(t *testing.T) {
	if _, err := New(AdapterOpts{AppToken: "xapp-1"}); err == nil {
		t.Fatal("expected error without bot token")
	}
	if _, err := New(AdapterOpts{BotToken: "xoxb-1"}); err == nil {
		t.Fatal("expected error without app token")
	}
}

func TestConnect_SetsBotUserID(t *testing.T) {
	a, _, _, _ := newTestAdapter(t)
	if a.BotUserID() != "U_BOT_123" {
		t.Errorf("bot user id = %q", a.BotUserID())
	}
}

func TestConnect_AuthFailure(t *testing.T) {
	client := newMockSlackClient()
	client.authErr = fmt.Errorf("invalid_auth")
	a, _ := New(AdapterOpts{Client: client, Socket: newMockSocketClient()})
	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("expected auth error")
	}
}

func TestSend_TextToDefaultChannel(t *testing.T) {
	a, client, _, _ := newTestAdapter(t)
	if err := a.Send(context.Background(), bot.OutboundMessage{Text: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if client.postedCount() != 1 {
		t.Fatalf("posted %d messages, want 1", client.postedCount())
	}
	if got := client.lastPosted(); got.channelID != "C_DEFAULT" {
		t.Errorf("channel = %q", got.channelID)
	}
}

func TestSend_ButtonsAddBlocksOption(t *testing.T) {
	a, client, _, _ := newTestAdapter(t)
	err := a.Send(context.Background(), bot.OutboundMessage{
		ChannelID: "C1",
		Text:      "pick one",
		Buttons:   [][]bot.Button{{{Label: "Inventory", Action: "menu:inventory"}}},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	got := client.lastPosted()
	// Blocks plus the plain-text fallback.
	if len(got.options) != 2 {
		t.Errorf("got %d msg options, want 2", len(got.options))
	}
}

func TestSend_FileUsesUpload(t *testing.T) {
	a, client, _, _ := newTestAdapter(t)
	err := a.Send(context.Background(), bot.OutboundMessage{
		ChannelID: "C1",
		Text:      "drawing",
		File:      &bot.FilePayload{Name: "die7.pdf", Data: []byte("pdf")},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if client.uploadCount() != 1 {
		t.Fatalf("uploads = %d, want 1", client.uploadCount())
	}
	if client.postedCount() != 0 {
		t.Errorf("file sends should not also post a message")
	}
	up := client.uploads[0]
	if up.Filename != "die7.pdf" || up.InitialComment != "drawing" {
		t.Errorf("upload params = %+v", up)
	}
	if len(up.Channels) != 1 || up.Channels[0] != "C1" {
		t.Errorf("upload channels = %v", up.Channels)
	}
}

func TestMessageEvent_ForwardedInbound(t *testing.T) {
	_, client, socket, inbound := newTestAdapter(t)
	client.users["U1"] = &slackapi.User{
		Profile: slackapi.UserProfile{DisplayName: "vova"},
	}

	socket.events <- socketmode.Event{
		Type:    socketmode.EventTypeEventsAPI,
		Request: &socketmode.Request{EnvelopeID: "env-1"},
		Data: slackevents.EventsAPIEvent{
			Type: slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{
				Data: &slackevents.MessageEvent{
					Channel:   "C1",
					User:      "U1",
					Text:      "Die-7, d40, 12",
					TimeStamp: "1234567890.000100",
				},
			},
		},
	}

	msg := recvInbound(t, inbound)
	if msg.Platform != "slack" || msg.ChannelID != "C1" || msg.UserID != "U1" {
		t.Errorf("inbound = %+v", msg)
	}
	if msg.UserName != "vova" {
		t.Errorf("user name = %q", msg.UserName)
	}
	if socket.ackedCount() != 1 {
		t.Errorf("acked %d events, want 1", socket.ackedCount())
	}
}

func TestMessageEvent_SelfAndBotsFiltered(t *testing.T) {
	_, _, socket, inbound := newTestAdapter(t)

	for _, ev := range []*slackevents.MessageEvent{
		{Channel: "C1", User: "U_BOT_123", Text: "self"},
		{Channel: "C1", User: "U2", BotID: "B1", Text: "bot"},
		{Channel: "C1", User: "U3", SubType: "message_changed", Text: "edit"},
		{Channel: "C1", User: "U4", SubType: "file_share", Text: "caption"},
	} {
		socket.events <- socketmode.Event{
			Type: socketmode.EventTypeEventsAPI,
			Data: slackevents.EventsAPIEvent{
				Type:       slackevents.CallbackEvent,
				InnerEvent: slackevents.EventsAPIInnerEvent{Data: ev},
			},
		}
	}

	select {
	case msg := <-inbound:
		t.Fatalf("unexpected inbound message: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFileShared_AttachmentForwarded(t *testing.T) {
	_, client, socket, inbound := newTestAdapter(t)
	client.files["F42"] = &slackapi.File{
		ID:                 "F42",
		Name:               "die7.pdf",
		URLPrivateDownload: "https://files.slack/die7",
		Size:               9,
		InitialComment:     slackapi.Comment{Comment: "main die drawing"},
	}

	socket.events <- socketmode.Event{
		Type: socketmode.EventTypeEventsAPI,
		Data: slackevents.EventsAPIEvent{
			Type: slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{
				Data: &slackevents.FileSharedEvent{
					ChannelID:      "C1",
					FileID:         "F42",
					UserID:         "U1",
					EventTimestamp: "1234567890.000200",
				},
			},
		},
	}

	msg := recvInbound(t, inbound)
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %+v", msg.Attachments)
	}
	att := msg.Attachments[0]
	if att.Filename != "die7.pdf" || att.URL != "https://files.slack/die7" || att.Size != 9 {
		t.Errorf("attachment = %+v", att)
	}
	if msg.Text != "main die drawing" {
		t.Errorf("text = %q, want the upload comment", msg.Text)
	}
	if msg.ChannelID != "C1" || msg.UserID != "U1" {
		t.Errorf("inbound = %+v", msg)
	}
}

func TestFileShared_SelfAndLookupFailureDropped(t *testing.T) {
	_, _, socket, inbound := newTestAdapter(t)

	// Own upload, and a file id the API does not know.
	for _, ev := range []*slackevents.FileSharedEvent{
		{ChannelID: "C1", FileID: "F42", UserID: "U_BOT_123"},
		{ChannelID: "C1", FileID: "F_MISSING", UserID: "U1"},
	} {
		socket.events <- socketmode.Event{
			Type: socketmode.EventTypeEventsAPI,
			Data: slackevents.EventsAPIEvent{
				Type:       slackevents.CallbackEvent,
				InnerEvent: slackevents.EventsAPIInnerEvent{Data: ev},
			},
		}
	}

	select {
	case msg := <-inbound:
		t.Fatalf("unexpected inbound message: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInteraction_ActionForwarded(t *testing.T) {
	_, _, socket, inbound := newTestAdapter(t)

	socket.events <- socketmode.Event{
		Type:    socketmode.EventTypeInteractive,
		Request: &socketmode.Request{EnvelopeID: "env-2"},
		Data: slackapi.InteractionCallback{
			Type: slackapi.InteractionTypeBlockActions,
			User: slackapi.User{ID: "U1", Name: "vova"},
			Channel: slackapi.Channel{
				GroupConversation: slackapi.GroupConversation{
					Conversation: slackapi.Conversation{ID: "C1"},
				},
			},
			ActionCallback: slackapi.ActionCallbacks{
				BlockActions: []*slackapi.BlockAction{
					{ActionID: "btn_0_0", Value: "changequantitypunches11_3"},
				},
			},
		},
	}

	msg := recvInbound(t, inbound)
	if msg.Action != "changequantitypunches11_3" {
		t.Errorf("action = %q", msg.Action)
	}
	if msg.ChannelID != "C1" || msg.UserID != "U1" {
		t.Errorf("inbound = %+v", msg)
	}
	if socket.ackedCount() != 1 {
		t.Errorf("acked %d events, want 1", socket.ackedCount())
	}
}

func TestDownload_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("pdf-bytes"))
	}))
	defer srv.Close()

	client := newMockSlackClient()
	socket := newMockSocketClient()
	a, err := New(AdapterOpts{Client: client, Socket: socket, BotToken: "xoxb-secret"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	data, err := a.Download(context.Background(), bot.Attachment{URL: srv.URL, Filename: "die7.pdf"})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("data = %q", data)
	}
	if gotAuth != "Bearer xoxb-secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestClose_Idempotent(t *testing.T) {
	a, _, _, inbound := newTestAdapter(t)
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, ok := <-inbound; ok {
		t.Error("inbound channel should be closed")
	}
}

func TestParseSlackTimestamp(t *testing.T) {
	ts := parseSlackTimestamp("1234567890.123456")
	if ts.Unix() != 1234567890 {
		t.Errorf("unix = %d", ts.Unix())
	}
	if !parseSlackTimestamp("garbage").IsZero() {
		t.Error("garbage timestamp should parse as zero")
	}
}
