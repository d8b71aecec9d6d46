package bot

import (
	"sync"
	"time"
)

// State identifies where a session is inside one of the five dialogue
// families. The empty state means the user is just browsing menus.
type State string

const (
	StateNone State = ""

	// Quantity-change family.
	StateQtyChoosingItem State = "qty_choosing_item"
	StateQtyAdjusting    State = "qty_adjusting"
	StateQtyConfirmExit  State = "qty_confirm_exit"

	// Add-item family.
	StateAddEntering State = "add_entering"

	// Edit/delete family.
	StateEditChoosingItem  State = "edit_choosing_item"
	StateEditChoosingField State = "edit_choosing_field"
	StateEditEnteringValue State = "edit_entering_value"
	StateEditDeleteConfirm State = "edit_delete_confirm"

	// Compatibility family.
	StateCompatCheckStamp  State = "compat_check_stamp"
	StateCompatAddSource   State = "compat_add_source"
	StateCompatAddTarget   State = "compat_add_target"
	StateCompatAddCategory State = "compat_add_category"
	StateCompatAddPart     State = "compat_add_part"
	StateCompatAddNotes    State = "compat_add_notes"
	StateCompatEditPick    State = "compat_edit_pick"
	StateCompatEditAction  State = "compat_edit_action"
	StateCompatEditNotes   State = "compat_edit_notes"

	// Drawings family.
	StateDrawUploadStamp State = "draw_upload_stamp"
	StateDrawUploadFile  State = "draw_upload_file"
	StateDrawViewStamp   State = "draw_view_stamp"
	StateDrawSearch      State = "draw_search"
)

// QuantityScratch is the working copy of a quantity-change dialogue. The
// stored row is untouched until the user saves; Scratch accumulates the
// button presses and clamps at zero.
type QuantityScratch struct {
	Category string
	StampID  uint
	PartID   uint
	PartName string
	Stored   int
	Scratch  int
	Return   string // menu to land on afterwards
	// PendingMenu holds the navigation target while the forced
	// save/discard confirmation is on screen.
	PendingMenu string
}

// Unsaved reports whether the scratch value has drifted from the stored one.
func (q *QuantityScratch) Unsaved() bool {
	return q.Scratch != q.Stored
}

// AddScratch is the working state of an add-item dialogue.
type AddScratch struct {
	Category string
	StampID  uint
	Return   string
}

// EditScratch is the working state of an edit/delete dialogue. Mode is
// "edit" or "delete", chosen on the first screen.
type EditScratch struct {
	Category string
	StampID  uint
	Mode     string
	PartID   uint
	PartName string
	Field    string
	Return   string
}

// CompatScratch is the working state of a compatibility dialogue.
type CompatScratch struct {
	SourceStampID uint
	SourceName    string
	TargetStampID uint
	TargetName    string
	Category      string
	PartType      string
	LinkID        uint
}

// DrawScratch is the working state of a drawings dialogue.
type DrawScratch struct {
	StampID   uint
	StampName string
}

// Session is the per-user dialogue state. Menu is the screen currently
// shown; State plus exactly one non-nil scratch identify the active
// dialogue family.
type Session struct {
	Menu     string
	State    State
	Quantity *QuantityScratch
	Add      *AddScratch
	Edit     *EditScratch
	Compat   *CompatScratch
	Draw     *DrawScratch
	LastSeen time.Time
}

// Reset returns the session to the root menu and drops all dialogue state.
func (s *Session) Reset() {
	s.Menu = menuMain
	s.State = StateNone
	s.ClearScratch()
}

// ClearScratch drops every family's working state. Called on every family
// entry and exit so at most one scratch is ever live.
func (s *Session) ClearScratch() {
	s.Quantity = nil
	s.Add = nil
	s.Edit = nil
	s.Compat = nil
	s.Draw = nil
}

// SessionManager tracks dialogue sessions keyed by channel and user.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// sessionKey builds the map key for a session.
func sessionKey(channelID, userID string) string {
	return channelID + ":" + userID
}

// Get returns the session for a channel/user pair, creating a fresh one at
// the root menu on first contact.
func (sm *SessionManager) Get(channelID, userID string) *Session {
	key := sessionKey(channelID, userID)
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[key]
	if !ok {
		s = &Session{Menu: menuMain}
		sm.sessions[key] = s
	}
	s.LastSeen = time.Now()
	return s
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Prune drops sessions idle longer than maxIdle and returns how many were
// removed.
func (sm *SessionManager) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	sm.mu.Lock()
	defer sm.mu.Unlock()
	removed := 0
	for key, s := range sm.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(sm.sessions, key)
			removed++
		}
	}
	return removed
}
