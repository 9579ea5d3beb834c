package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

const uiSnapshotName = "ui-storage.json"

// Theme names a UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// FeedbackKind classifies an in-app notice.
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
	FeedbackInfo    FeedbackKind = "info"
)

// Feedback is one in-app notice. The feed is transient; it starts empty on
// every run.
type Feedback struct {
	ID        string       `json:"id"`
	Kind      FeedbackKind `json:"kind"`
	Message   string       `json:"message"`
	Read      bool         `json:"read"`
	CreatedAt time.Time    `json:"createdAt"`
}

// uiSnapshot is the persisted subset of the UI state. The feedback feed is
// deliberately absent.
type uiSnapshot struct {
	SidebarOpen bool  `json:"sidebarOpen"`
	Theme       Theme `json:"theme"`
}

// UIStore holds interface state: sidebar, theme and the in-app feedback
// feed. Theme and sidebar survive restarts; feedback does not. It satisfies
// the query layer's Notifier, so mutation outcomes land here as notices.
type UIStore struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger

	sidebarOpen bool
	theme       Theme
	feedback    []Feedback
}

// NewUIStore constructs a UI store with the defaults: sidebar open, light
// theme. A nil backend disables persistence.
func NewUIStore(backend Backend, logger *zap.Logger) *UIStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UIStore{backend: backend, logger: logger, sidebarOpen: true, theme: ThemeLight}
}

// Hydrate restores the persisted sidebar and theme preferences.
func (s *UIStore) Hydrate() error {
	if s.backend == nil {
		return nil
	}

	data, err := s.backend.Read(uiSnapshotName)
	if err != nil {
		if apperrors.FromError(err).Code == apperrors.ErrCacheMiss.Code {
			return nil
		}
		return err
	}

	snapshot := uiSnapshot{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("discarding unreadable ui snapshot", zap.Error(err))
		return s.backend.Delete(uiSnapshotName)
	}

	s.mu.Lock()
	s.sidebarOpen = snapshot.SidebarOpen
	if snapshot.Theme == ThemeLight || snapshot.Theme == ThemeDark {
		s.theme = snapshot.Theme
	}
	s.mu.Unlock()
	return nil
}

// ToggleSidebar flips the sidebar state.
func (s *UIStore) ToggleSidebar() {
	s.mu.Lock()
	s.sidebarOpen = !s.sidebarOpen
	s.mu.Unlock()
	s.persist()
}

// SetSidebarOpen sets the sidebar state.
func (s *UIStore) SetSidebarOpen(open bool) {
	s.mu.Lock()
	s.sidebarOpen = open
	s.mu.Unlock()
	s.persist()
}

// SidebarOpen reports the sidebar state.
func (s *UIStore) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarOpen
}

// SetTheme switches the colour scheme.
func (s *UIStore) SetTheme(theme Theme) {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	s.persist()
}

// Theme returns the active colour scheme.
func (s *UIStore) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// AddFeedback prepends a notice to the feed, unread.
func (s *UIStore) AddFeedback(kind FeedbackKind, message string) Feedback {
	notice := Feedback{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.feedback = append([]Feedback{notice}, s.feedback...)
	s.mu.Unlock()
	return notice
}

// MarkFeedbackRead flags one notice as read.
func (s *UIStore) MarkFeedbackRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.feedback {
		if s.feedback[i].ID == id {
			s.feedback[i].Read = true
			return
		}
	}
}

// ClearFeedback empties the feed.
func (s *UIStore) ClearFeedback() {
	s.mu.Lock()
	s.feedback = nil
	s.mu.Unlock()
}

// Feedback returns a copy of the feed, newest first.
func (s *UIStore) Feedback() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Feedback, len(s.feedback))
	copy(out, s.feedback)
	return out
}

// UnreadFeedback counts unread notices.
func (s *UIStore) UnreadFeedback() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, notice := range s.feedback {
		if !notice.Read {
			count++
		}
	}
	return count
}

// Success implements the query layer's Notifier.
func (s *UIStore) Success(message string) {
	s.AddFeedback(FeedbackSuccess, message)
}

// Error implements the query layer's Notifier.
func (s *UIStore) Error(message string) {
	s.AddFeedback(FeedbackError, message)
}

func (s *UIStore) persist() {
	if s.backend == nil {
		return
	}

	s.mu.Lock()
	snapshot := uiSnapshot{SidebarOpen: s.sidebarOpen, Theme: s.theme}
	s.mu.Unlock()

	data, err := marshalSnapshot(snapshot)
	if err != nil {
		s.logger.Warn("failed to encode ui snapshot", zap.Error(err))
		return
	}
	if err := s.backend.Write(uiSnapshotName, data); err != nil {
		s.logger.Warn("failed to persist ui snapshot", zap.Error(err))
	}
}
