package session

import (
	"sync"
	"time"

	"moodboard-ai/internal/controller"
	"moodboard-ai/internal/preset"
)

// Session is one chat's moodboard state. Each chat owns its controller; no
// state is shared between chats.
type Session struct {
	ChatID     int64
	Username   string
	Controller *controller.Controller
	Selection  preset.Selection
	// MenuMessageID is the message carrying the inline keyboard, 0 if none.
	MenuMessageID int
	LastActivity  time.Time
}

type Options struct {
	NewController func() *controller.Controller
	// IdleTTL drops sessions untouched for this long on Prune.
	IdleTTL time.Duration
}

type Store struct {
	mu            sync.Mutex
	sessions      map[int64]*Session
	newController func() *controller.Controller
	idleTTL       time.Duration
}

func NewStore(opts Options) *Store {
	idleTTL := opts.IdleTTL
	if idleTTL <= 0 {
		idleTTL = 6 * time.Hour
	}

	return &Store{
		sessions:      make(map[int64]*Session),
		newController: opts.NewController,
		idleTTL:       idleTTL,
	}
}

// Get returns a copy of the chat's session, creating it on first use. The
// Controller pointer is shared and safe for concurrent use.
func (s *Store) Get(chatID int64, username string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(chatID, username)
	sess.LastActivity = time.Now()
	return *sess
}

func (s *Store) Update(chatID int64, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(chatID, "")
	fn(sess)
	sess.LastActivity = time.Now()
	return *sess
}

// Clear resets the chat's controller and preset selection.
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	sess, ok := s.sessions[chatID]
	if ok {
		sess.Selection = preset.Defaults()
		sess.MenuMessageID = 0
		sess.LastActivity = time.Now()
	}
	s.mu.Unlock()

	if ok {
		sess.Controller.Reset()
	}
}

// Prune removes idle sessions and reports how many were dropped.
func (s *Store) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > s.idleTTL {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(chatID int64, username string) *Session {
	if sess, ok := s.sessions[chatID]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		return sess
	}

	sess := &Session{
		ChatID:       chatID,
		Username:     username,
		Controller:   s.newController(),
		Selection:    preset.Defaults(),
		LastActivity: time.Now(),
	}
	s.sessions[chatID] = sess
	return sess
}
