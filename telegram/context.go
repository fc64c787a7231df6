package telegram

import "sync"

// ChatState is the per-chat conversation state: the agent session to resume
// and the working directory for agent turns. It survives across turns and
// is discarded only on explicit reset.
type ChatState struct {
	CurrentDir string
	SessionID  string
}

// StateStore holds per-chat state. Safe for concurrent use.
type StateStore struct {
	mu         sync.Mutex
	states     map[int64]*ChatState
	defaultDir string
}

// NewStateStore creates a store whose chats start in defaultDir.
func NewStateStore(defaultDir string) *StateStore {
	return &StateStore{
		states:     make(map[int64]*ChatState),
		defaultDir: defaultDir,
	}
}

// Get returns a copy of the chat's state.
func (s *StateStore) Get(chatID int64) ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state(chatID)
}

// SetSessionID records the agent session id to resume next turn.
func (s *StateStore) SetSessionID(chatID int64, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(chatID).SessionID = sessionID
}

// SetCurrentDir changes the chat's working directory.
func (s *StateStore) SetCurrentDir(chatID int64, dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(chatID).CurrentDir = dir
}

// ResetSession clears the agent session, keeping the working directory.
func (s *StateStore) ResetSession(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(chatID).SessionID = ""
}

// state returns the chat's state, creating it on first use. Caller holds
// s.mu.
func (s *StateStore) state(chatID int64) *ChatState {
	st, ok := s.states[chatID]
	if !ok {
		st = &ChatState{CurrentDir: s.defaultDir}
		s.states[chatID] = st
	}
	return st
}
