package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Session is the persisted application context: the bearer token plus the
// display preferences the operator tools keep alongside it. Theme and
// language are opaque strings here, consumers interpret them.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Theme    string `json:"theme,omitempty"`
	Language string `json:"language,omitempty"`
}

// SessionStore keeps the session in a JSON file and caches it in memory.
// All mutation goes through Save/Clear so there is a single init point.
type SessionStore struct {
	path string

	mu      sync.Mutex
	current Session
	loaded  bool
}

// DefaultSessionPath places the session file under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "minetrack", "session.json"), nil
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load reads the session file. A missing file yields an empty session.
func (s *SessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.current, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return s.current, nil
		}
		return Session{}, fmt.Errorf("read session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("parse session file: %w", err)
	}
	s.current = sess
	s.loaded = true
	return sess, nil
}

func (s *SessionStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.current = sess
	s.loaded = true
	return nil
}

// Clear drops the token but keeps theme/language, so a re-login does not
// reset the operator's preferences.
func (s *SessionStore) Clear() error {
	// Load first: in a fresh process (logout is often the only call) the
	// cache is empty and saving it would wipe the stored preferences.
	sess, err := s.Load()
	if err != nil {
		return err
	}
	sess.Token = ""
	sess.Username = ""
	return s.Save(sess)
}
