package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// DefaultSessionPath returns the per-user session cache file.
//
//	macOS:   ~/Library/Caches/w3mood/session.json
//	Linux:   ~/.cache/w3mood/session.json
//	Windows: %LocalAppData%\w3mood\session.json
func DefaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "w3mood", "session.json")
}

// SessionCache holds keys of unlocked wallets between invocations. A wallet
// whose key is cached here counts as unlocked.
type SessionCache struct {
	mu   sync.Mutex
	path string
}

// NewSessionCache returns a cache stored at path.
func NewSessionCache(path string) *SessionCache {
	return &SessionCache{path: path}
}

// Path returns the backing file.
func (s *SessionCache) Path() string {
	return s.path
}

// Get returns a cached key for ref, or ("", false) if not cached.
func (s *SessionCache) Get(ref string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[ref]
	return v, ok
}

// Unlocked reports whether the wallet's key is cached.
func (s *SessionCache) Unlocked(w *Wallet) bool {
	if w == nil || w.KeyRef == "" {
		return false
	}
	_, ok := s.Get(w.KeyRef)
	return ok
}

// Put caches a key for ref.
func (s *SessionCache) Put(ref, hexKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[ref] = hexKey
	return s.save(m)
}

// Remove evicts a single key. Removing a missing key is a no-op.
func (s *SessionCache) Remove(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	if _, ok := m[ref]; !ok {
		return nil
	}
	delete(m, ref)
	return s.save(m)
}

// Clear removes all cached keys by deleting the session file.
func (s *SessionCache) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Active reports whether any key is cached.
func (s *SessionCache) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.load()) > 0
}

// load returns an empty map (never nil) on any error.
func (s *SessionCache) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (s *SessionCache) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(s.path, 0o600)
}
