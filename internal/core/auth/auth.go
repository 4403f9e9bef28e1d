package auth

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// User is the authenticated identity the chat core acts on behalf of.
// Which email domains are allowed to sign in is backend policy; this
// package never validates the domain.
type User struct {
	Email string `toml:"email"`
}

// Manager persists the signed-in user under the config directory so the
// CLI and the TUI share login state across invocations.
type Manager struct {
	path string
}

func NewManager(dir string) *Manager {
	return &Manager{path: filepath.Join(dir, "user.toml")}
}

// CurrentUser returns the signed-in user, if any.
func (m *Manager) CurrentUser() (User, bool) {
	var u User
	if _, err := toml.DecodeFile(m.path, &u); err != nil {
		return User{}, false
	}
	if u.Email == "" {
		return User{}, false
	}
	return u, true
}

// Login records the signed-in user. The email is normalized to lower
// case; only basic shape is checked here.
func (m *Manager) Login(email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, errors.New("invalid email address")
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return User{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	u := User{Email: email}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(u); err != nil {
		return User{}, fmt.Errorf("failed to encode login state: %w", err)
	}
	if err := os.WriteFile(m.path, buf.Bytes(), 0600); err != nil {
		return User{}, fmt.Errorf("failed to write login state: %w", err)
	}
	return u, nil
}

// Logout clears persisted login state. Signing out discards all
// per-user chat state; callers drop their transcript and panel.
func (m *Manager) Logout() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear login state: %w", err)
	}
	return nil
}
