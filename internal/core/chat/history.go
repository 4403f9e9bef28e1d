package chat

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"deskchat/internal/core/cache"
	"deskchat/internal/core/models"
)

// Panel is the conversation-history side panel state: the per-user
// cached session list and the reconciliation rules around refresh and
// delete. The network calls themselves are run by the interface layer;
// the panel only decides when a refresh is due and applies results.
type Panel struct {
	userEmail string
	store     *cache.Store // optional write-through local cache
	sessions  []models.Session
	loaded    bool // at least one server refresh has landed
}

// NewPanel creates a panel scoped to one authenticated user. store may
// be nil when no local cache is available.
func NewPanel(userEmail string, store *cache.Store) *Panel {
	return &Panel{userEmail: userEmail, store: store}
}

// LoadCached seeds the list from the local cache so the panel has
// something to render before the first server refresh lands.
func (p *Panel) LoadCached() {
	if p.store == nil || p.loaded {
		return
	}
	sessions, err := p.store.Sessions(p.userEmail)
	if err != nil {
		slog.Warn("failed to read session cache", "error", err)
		return
	}
	p.sessions = sessions
}

// SetSessions replaces the list with a fresh server copy and writes it
// through to the local cache.
func (p *Panel) SetSessions(sessions []models.Session) {
	p.sessions = sessions
	p.loaded = true
	if p.store != nil {
		if err := p.store.ReplaceSessions(p.userEmail, sessions); err != nil {
			slog.Warn("failed to write session cache", "error", err)
		}
	}
}

// Sessions returns the cached list, most recently updated first.
func (p *Panel) Sessions() []models.Session {
	out := make([]models.Session, len(p.sessions))
	copy(out, p.sessions)
	return out
}

// NeedsRefresh reports whether the list should be re-fetched: before
// the first refresh, and whenever the active session is missing from
// the cached list -- which happens right after a send created a
// brand-new session server-side.
func (p *Panel) NeedsRefresh(activeSessionID string) bool {
	if !p.loaded {
		return true
	}
	if activeSessionID == "" {
		return false
	}
	for _, s := range p.sessions {
		if s.SessionID == activeSessionID {
			return false
		}
	}
	return true
}

// Remove drops a deleted session from the list and the local cache.
// Called only after the server confirmed the delete; on a failed delete
// the cached list stays unchanged. Reports whether the entry was
// present.
func (p *Panel) Remove(sessionID string) bool {
	for i, s := range p.sessions {
		if s.SessionID == sessionID {
			p.sessions = append(p.sessions[:i], p.sessions[i+1:]...)
			if p.store != nil {
				if err := p.store.DeleteSession(p.userEmail, sessionID); err != nil {
					slog.Warn("failed to delete cached session", "session_id", sessionID, "error", err)
				}
			}
			return true
		}
	}
	return false
}

// UserEmail returns the user this panel is scoped to.
func (p *Panel) UserEmail() string { return p.userEmail }

// FormatDate buckets a session's last-update time for display: Today,
// Yesterday, "N days ago" up to a week, then a plain date. Derived,
// non-authoritative.
func FormatDate(t time.Time, now time.Time) string {
	days := int(math.Ceil(math.Abs(now.Sub(t).Hours()) / 24))
	switch {
	case days <= 1:
		return "Today"
	case days == 2:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}
