package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/auth"
)

// Manager tracks the live connection of each identity and routes events to it.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*Connection // identity → connection
	// verified holds every identity that has ever identified with a token.
	// Anonymous clients may never claim one of them.
	verified map[string]struct{}

	tokens    *auth.TokenService
	supportID string
}

// NewManager creates a gateway Manager. Anonymous clients may not identify
// as supportID.
func NewManager(tokens *auth.TokenService, supportID string) *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
		verified:    make(map[string]struct{}),
		tokens:      tokens,
		supportID:   supportID,
	}
}

// register makes c the live connection for its identity, replacing any older
// one. An anonymous connection is refused when the identity belongs to a
// token-verified user; register reports whether c was accepted.
func (m *Manager) register(c *Connection) bool {
	userID, _ := c.Identity()
	anonymous := c.Anonymous()

	m.mu.Lock()
	old, ok := m.connections[userID]
	if anonymous {
		if _, staff := m.verified[userID]; staff || (ok && !old.Anonymous()) {
			m.mu.Unlock()
			return false
		}
	} else {
		m.verified[userID] = struct{}{}
	}
	m.connections[userID] = c
	m.mu.Unlock()

	if ok && old != c {
		old.SendPayload(GatewayPayload{Op: OpReconnect})
		old.Close()
	}
	return true
}

func (m *Manager) unregister(c *Connection) {
	userID, _ := c.Identity()
	if userID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.connections[userID]; ok && existing == c {
		delete(m.connections, userID)
	}
}

// DispatchToUser sends a dispatch event to the identity's live connection.
func (m *Manager) DispatchToUser(userID string, event string, data any) {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()

	if !ok {
		slog.Debug("no live connection for event", "userID", userID, "event", event)
		return
	}
	c.SendEvent(event, data)
}

// ConnectionCount returns the number of identified connections.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// CloseAll disconnects every client, asking them to reconnect.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	conns := make([]*Connection, 0, len(m.connections))
	for id, c := range m.connections {
		conns = append(conns, c)
		delete(m.connections, id)
	}
	m.mu.Unlock()

	for _, c := range conns {
		c.SendPayload(GatewayPayload{Op: OpReconnect})
		c.Close()
	}
}

func (m *Manager) rejectIdentify(c *Connection, reason string, attrs ...any) {
	slog.Warn("identify rejected", append([]any{"reason", reason}, attrs...)...)
	c.SendPayload(GatewayPayload{Op: OpInvalidSession})
	c.Close()
}

// handleIdentify binds an identity to c from a token or an anonymous client id.
func (m *Manager) handleIdentify(c *Connection, data json.RawMessage) {
	var identify IdentifyData
	if err := json.Unmarshal(data, &identify); err != nil {
		m.rejectIdentify(c, "malformed identify", "error", err)
		return
	}

	var (
		userID    string
		anonymous bool
	)
	switch {
	case identify.Token != "":
		claims, err := m.tokens.ValidateAccessToken(identify.Token)
		if err != nil {
			m.rejectIdentify(c, "invalid token", "error", err)
			return
		}
		userID = claims.UserID
	case identify.ClientID != "":
		if identify.ClientID == m.supportID {
			m.rejectIdentify(c, "anonymous identify as support identity")
			return
		}
		userID, anonymous = identify.ClientID, true
	default:
		m.rejectIdentify(c, "identify without token or client_id")
		return
	}

	sessionID := uuid.NewString()
	if !c.bind(userID, sessionID, anonymous) {
		slog.Warn("duplicate identify ignored", "userID", userID)
		return
	}
	if !m.register(c) {
		m.rejectIdentify(c, "anonymous identify as verified identity", "userID", userID)
		return
	}

	c.SendEvent(EventReady, ReadyData{
		SessionID: sessionID,
		UserID:    userID,
		Anonymous: anonymous,
	})
	slog.Info("gateway identified", "userID", userID, "anonymous", anonymous)
}
