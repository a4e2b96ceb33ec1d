package upstream

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/pkg/types"
)

// sessionManager keeps a stateful upstream server's connection open across
// calls instead of reconnecting every time, the behavior the teacher's own
// newMcpServerSession left as a comment ("For stateful sessions, use the
// SessionManager to keep the process running") rather than implementing.
// Stateless servers never enter the map: acquire dials and the caller closes,
// the same per-call lifecycle the teacher's stdio comment describes as
// "easy to implement" but costly for frequent callers.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*client.Client
}

func newSessionManager() *sessionManager {
	return &sessionManager{sessions: make(map[uuid.UUID]*client.Client)}
}

// acquire returns a usable session for s, and whether that session is
// pooled (and therefore must NOT be closed by the caller). A stateless
// server always dials a fresh session. A stateful server reuses its one
// cached connection, dialing it lazily on first use.
func (m *sessionManager) acquire(ctx context.Context, s *model.McpServer, initReqTimeoutSec int) (session *client.Client, pooled bool, err error) {
	if s.SessionMode != types.SessionModeStateful {
		session, err = newMcpServerSession(ctx, s, initReqTimeoutSec)
		return session, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[s.ID]; ok {
		return existing, true, nil
	}

	session, err = newMcpServerSession(ctx, s, initReqTimeoutSec)
	if err != nil {
		return nil, false, err
	}
	m.sessions[s.ID] = session
	return session, true, nil
}

// evict drops and closes a pooled session, used when a call against it
// fails so the next acquire redials instead of reusing a broken
// connection.
func (m *sessionManager) evict(serverID uuid.UUID) {
	m.mu.Lock()
	session, ok := m.sessions[serverID]
	if ok {
		delete(m.sessions, serverID)
	}
	m.mu.Unlock()

	if ok {
		_ = session.Close()
	}
}

// Close shuts down every pooled session, for use at process shutdown.
func (m *sessionManager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*client.Client)
	m.mu.Unlock()

	var firstErr error
	for id, session := range sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close pooled session for server %s: %w", id, err)
		}
	}
	return firstErr
}
