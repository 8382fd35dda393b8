// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/roomserver/network"
	"github.com/wfunc/roomserver/protocol"
)

// Session 表示一个已接入的客户端连接
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	roomID     string
	playerName string
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// Send writes one envelope to the session's transport.
func (s *Session) Send(env *protocol.Envelope) error {
	s.LastActive = time.Now()
	return s.Conn.Send(env)
}

// SetRoom records the session's current room association. The coordinator
// keeps this in lockstep with the room's own membership map.
func (s *Session) SetRoom(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomID = roomID
}

func (s *Session) Room() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomID
}

func (s *Session) SetPlayerName(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.playerName = name
}

func (s *Session) PlayerName() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playerName
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
