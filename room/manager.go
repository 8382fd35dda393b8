// room/manager.go
package room

import "sync"

// Manager 管理所有房间
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom 创建一个新房间并添加到管理器
func (m *Manager) CreateRoom(id, name string, maxPlayers int, password string) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room := NewRoom(id, name, maxPlayers, password)
	m.rooms[id] = room
	return room
}

// RemoveRoom 从管理器中移除一个房间
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, id)
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// ListOpen returns snapshots of every room still accepting joins. Rooms
// whose game has started are hidden so nobody joins mid-game.
func (m *Manager) ListOpen() []Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snapshots := make([]Snapshot, 0, len(m.rooms))
	for _, room := range m.rooms {
		if room.GetStatus() != StatusOpen {
			continue
		}
		snapshots = append(snapshots, room.Snapshot())
	}
	return snapshots
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
