// room/room.go
package room

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status 表示房间的业务状态
type Status int

const (
	StatusOpen Status = iota
	StatusStarted
)

// Room 是游戏房间的核心结构。人类槽位以连接ID为键，AI槽位以
// 合成ID为键；两类槽位之和永远不超过 MaxPlayers。
type Room struct {
	ID         string
	Name       string
	MaxPlayers int
	Password   string
	CreatedAt  time.Time

	hostID    string
	humans    map[string]*HumanSlot
	ais       map[string]*AISlot
	aiCounter int
	joinSeq   int
	status    Status
	mutex     sync.RWMutex
}

// NewRoom 创建一个新房间
func NewRoom(id, name string, maxPlayers int, password string) *Room {
	return &Room{
		ID:         id,
		Name:       name,
		MaxPlayers: maxPlayers,
		Password:   password,
		CreatedAt:  time.Now(),
		humans:     make(map[string]*HumanSlot),
		ais:        make(map[string]*AISlot),
		status:     StatusOpen,
	}
}

// AddHuman adds a human slot. The first human to join becomes host.
// Returns false iff the room is at capacity.
func (r *Room) AddHuman(clientID, name string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.humans)+len(r.ais) >= r.MaxPlayers {
		return false
	}

	isHost := len(r.humans) == 0
	if isHost {
		r.hostID = clientID
	}

	r.joinSeq++
	r.humans[clientID] = &HumanSlot{
		ClientID: clientID,
		Name:     name,
		IsHost:   isHost,
		JoinedAt: time.Now(),
		joinSeq:  r.joinSeq,
	}
	return true
}

// AddAI adds an AI slot. The counter only ever increases, so AI ids stay
// unique for the room's lifetime even after removals.
func (r *Room) AddAI(difficulty string) (string, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.humans)+len(r.ais) >= r.MaxPlayers {
		return "", false
	}

	r.aiCounter++
	aiID := fmt.Sprintf("ai_%s_%d", r.ID, r.aiCounter)
	r.ais[aiID] = &AISlot{
		ID:         aiID,
		Name:       fmt.Sprintf("AI玩家%d(%s)", r.aiCounter, difficulty),
		Difficulty: difficulty,
		JoinedAt:   time.Now(),
		seq:        r.aiCounter,
	}
	return aiID, true
}

// RemoveHuman removes a human slot. If the host leaves and humans remain,
// the earliest-joined remaining human becomes the new host.
func (r *Room) RemoveHuman(clientID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot, exists := r.humans[clientID]
	if !exists {
		return false
	}
	delete(r.humans, clientID)

	if slot.IsHost {
		r.hostID = ""
		var next *HumanSlot
		for _, h := range r.humans {
			if next == nil || h.joinSeq < next.joinSeq {
				next = h
			}
		}
		if next != nil {
			next.IsHost = true
			r.hostID = next.ClientID
		}
	}
	return true
}

// RemoveAI removes an AI slot.
func (r *Room) RemoveAI(aiID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.ais[aiID]; !exists {
		return false
	}
	delete(r.ais, aiID)
	return true
}

// SetReady flips a human slot's ready flag. AI slots are always ready.
func (r *Room) SetReady(clientID string, ready bool) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot, exists := r.humans[clientID]
	if !exists {
		return false
	}
	slot.IsReady = ready
	return true
}

// NotReadyCount counts human members blocking a start. The host is
// implicitly ready and never counted.
func (r *Room) NotReadyCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	count := 0
	for _, h := range r.humans {
		if !h.IsReady && !h.IsHost {
			count++
		}
	}
	return count
}

func (r *Room) HostID() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.hostID
}

func (r *Room) IsHost(clientID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return clientID != "" && r.hostID == clientID
}

// CheckPassword reports whether pw grants entry. Rooms without a password
// accept anything.
func (r *Room) CheckPassword(pw string) bool {
	return r.Password == "" || r.Password == pw
}

func (r *Room) HumanCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.humans)
}

func (r *Room) MemberCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.humans) + len(r.ais)
}

// HumanIDs returns the connection ids of all human members, the broadcast
// recipient set.
func (r *Room) HumanIDs() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.humans))
	for id := range r.humans {
		ids = append(ids, id)
	}
	return ids
}

// Members returns all slots in roster order: humans by join order, then
// AIs by creation order.
func (r *Room) Members() []Member {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.membersLocked()
}

func (r *Room) membersLocked() []Member {
	humans := make([]*HumanSlot, 0, len(r.humans))
	for _, h := range r.humans {
		humans = append(humans, h)
	}
	sort.Slice(humans, func(i, j int) bool { return humans[i].joinSeq < humans[j].joinSeq })

	ais := make([]*AISlot, 0, len(r.ais))
	for _, a := range r.ais {
		ais = append(ais, a)
	}
	sort.Slice(ais, func(i, j int) bool { return ais[i].seq < ais[j].seq })

	members := make([]Member, 0, len(humans)+len(ais))
	for _, h := range humans {
		members = append(members, h.member())
	}
	for _, a := range ais {
		members = append(members, a.member())
	}
	return members
}

func (r *Room) SetStatus(status Status) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.status = status
}

func (r *Room) GetStatus() Status {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.status
}

// Snapshot is the wire-level summary of a room. The password itself is
// never included, only its presence.
type Snapshot struct {
	RoomID         string   `json:"room_id"`
	Name           string   `json:"name"`
	CurrentPlayers int      `json:"current_players"`
	MaxPlayers     int      `json:"max_players"`
	HasPassword    bool     `json:"has_password"`
	HostID         string   `json:"host_id"`
	Players        []Member `json:"players"`
	AICount        int      `json:"ai_count"`
}

func (r *Room) Snapshot() Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	members := r.membersLocked()
	return Snapshot{
		RoomID:         r.ID,
		Name:           r.Name,
		CurrentPlayers: len(members),
		MaxPlayers:     r.MaxPlayers,
		HasPassword:    r.Password != "",
		HostID:         r.hostID,
		Players:        members,
		AICount:        len(r.ais),
	}
}
