package room

import "time"

// HumanSlot 真人玩家槽位，由一个活动连接支撑
type HumanSlot struct {
	ClientID string
	Name     string
	IsReady  bool
	IsHost   bool
	JoinedAt time.Time

	joinSeq int // monotonic per room, breaks JoinedAt ties
}

// AISlot AI玩家槽位，永远处于准备状态，永远不是房主
type AISlot struct {
	ID         string
	Name       string
	Difficulty string
	JoinedAt   time.Time

	seq int
}

// Member is the wire-level snapshot of one slot, human or AI.
type Member struct {
	ClientID   string  `json:"client_id"`
	Name       string  `json:"name"`
	IsReady    bool    `json:"is_ready"`
	IsHost     bool    `json:"is_host"`
	IsAI       bool    `json:"is_ai"`
	Difficulty string  `json:"difficulty,omitempty"`
	JoinTime   float64 `json:"join_time"`
}

func (s *HumanSlot) member() Member {
	return Member{
		ClientID: s.ClientID,
		Name:     s.Name,
		IsReady:  s.IsReady,
		IsHost:   s.IsHost,
		JoinTime: float64(s.JoinedAt.UnixNano()) / 1e9,
	}
}

func (s *AISlot) member() Member {
	return Member{
		ClientID:   s.ID,
		Name:       s.Name,
		IsReady:    true,
		IsAI:       true,
		Difficulty: s.Difficulty,
		JoinTime:   float64(s.JoinedAt.UnixNano()) / 1e9,
	}
}
