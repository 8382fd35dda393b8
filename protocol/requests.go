package protocol

import "encoding/json"

// Request payloads, one struct per client message kind that carries fields.

type CreateRoomRequest struct {
	RoomName   string `json:"room_name"`
	MaxPlayers int    `json:"max_players"`
	Password   string `json:"password,omitempty"`
	PlayerName string `json:"player_name"`
}

type JoinRoomRequest struct {
	RoomID     string `json:"room_id"`
	Password   string `json:"password,omitempty"`
	PlayerName string `json:"player_name"`
}

type AddAIPlayerRequest struct {
	Difficulty string `json:"difficulty"`
}

type RemoveAIPlayerRequest struct {
	AIID string `json:"ai_id"`
}

type PlayerReadyRequest struct {
	Ready bool `json:"ready"`
}

// PlayerActionRequest carries gameplay-opaque data. Only start_game and
// toggle_ready are interpreted at this layer; everything else is relayed.
type PlayerActionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type StartGameData struct {
	MapFile string `json:"map_file"`
}

type ToggleReadyData struct {
	Ready bool `json:"ready"`
}

type ChatMessageRequest struct {
	Content string `json:"content"`
}

// HeartbeatData is the echo payload.
type HeartbeatData struct {
	Timestamp float64 `json:"timestamp"`
}
