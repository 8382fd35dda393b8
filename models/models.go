// models/models.go
package models

import (
	"time"
)

// GameRecord 一局游戏的启动记录（只写遥测，不用于恢复房间状态）
type GameRecord struct {
	RoomID     string         `json:"room_id"`
	RoomName   string         `json:"room_name"`
	MapFile    string         `json:"map_file"`
	MaxPlayers int            `json:"max_players"`
	Players    []PlayerRecord `json:"players"`
	StartedAt  time.Time      `json:"started_at"`
}

// PlayerRecord 游戏记录中的单个参与者
type PlayerRecord struct {
	ClientID   string `json:"client_id"`
	Name       string `json:"name"`
	IsAI       bool   `json:"is_ai"`
	Difficulty string `json:"difficulty,omitempty"`
}

// GameStats 聚合统计
type GameStats struct {
	TotalGames    int64      `json:"total_games"`
	TotalPlayers  int64      `json:"total_players"`
	LastStartedAt *time.Time `json:"last_started_at,omitempty"`
}
