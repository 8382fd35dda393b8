// services/record_service.go
package services

import (
	"time"

	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/models"
	"github.com/wfunc/roomserver/persistence"
	"github.com/wfunc/roomserver/room"
)

// RecordService persists game-start records. Writes happen off the request
// path; a storage failure is logged and never reaches the client.
type RecordService struct {
	store persistence.Store
}

func NewRecordService(store persistence.Store) *RecordService {
	return &RecordService{store: store}
}

// RecordGameStart implements coordinator.Recorder.
func (s *RecordService) RecordGameStart(snap room.Snapshot, mapFile string) {
	players := make([]models.PlayerRecord, 0, len(snap.Players))
	for _, m := range snap.Players {
		players = append(players, models.PlayerRecord{
			ClientID:   m.ClientID,
			Name:       m.Name,
			IsAI:       m.IsAI,
			Difficulty: m.Difficulty,
		})
	}

	record := &models.GameRecord{
		RoomID:     snap.RoomID,
		RoomName:   snap.Name,
		MapFile:    mapFile,
		MaxPlayers: snap.MaxPlayers,
		Players:    players,
		StartedAt:  time.Now(),
	}

	go func() {
		if err := s.store.SaveGameRecord(record); err != nil {
			logger.Log.Errorf("Failed to save game record for room %s: %v", snap.RoomID, err)
		}
	}()
}

// GameStats 返回聚合统计
func (s *RecordService) GameStats() (*models.GameStats, error) {
	return s.store.GameStats()
}

// RecentGames 返回最近的游戏记录
func (s *RecordService) RecentGames(limit int) ([]models.GameRecord, error) {
	return s.store.RecentGameRecords(limit)
}
