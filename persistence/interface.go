// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/roomserver/models"
)

// Store 游戏记录存储接口
type Store interface {
	SaveGameRecord(record *models.GameRecord) error
	RecentGameRecords(limit int) ([]models.GameRecord, error)
	GameStats() (*models.GameStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
)
