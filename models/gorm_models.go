// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	RoomID      string `gorm:"index;not null"`
	RoomName    string `gorm:"not null"`
	MapFile     string `gorm:"not null"`
	MaxPlayers  int    `gorm:"default:0"`
	PlayerCount int    `gorm:"default:0"`
	Players     string `gorm:"type:jsonb;not null"`
}
