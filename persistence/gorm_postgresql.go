// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wfunc/roomserver/models"
)

// GormPostgreSQL 基于GORM的存储实现
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	row := models.GormGameRecord{
		RoomID:      record.RoomID,
		RoomName:    record.RoomName,
		MapFile:     record.MapFile,
		MaxPlayers:  record.MaxPlayers,
		PlayerCount: len(record.Players),
		Players:     string(players),
	}

	// 事务内写入，保持与统计读取的一致性
	return p.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
}

func (p *GormPostgreSQL) RecentGameRecords(limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	if err := p.db.Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		var players []models.PlayerRecord
		if err := json.Unmarshal([]byte(row.Players), &players); err != nil {
			return nil, fmt.Errorf("unmarshal players for room %s: %w", row.RoomID, err)
		}
		records = append(records, models.GameRecord{
			RoomID:     row.RoomID,
			RoomName:   row.RoomName,
			MapFile:    row.MapFile,
			MaxPlayers: row.MaxPlayers,
			Players:    players,
			StartedAt:  row.CreatedAt,
		})
	}
	return records, nil
}

func (p *GormPostgreSQL) GameStats() (*models.GameStats, error) {
	stats := &models.GameStats{}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GormGameRecord{}).Count(&stats.TotalGames).Error; err != nil {
			return err
		}

		var totalPlayers struct {
			Total int64
		}
		if err := tx.Model(&models.GormGameRecord{}).
			Select("COALESCE(SUM(player_count), 0) AS total").
			Scan(&totalPlayers).Error; err != nil {
			return err
		}
		stats.TotalPlayers = totalPlayers.Total

		var last models.GormGameRecord
		err := tx.Order("created_at desc").First(&last).Error
		if err == nil {
			t := last.CreatedAt
			stats.LastStartedAt = &t
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
