// persistence/postgresql.go
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/wfunc/roomserver/models"
)

// PostgreSQL 基于database/sql的存储实现
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &PostgreSQL{db: db}
	if err := p.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgreSQL) createTables() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS game_records (
			id SERIAL PRIMARY KEY,
			room_id VARCHAR(64) NOT NULL,
			room_name TEXT NOT NULL,
			map_file TEXT NOT NULL,
			max_players INT NOT NULL DEFAULT 0,
			player_count INT NOT NULL DEFAULT 0,
			players JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_game_records_room_id ON game_records(room_id);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	_, err = p.db.Exec(`
		INSERT INTO game_records (room_id, room_name, map_file, max_players, player_count, players, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.RoomID, record.RoomName, record.MapFile, record.MaxPlayers,
		len(record.Players), players, record.StartedAt,
	)
	return err
}

func (p *PostgreSQL) RecentGameRecords(limit int) ([]models.GameRecord, error) {
	rows, err := p.db.Query(`
		SELECT room_id, room_name, map_file, max_players, players, created_at
		FROM game_records ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		var players []byte
		if err := rows.Scan(&rec.RoomID, &rec.RoomName, &rec.MapFile,
			&rec.MaxPlayers, &players, &rec.StartedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, fmt.Errorf("unmarshal players for room %s: %w", rec.RoomID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) GameStats() (*models.GameStats, error) {
	stats := &models.GameStats{}

	var last sql.NullTime
	err := p.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(player_count), 0), MAX(created_at)
		FROM game_records`).
		Scan(&stats.TotalGames, &stats.TotalPlayers, &last)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		stats.LastStartedAt = &last.Time
	}
	return stats, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
