package main

import (
	"time"

	"github.com/wfunc/roomserver/config"
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/persistence"
	"github.com/wfunc/roomserver/server"
	"github.com/wfunc/roomserver/services"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize game-record store (optional)
	var records *services.RecordService
	switch cfg.Database.Driver {
	case "gorm":
		store, err := persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		records = services.NewRecordService(store)
		logger.Log.Info("Database connection successful (gorm).")
	case "postgres":
		store, err := persistence.NewPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		records = services.NewRecordService(store)
		logger.Log.Info("Database connection successful (postgres).")
	default:
		logger.Log.Info("Running without game-record persistence.")
	}

	// Initialize Room Server
	roomServer := server.New(server.Options{
		Addr:        cfg.Server.HTTPAddress,
		RPCAddr:     cfg.Server.RPCAddress,
		MetricsAddr: cfg.Server.MetricsAddress,
		Heartbeat:   time.Duration(cfg.Server.HeartbeatSeconds) * time.Second,
		Records:     records,
	})

	// Start Server
	logger.Log.Infof("Starting room server on %s", cfg.Server.HTTPAddress)
	if err := roomServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
