package main

import (
	"context"
	"time"

	"github.com/apsnygame/rpsbot/internal/api"
	"github.com/apsnygame/rpsbot/internal/config"
	"github.com/apsnygame/rpsbot/internal/logging"
	"github.com/apsnygame/rpsbot/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	config.SetupCommon()
	logging.Init()

	cfg := config.New()
	logrus.Debugf("config: %+v", cfg)

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	store := storage.New(db)

	migrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Migrate(migrateCtx); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	service := api.NewService(store)
	e := echo.New()
	e.GET("/leaderboard", service.HandleLeaderboard())
	if err := e.Start(cfg.ListenAddr); err != nil {
		logrus.Fatalf("Server stopped: %v", err)
	}
}
