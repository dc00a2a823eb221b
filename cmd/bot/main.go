package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/apsnygame/rpsbot/internal/api"
	"github.com/apsnygame/rpsbot/internal/config"
	"github.com/apsnygame/rpsbot/internal/eligibility"
	"github.com/apsnygame/rpsbot/internal/game"
	"github.com/apsnygame/rpsbot/internal/logging"
	"github.com/apsnygame/rpsbot/internal/match"
	"github.com/apsnygame/rpsbot/internal/monitor"
	"github.com/apsnygame/rpsbot/internal/platform"
	"github.com/apsnygame/rpsbot/internal/resolver"
	"github.com/apsnygame/rpsbot/internal/scheduler"
	"github.com/apsnygame/rpsbot/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	setupConfig()
	logging.Init()

	cfg := config.New()
	logrus.Debugf("config: %+v", cfg)

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	store := storage.New(db)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	initCtx, migrateCancel := context.WithTimeout(ctx, 10*time.Second)
	defer migrateCancel()

	if err := store.Migrate(initCtx); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	client, err := platform.New(cfg.APIGeneration, cfg.PlatformBaseURL, cfg.PlatformAccessToken)
	if err != nil {
		logrus.Fatalf("Failed to create platform client: %v", err)
	}

	if me, err := client.Me(initCtx); err != nil {
		logrus.Errorf("Failed to verify platform credentials: %v", err)
	} else {
		logrus.Infof("Connected to platform as @%s (%s)", me.Username, me.ID)
	}

	texts := game.Texts{
		BotHandle: cfg.BotHandle,
		PinnedURL: cfg.PinnedTweetURL,
	}

	checker := eligibility.NewChecker(store, client, texts)
	detector := game.NewDetector(bioLookup{client: client})
	creator := match.NewCreator(store, client, texts)
	mon := monitor.New(cfg, store, client, checker, detector, creator, texts)
	res := resolver.New(store, client, texts)
	reporter := api.NewReporter(store, cfg.ReportPath)

	monday := time.Monday
	sched := scheduler.New(
		&scheduler.Task{
			Name: "daily_reset",
			Run:  store.ResetDailyLimits,
		},
		&scheduler.Task{
			Name:    "weekly_report",
			Weekday: &monday,
			Run:     reporter.WriteReport,
		},
		&scheduler.Task{
			Name:   "resolve_games",
			Hour:   game.DeadlineHourUTC,
			Minute: 5,
			Run:    res.Resolve,
		},
	)

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		mon.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	<-ctx.Done()

	logrus.Info("waiting for services to finish")
	wg.Wait()
}

// bioLookup adapts the platform client to the language detector's
// bio-fallback interface.
type bioLookup struct {
	client platform.Client
}

func (b bioLookup) Bio(ctx context.Context, username string) (string, error) {
	profile, err := b.client.UserByHandle(ctx, username)
	if err != nil {
		return "", err
	}
	return profile.Description, nil
}

func setupConfig() {
	viper.SetDefault("poll_interval", "60s")
	viper.SetDefault("poll_error_backoff", "300s")
	config.SetupCommon()
}
