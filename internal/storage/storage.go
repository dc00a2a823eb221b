package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/apsnygame/rpsbot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Storage struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.User{}, &models.Game{}, &models.Setting{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// Seed the watermark so a fresh database starts from mention id 0.
	if err := db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Setting{Key: models.SettingLastMentionID, Value: "0"}).
		Error; err != nil {
		return fmt.Errorf("seeding watermark: %w", err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts the user unless a row with the same id already exists.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(user).
		Error; err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (s *Storage) SetLanguage(ctx context.Context, userID string, lang models.Language) error {
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("language", lang).
		Error; err != nil {
		return fmt.Errorf("updating language: %w", err)
	}
	return nil
}

func (s *Storage) SetWaiting(ctx context.Context, userID string, waiting bool) error {
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("waiting", waiting).
		Error; err != nil {
		return fmt.Errorf("updating waiting flag: %w", err)
	}
	return nil
}

func (s *Storage) ClearWaiting(ctx context.Context, userIDs ...string) error {
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("user_id IN ?", userIDs).
		Update("waiting", false).
		Error; err != nil {
		return fmt.Errorf("clearing waiting flags: %w", err)
	}
	return nil
}

// FindWaitingExcept returns any user from the waiting pool other than the
// given one, or nil when the pool is empty.
func (s *Storage) FindWaitingExcept(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.
		WithContext(ctx).
		Where("waiting = ? AND user_id <> ?", true, userID).
		First(&user).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting waiting user: %w", err)
	}
	return &user, nil
}

func (s *Storage) GetWatermark(ctx context.Context) (int64, error) {
	var setting models.Setting
	if err := s.db.
		WithContext(ctx).
		Where("key = ?", models.SettingLastMentionID).
		First(&setting).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("getting watermark: %w", err)
	}

	id, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing watermark %q: %w", setting.Value, err)
	}
	return id, nil
}

// SetWatermark advances the mention watermark. Moves backwards are ignored
// so the watermark stays strictly monotonic.
func (s *Storage) SetWatermark(ctx context.Context, mentionID int64) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var setting models.Setting
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", models.SettingLastMentionID).
			First(&setting).
			Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return fmt.Errorf("getting watermark: %w", err)
		default:
			current, err := strconv.ParseInt(setting.Value, 10, 64)
			if err == nil && current >= mentionID {
				return nil
			}
		}

		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).
			Create(&models.Setting{
				Key:   models.SettingLastMentionID,
				Value: strconv.FormatInt(mentionID, 10),
			}).
			Error; err != nil {
			return fmt.Errorf("updating watermark: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("in tx: %w", err)
	}
	return nil
}

// CreateMatch inserts the pending game and bumps both players' daily
// counters in one transaction.
func (s *Storage) CreateMatch(ctx context.Context, g *models.Game, today string) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return fmt.Errorf("creating game: %w", err)
		}

		if err := tx.
			Model(&models.User{}).
			Where("user_id IN ?", []string{g.User1ID, g.User2ID}).
			Updates(map[string]any{
				"games_today":    gorm.Expr("games_today + 1"),
				"last_game_date": today,
			}).
			Error; err != nil {
			return fmt.Errorf("incrementing daily counters: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("in tx: %w", err)
	}
	return nil
}

func (s *Storage) DuePendingGames(ctx context.Context, now time.Time) ([]*models.Game, error) {
	var games []*models.Game
	if err := s.db.
		WithContext(ctx).
		Where("status = ? AND deadline <= ?", models.GameStatusPending, now).
		Find(&games).
		Error; err != nil {
		return nil, fmt.Errorf("getting due games: %w", err)
	}
	return games, nil
}

// GameResult is the full set of row changes one resolved game produces.
// ApplyGameResult commits it as a single transaction.
type GameResult struct {
	GameID      string
	User1ID     string
	User2ID     string
	User1Choice *string
	User2Choice *string
	WinnerID    *string
	Draw        bool
	NoShowIDs   []string
	Now         time.Time
}

const (
	noShowBanThreshold = 2
	banDuration        = 7 * 24 * time.Hour
)

func (s *Storage) ApplyGameResult(ctx context.Context, res *GameResult) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Game{}).
			Where("game_id = ? AND status = ?", res.GameID, models.GameStatusPending).
			Updates(map[string]any{
				"user1_choice": res.User1Choice,
				"user2_choice": res.User2Choice,
				"status":       models.GameStatusCompleted,
				"winner_id":    res.WinnerID,
			}).
			Error; err != nil {
			return fmt.Errorf("completing game: %w", err)
		}

		if len(res.NoShowIDs) > 0 {
			if err := tx.
				Model(&models.User{}).
				Where("user_id IN ?", res.NoShowIDs).
				Update("no_shows", gorm.Expr("no_shows + 1")).
				Error; err != nil {
				return fmt.Errorf("incrementing no-shows: %w", err)
			}

			banUntil := res.Now.Add(banDuration)
			if err := tx.
				Model(&models.User{}).
				Where("user_id IN ? AND no_shows >= ?", res.NoShowIDs, noShowBanThreshold).
				Updates(map[string]any{
					"banned":    true,
					"ban_until": banUntil,
				}).
				Error; err != nil {
				return fmt.Errorf("applying bans: %w", err)
			}
		}

		switch {
		case res.WinnerID != nil:
			if err := tx.
				Model(&models.User{}).
				Where("user_id = ?", *res.WinnerID).
				Updates(map[string]any{
					"wins":        gorm.Expr("wins + 1"),
					"bsc_balance": gorm.Expr("bsc_balance + 1"),
				}).
				Error; err != nil {
				return fmt.Errorf("crediting winner: %w", err)
			}
		case res.Draw:
			if err := tx.
				Model(&models.User{}).
				Where("user_id IN ?", []string{res.User1ID, res.User2ID}).
				Update("bsc_balance", gorm.Expr("bsc_balance + 0.5")).
				Error; err != nil {
				return fmt.Errorf("crediting draw: %w", err)
			}
		}

		if err := tx.
			Model(&models.User{}).
			Where("user_id IN ?", []string{res.User1ID, res.User2ID}).
			Update("games_played", gorm.Expr("games_played + 1")).
			Error; err != nil {
			return fmt.Errorf("incrementing games played: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("in tx: %w", err)
	}
	return nil
}

func (s *Storage) ResetDailyLimits(ctx context.Context) error {
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("1 = 1").
		Updates(map[string]any{
			"games_today":    0,
			"last_game_date": nil,
		}).
		Error; err != nil {
		return fmt.Errorf("resetting daily limits: %w", err)
	}
	return nil
}

func (s *Storage) TopUsersByWins(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.
		WithContext(ctx).
		Order("wins DESC").
		Limit(limit).
		Find(&users).
		Error; err != nil {
		return nil, fmt.Errorf("getting top users: %w", err)
	}
	return users, nil
}

func (s *Storage) AllUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("getting users: %w", err)
	}
	return users, nil
}
