package match

import (
	"context"
	"fmt"
	"time"

	"github.com/apsnygame/rpsbot/internal/game"
	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store is the slice of storage match creation needs.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	CreateMatch(ctx context.Context, g *models.Game, today string) error
}

// Poster publishes a standalone tweet.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Creator allocates pending games. The announcement is posted before any
// local state is written, so a failed post leaves nothing behind.
type Creator struct {
	store  Store
	poster Poster
	texts  game.Texts

	now func() time.Time
}

func NewCreator(store Store, poster Poster, texts game.Texts) *Creator {
	return &Creator{
		store:  store,
		poster: poster,
		texts:  texts,
		now:    time.Now,
	}
}

func (c *Creator) Create(ctx context.Context, user1ID, user1Name, user2ID, user2Name string) error {
	now := c.now().UTC()

	lang1, err := c.language(ctx, user1ID)
	if err != nil {
		return err
	}
	lang2, err := c.language(ctx, user2ID)
	if err != nil {
		return err
	}

	announcement := c.texts.Announcement(lang1, lang2, user1Name, user2Name)
	if err := c.poster.Post(ctx, announcement); err != nil {
		return fmt.Errorf("posting announcement: %w", err)
	}

	g := &models.Game{
		GameID:   uuid.New().String(),
		User1ID:  user1ID,
		User2ID:  user2ID,
		Deadline: game.NextDeadline(now),
		Status:   models.GameStatusPending,
	}
	if err := c.store.CreateMatch(ctx, g, now.Format(time.DateOnly)); err != nil {
		return fmt.Errorf("storing match: %w", err)
	}

	logrus.Infof("created match %s: @%s vs @%s, deadline %s", g.GameID, user1Name, user2Name, g.Deadline)
	return nil
}

// language falls back to English on a missing row or empty column.
func (c *Creator) language(ctx context.Context, userID string) (models.Language, error) {
	user, err := c.store.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("getting user %s: %w", userID, err)
	}
	if user == nil || user.Language == "" {
		return models.LanguageEnglish, nil
	}
	return user.Language, nil
}
