package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/apsnygame/rpsbot/internal/game"
	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/apsnygame/rpsbot/internal/platform"
	"github.com/apsnygame/rpsbot/internal/storage"
	"github.com/sirupsen/logrus"
)

// replyWindow is how long after the deadline a choice tweet still counts.
const replyWindow = time.Second

// Store is the slice of storage the resolver needs.
type Store interface {
	DuePendingGames(ctx context.Context, now time.Time) ([]*models.Game, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ApplyGameResult(ctx context.Context, res *storage.GameResult) error
}

// Client is the slice of the platform client the resolver needs.
type Client interface {
	MentionsSince(ctx context.Context, sinceID int64) ([]platform.Mention, error)
	Post(ctx context.Context, text string) error
}

// Resolver settles every pending game whose deadline has passed.
type Resolver struct {
	store  Store
	client Client
	texts  game.Texts

	now func() time.Time
}

func New(store Store, client Client, texts game.Texts) *Resolver {
	return &Resolver{
		store:  store,
		client: client,
		texts:  texts,
		now:    time.Now,
	}
}

// Resolve runs one resolution pass. A game that fails to resolve is logged
// and left pending for the next pass.
func (r *Resolver) Resolve(ctx context.Context) error {
	logger := logrus.WithField("component", "game_resolver")
	now := r.now().UTC()

	games, err := r.store.DuePendingGames(ctx, now)
	if err != nil {
		return fmt.Errorf("getting due games: %w", err)
	}
	if len(games) == 0 {
		logger.Debug("no due games")
		return nil
	}

	mentions, err := r.client.MentionsSince(ctx, 0)
	if err != nil {
		return fmt.Errorf("fetching mentions: %w", err)
	}

	logger.Infof("resolving %d due games", len(games))
	for _, g := range games {
		if err := r.resolveGame(ctx, g, mentions, now); err != nil {
			logger.Errorf("failed to resolve game %s: %v", g.GameID, err)
		}
	}
	return nil
}

func (r *Resolver) resolveGame(ctx context.Context, g *models.Game, mentions []platform.Mention, now time.Time) error {
	user1Name, err := r.username(ctx, g.User1ID)
	if err != nil {
		return err
	}
	user2Name, err := r.username(ctx, g.User2ID)
	if err != nil {
		return err
	}

	choice1 := firstChoice(mentions, g.User1ID, g.Deadline)
	choice2 := firstChoice(mentions, g.User2ID, g.Deadline)

	res := &storage.GameResult{
		GameID:  g.GameID,
		User1ID: g.User1ID,
		User2ID: g.User2ID,
		Now:     now,
	}
	if choice1 != "" {
		res.User1Choice = &choice1
	}
	if choice2 != "" {
		res.User2Choice = &choice2
	}

	var announcement string
	switch {
	case choice1 == "" && choice2 == "":
		res.NoShowIDs = []string{g.User1ID, g.User2ID}
		announcement = r.texts.BothNoShow(user1Name, user2Name)

	case choice1 == "":
		res.NoShowIDs = []string{g.User1ID}
		res.WinnerID = &g.User2ID
		announcement = r.texts.SingleNoShow(user1Name, user2Name)

	case choice2 == "":
		res.NoShowIDs = []string{g.User2ID}
		res.WinnerID = &g.User1ID
		announcement = r.texts.SingleNoShow(user2Name, user1Name)

	default:
		c1, _ := game.Normalize(choice1)
		c2, _ := game.Normalize(choice2)
		switch game.Winner(c1, c2) {
		case 0:
			res.Draw = true
			announcement = r.texts.Draw(user1Name, choice1, user2Name, choice2)
		case 1:
			res.WinnerID = &g.User1ID
			announcement = r.texts.Win(user1Name, choice1, user2Name, choice2, user1Name)
		case 2:
			res.WinnerID = &g.User2ID
			announcement = r.texts.Win(user1Name, choice1, user2Name, choice2, user2Name)
		}
	}

	if err := r.store.ApplyGameResult(ctx, res); err != nil {
		return fmt.Errorf("applying result: %w", err)
	}

	// The result is committed; a failed announcement only loses the tweet.
	if err := r.client.Post(ctx, announcement); err != nil {
		logrus.Errorf("failed to post result of game %s: %v", g.GameID, err)
	}

	return nil
}

// username tolerates a missing user row by falling back to the id.
func (r *Resolver) username(ctx context.Context, userID string) (string, error) {
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("getting user %s: %w", userID, err)
	}
	if user == nil {
		return userID, nil
	}
	return user.Username, nil
}

// firstChoice returns the author's earliest choice token tweeted within the
// reply window, or "" when there is none.
func firstChoice(mentions []platform.Mention, authorID string, deadline time.Time) string {
	windowEnd := deadline.Add(replyWindow)
	for _, m := range mentions {
		if m.AuthorID != authorID {
			continue
		}
		if m.CreatedAt.Before(deadline) || m.CreatedAt.After(windowEnd) {
			continue
		}
		if token := game.ExtractChoice(m.Text); token != "" {
			return token
		}
	}
	return ""
}
