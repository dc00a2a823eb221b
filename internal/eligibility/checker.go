package eligibility

import (
	"context"
	"time"

	"github.com/apsnygame/rpsbot/internal/game"
	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/apsnygame/rpsbot/internal/platform"
	"github.com/sirupsen/logrus"
)

const (
	minAccountAgeDays = 30
	minTweetCount     = 10
	dailyGameLimit    = 10
)

// Store is the slice of storage the checker needs.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// ProfileLookup resolves a user's public profile by platform id.
type ProfileLookup interface {
	UserByID(ctx context.Context, id string) (*platform.Profile, error)
}

// Checker decides whether a user may start a game. It may create the user
// row for a first-seen eligible user, but never touches ban state; bans are
// owned by the resolver.
type Checker struct {
	store    Store
	profiles ProfileLookup
	texts    game.Texts

	now func() time.Time
}

func NewChecker(store Store, profiles ProfileLookup, texts game.Texts) *Checker {
	return &Checker{
		store:    store,
		profiles: profiles,
		texts:    texts,
		now:      time.Now,
	}
}

// Check returns whether the user may play and, if not, the localized
// rejection text to reply with. Lookup failures count as ineligible.
func (c *Checker) Check(ctx context.Context, userID, username string) (bool, string) {
	now := c.now().UTC()

	user, err := c.store.GetUser(ctx, userID)
	if err != nil {
		logrus.Errorf("eligibility: failed to get user %s: %v", userID, err)
		return false, c.texts.RejectError(username)
	}

	if user != nil && user.NoShows >= 2 && user.BanActive(now) {
		return false, c.texts.RejectBanned()
	}

	profile, err := c.profiles.UserByID(ctx, userID)
	if err != nil {
		logrus.Errorf("eligibility: failed to fetch profile of %s: %v", userID, err)
		return false, c.texts.RejectError(username)
	}

	ageDays := int(now.Sub(profile.CreatedAt).Hours() / 24)
	if ageDays < minAccountAgeDays || profile.TweetCount < minTweetCount {
		return false, c.texts.RejectAccount(username)
	}

	today := now.Format(time.DateOnly)
	if user != nil && user.PlayedToday(today) >= dailyGameLimit {
		return false, c.texts.RejectQuota(username)
	}

	if user == nil {
		if err := c.store.CreateUser(ctx, &models.User{
			UserID:       userID,
			Username:     username,
			Language:     models.LanguageEnglish,
			CreatedAt:    profile.CreatedAt,
			TweetCount:   profile.TweetCount,
			GamesToday:   0,
			LastGameDate: &today,
		}); err != nil {
			logrus.Errorf("eligibility: failed to create user %s: %v", userID, err)
			return false, c.texts.RejectError(username)
		}
	}

	return true, ""
}
