package platform

import (
	"context"
	"time"
)

// Profile is the subset of an account's public profile the bot needs.
type Profile struct {
	ID          string
	Username    string
	CreatedAt   time.Time
	TweetCount  int
	Description string
}

// Mention is one inbound tweet addressed to the bot.
type Mention struct {
	ID             int64
	AuthorID       string
	AuthorUsername string
	Text           string
	CreatedAt      time.Time

	// Handles of every account tagged in the tweet, in order of appearance,
	// bot handle included.
	Tagged []string
}

// Client is the narrow capability set the bot needs from the platform.
// The core never depends on which API generation implements it.
type Client interface {
	// Me returns the authenticated bot account.
	Me(ctx context.Context) (*Profile, error)

	// MentionsSince returns mentions with id > sinceID in chronological
	// order. sinceID 0 returns the recent mention timeline.
	MentionsSince(ctx context.Context, sinceID int64) ([]Mention, error)

	UserByID(ctx context.Context, id string) (*Profile, error)
	UserByHandle(ctx context.Context, username string) (*Profile, error)

	// Post publishes a standalone tweet.
	Post(ctx context.Context, text string) error

	// Reply publishes a tweet in reply to the given tweet id.
	Reply(ctx context.Context, text string, inReplyTo int64) error
}
