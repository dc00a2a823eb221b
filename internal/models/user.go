package models

import "time"

type Language string

const (
	LanguageTurkish Language = "tr"
	LanguageEnglish Language = "en"
)

// User mirrors one player of the game. Counters are cumulative except
// GamesToday, which only counts if LastGameDate is still today.
type User struct {
	UserID   string `gorm:"primaryKey"`
	Username string
	Language Language

	CreatedAt  time.Time
	TweetCount int

	GamesToday   int
	LastGameDate *string `gorm:"type:text"`

	NoShows  int
	Banned   bool
	BanUntil *time.Time

	Waiting     bool `gorm:"index"`
	LastInvited string

	GamesPlayed int
	Wins        int
	BSCBalance  float64 `gorm:"column:bsc_balance"`
}

// PlayedToday reports the effective daily game count: stale rows count as
// zero until the daily reset rewrites them.
func (u *User) PlayedToday(today string) int {
	if u.LastGameDate == nil || *u.LastGameDate != today {
		return 0
	}
	return u.GamesToday
}

// BanActive reports whether the user is currently locked out.
func (u *User) BanActive(now time.Time) bool {
	if !u.Banned {
		return false
	}
	return u.BanUntil == nil || u.BanUntil.After(now)
}
