package models

import "time"

type GameStatus string

const (
	GameStatusPending   GameStatus = "pending"
	GameStatusCompleted GameStatus = "completed"
)

// Game is one challenge between two players. A pending game is mutated
// exactly once, by the resolver, into completed.
type Game struct {
	GameID  string `gorm:"type:uuid;primaryKey"`
	User1ID string `gorm:"column:user1_id;index"`
	User2ID string `gorm:"column:user2_id;index"`

	// Raw choice tokens as tweeted (Turkish or English), nil until resolved
	// or when the participant never replied.
	User1Choice *string `gorm:"column:user1_choice"`
	User2Choice *string `gorm:"column:user2_choice"`

	Deadline time.Time `gorm:"index"`
	Status   GameStatus

	// Nil encodes both a draw and a double no-show.
	WinnerID *string
}
