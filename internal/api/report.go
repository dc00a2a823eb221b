package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// UserSummary is one row of the weekly report artifact.
type UserSummary struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	BSCBalance  float64 `json:"bsc_balance"`
}

// Reporter exports every user's summary stats to a JSON file.
type Reporter struct {
	storage Store
	path    string
}

func NewReporter(storage Store, path string) *Reporter {
	return &Reporter{storage: storage, path: path}
}

func (r *Reporter) WriteReport(ctx context.Context) error {
	users, err := r.storage.AllUsers(ctx)
	if err != nil {
		return fmt.Errorf("getting users: %w", err)
	}

	report := make([]UserSummary, 0, len(users))
	for _, u := range users {
		report = append(report, UserSummary{
			UserID:      u.UserID,
			Username:    u.Username,
			GamesPlayed: u.GamesPlayed,
			Wins:        u.Wins,
			BSCBalance:  u.BSCBalance,
		})
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	logrus.Infof("wrote weekly report with %d users to %s", len(report), r.path)
	return nil
}
