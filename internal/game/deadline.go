package game

import "time"

// DeadlineHourUTC is the fixed reply hour all matches share.
const DeadlineHourUTC = 17

// NextDeadline returns the next occurrence of 17:00 UTC strictly after now.
func NextDeadline(now time.Time) time.Time {
	now = now.UTC()
	deadline := time.Date(now.Year(), now.Month(), now.Day(), DeadlineHourUTC, 0, 0, 0, time.UTC)
	if !deadline.After(now) {
		deadline = deadline.AddDate(0, 0, 1)
	}
	return deadline
}
