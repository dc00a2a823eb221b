package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Task runs at a fixed UTC time, daily or on one weekday.
type Task struct {
	Name   string
	Hour   int
	Minute int

	// Weekday restricts the task to one day of the week; nil means daily.
	Weekday *time.Weekday

	Run func(ctx context.Context) error
}

func (t *Task) dueAt(now time.Time) bool {
	if t.Weekday != nil && now.Weekday() != *t.Weekday {
		return false
	}
	return now.Hour() == t.Hour && now.Minute() == t.Minute
}

// Scheduler drives all fixed-time tasks from a single goroutine, so no task
// can ever overlap itself or another.
type Scheduler struct {
	tasks []*Task

	now      func() time.Time
	interval time.Duration
	lastRun  map[string]string
}

func New(tasks ...*Task) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		now:      time.Now,
		interval: time.Minute,
		lastRun:  make(map[string]string),
	}
}

// Run ticks once a minute until the context is cancelled. Task errors are
// logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	logger := logrus.WithField("component", "scheduler")
	logger.Infof("running %d scheduled tasks", len(s.tasks))

	prev := s.now().UTC()
	for {
		select {
		case <-t.C:
			now := s.now().UTC()
			s.catchUp(ctx, prev, now)
			prev = now
		case <-ctx.Done():
			return
		}
	}
}

// catchUp visits every minute boundary in (from, to]. A tick that lands
// late, after a long task or a suspended host, still covers the minutes it
// slept through instead of skipping them.
func (s *Scheduler) catchUp(ctx context.Context, from, to time.Time) {
	for m := from.Truncate(time.Minute).Add(time.Minute); !m.After(to); m = m.Add(time.Minute) {
		s.runDue(ctx, m)
	}
}

// runDue fires every task due in the given minute, at most once per minute
// even when ticks land twice inside it.
func (s *Scheduler) runDue(ctx context.Context, now time.Time) {
	minute := now.Format("2006-01-02 15:04")

	for _, task := range s.tasks {
		if !task.dueAt(now) || s.lastRun[task.Name] == minute {
			continue
		}
		s.lastRun[task.Name] = minute

		logger := logrus.WithField("task", task.Name)
		logger.Info("running scheduled task")
		if err := task.Run(ctx); err != nil {
			logger.Errorf("task failed: %v", err)
		}
	}
}
