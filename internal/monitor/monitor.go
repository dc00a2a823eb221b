package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apsnygame/rpsbot/internal/config"
	"github.com/apsnygame/rpsbot/internal/game"
	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/apsnygame/rpsbot/internal/platform"
	"github.com/sirupsen/logrus"
)

// Store is the slice of storage the mention processor needs.
type Store interface {
	GetWatermark(ctx context.Context) (int64, error)
	SetWatermark(ctx context.Context, mentionID int64) error
	SetLanguage(ctx context.Context, userID string, lang models.Language) error
	SetWaiting(ctx context.Context, userID string, waiting bool) error
	ClearWaiting(ctx context.Context, userIDs ...string) error
	FindWaitingExcept(ctx context.Context, userID string) (*models.User, error)
}

// Checker decides game eligibility and produces rejection texts.
type Checker interface {
	Check(ctx context.Context, userID, username string) (bool, string)
}

// Detector classifies the requester's language.
type Detector interface {
	Detect(ctx context.Context, text, username string) models.Language
}

// MatchCreator pairs two eligible users into a pending game.
type MatchCreator interface {
	Create(ctx context.Context, user1ID, user1Name, user2ID, user2Name string) error
}

// Monitor polls for new mentions and turns game requests into matches.
type Monitor struct {
	config   *config.Config
	store    Store
	client   platform.Client
	checker  Checker
	detector Detector
	creator  MatchCreator
	texts    game.Texts
}

func New(
	cfg *config.Config,
	store Store,
	client platform.Client,
	checker Checker,
	detector Detector,
	creator MatchCreator,
	texts game.Texts,
) *Monitor {
	return &Monitor{
		config:   cfg,
		store:    store,
		client:   client,
		checker:  checker,
		detector: detector,
		creator:  creator,
		texts:    texts,
	}
}

// Run polls mentions until the context is cancelled. A failed cycle is
// logged and retried after the error backoff instead of the poll interval.
func (m *Monitor) Run(ctx context.Context) {
	logger := logrus.WithField("component", "mention_monitor")

	for {
		interval := m.config.PollInterval
		if err := m.ProcessMentions(ctx); err != nil {
			logger.Errorf("failed to process mentions: %v", err)
			interval = m.config.PollErrorBackoff
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
}

// ProcessMentions handles every mention newer than the watermark in
// chronological order. The watermark is persisted after each mention, so a
// mention whose handling failed is never retried; its failure is only
// logged.
func (m *Monitor) ProcessMentions(ctx context.Context) error {
	watermark, err := m.store.GetWatermark(ctx)
	if err != nil {
		return fmt.Errorf("getting watermark: %w", err)
	}

	mentions, err := m.client.MentionsSince(ctx, watermark)
	if err != nil {
		return fmt.Errorf("fetching mentions: %w", err)
	}
	if len(mentions) == 0 {
		return nil
	}

	logrus.Infof("processing %d new mentions since %d", len(mentions), watermark)

	for _, mention := range mentions {
		mc := NewMentionContext(ctx, mention)

		if err := m.handleMention(mc); err != nil {
			mc.L().Errorf("failed to handle mention: %v", err)
		}

		if err := m.store.SetWatermark(ctx, mention.ID); err != nil {
			return fmt.Errorf("advancing watermark to %d: %w", mention.ID, err)
		}
	}

	return nil
}

func (m *Monitor) handleMention(mc *MentionContext) error {
	mention := mc.Mention()
	userID := mention.AuthorID
	username := mention.AuthorUsername
	text := strings.ToLower(mention.Text)

	eligible, reason := m.checker.Check(mc, userID, username)
	if !eligible {
		mc.L().Infof("user not eligible: %s", reason)
		if err := m.client.Reply(mc, fmt.Sprintf("@%s %s", username, reason), mention.ID); err != nil {
			return fmt.Errorf("replying with rejection: %w", err)
		}
		return nil
	}

	lang := m.detector.Detect(mc, text, username)
	if err := m.store.SetLanguage(mc, userID, lang); err != nil {
		return fmt.Errorf("persisting language: %w", err)
	}
	mc.L().Debugf("detected language %s", lang)

	if !strings.Contains(text, "oyun") && !strings.Contains(text, "game") {
		return nil
	}

	if invitee := m.invitee(mention); invitee != "" {
		return m.handleInvite(mc, userID, username, invitee)
	}
	return m.handleWaiting(mc, userID, username)
}

// invitee returns the first tagged handle that is not the bot itself.
func (m *Monitor) invitee(mention platform.Mention) string {
	for _, handle := range mention.Tagged {
		if !strings.EqualFold(handle, m.config.BotHandle) {
			return handle
		}
	}
	return ""
}

func (m *Monitor) handleInvite(mc *MentionContext, userID, username, invitee string) error {
	mention := mc.Mention()

	profile, err := m.client.UserByHandle(mc, invitee)
	if err != nil {
		mc.L().Errorf("failed to resolve invitee @%s: %v", invitee, err)
		reply := fmt.Sprintf("@%s %s", invitee, m.texts.RejectError(invitee))
		if err := m.client.Reply(mc, reply, mention.ID); err != nil {
			return fmt.Errorf("replying with invitee lookup failure: %w", err)
		}
		return nil
	}

	eligible, reason := m.checker.Check(mc, profile.ID, profile.Username)
	if !eligible {
		mc.L().Infof("invitee @%s not eligible: %s", invitee, reason)
		reply := fmt.Sprintf("@%s %s", profile.Username, reason)
		if err := m.client.Reply(mc, reply, mention.ID); err != nil {
			return fmt.Errorf("replying with invitee rejection: %w", err)
		}
		return nil
	}

	mc.L().Infof("creating invited match: @%s vs @%s", username, profile.Username)
	if err := m.creator.Create(mc, userID, username, profile.ID, profile.Username); err != nil {
		return fmt.Errorf("creating match: %w", err)
	}
	return nil
}

func (m *Monitor) handleWaiting(mc *MentionContext, userID, username string) error {
	if err := m.store.SetWaiting(mc, userID, true); err != nil {
		return fmt.Errorf("marking user waiting: %w", err)
	}

	opponent, err := m.store.FindWaitingExcept(mc, userID)
	if err != nil {
		return fmt.Errorf("looking for waiting opponent: %w", err)
	}
	if opponent == nil {
		mc.L().Infof("@%s is waiting for an opponent", username)
		return nil
	}

	mc.L().Infof("pairing @%s with waiting @%s", username, opponent.Username)
	if err := m.creator.Create(mc, userID, username, opponent.UserID, opponent.Username); err != nil {
		return fmt.Errorf("creating match: %w", err)
	}

	if err := m.store.ClearWaiting(mc, userID, opponent.UserID); err != nil {
		return fmt.Errorf("clearing waiting flags: %w", err)
	}
	return nil
}
