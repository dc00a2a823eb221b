package monitor

import (
	"context"

	"github.com/apsnygame/rpsbot/internal/platform"
	"github.com/sirupsen/logrus"
)

// MentionContext carries one inbound mention together with a logger already
// tagged with its identifying fields.
type MentionContext struct {
	context.Context
	mention platform.Mention
	log     *logrus.Entry
}

func NewMentionContext(ctx context.Context, m platform.Mention) *MentionContext {
	return &MentionContext{
		Context: ctx,
		mention: m,
		log: logrus.WithFields(logrus.Fields{
			"mention_id":      m.ID,
			"author_id":       m.AuthorID,
			"author_username": m.AuthorUsername,
		}),
	}
}

func (mc *MentionContext) L() *logrus.Entry {
	return mc.log
}

func (mc *MentionContext) Mention() platform.Mention {
	return mc.mention
}
