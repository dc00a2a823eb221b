package game

import (
	"context"
	"errors"
	"testing"

	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/stretchr/testify/assert"
)

type staticBios struct {
	bio string
	err error
}

func (s staticBios) Bio(context.Context, string) (string, error) {
	return s.bio, s.err
}

func TestHasTurkishMark(t *testing.T) {
	assert.True(t, HasTurkishMark("oyun oynayalım mı"))
	assert.True(t, HasTurkishMark("ÇOK İYİ"))
	assert.True(t, HasTurkishMark("only one ş here"))
	assert.False(t, HasTurkishMark("plain ascii text"))
	assert.False(t, HasTurkishMark(""))
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("turkish text wins without bio lookup", func(t *testing.T) {
		d := NewDetector(staticBios{err: errors.New("should not be called")})
		assert.Equal(t, models.LanguageTurkish, d.Detect(ctx, "oyun başlasın", "someone"))
	})

	t.Run("ascii text falls back to turkish bio", func(t *testing.T) {
		d := NewDetector(staticBios{bio: "İstanbul'da yaşıyorum"})
		assert.Equal(t, models.LanguageTurkish, d.Detect(ctx, "game please", "someone"))
	})

	t.Run("ascii text and ascii bio is english", func(t *testing.T) {
		d := NewDetector(staticBios{bio: "just a gamer"})
		assert.Equal(t, models.LanguageEnglish, d.Detect(ctx, "game please", "someone"))
	})

	t.Run("bio lookup failure defaults to english", func(t *testing.T) {
		d := NewDetector(staticBios{err: errors.New("not found")})
		assert.Equal(t, models.LanguageEnglish, d.Detect(ctx, "game please", "someone"))
	})
}
