package game

import (
	"context"
	"strings"

	"github.com/apsnygame/rpsbot/internal/models"
)

const turkishMarks = "çğıöşüÇĞİÖŞÜ"

// HasTurkishMark reports whether the text contains any Turkish-specific
// diacritic character.
func HasTurkishMark(text string) bool {
	return strings.ContainsAny(text, turkishMarks)
}

// BioLookup fetches a user's profile biography by handle.
type BioLookup interface {
	Bio(ctx context.Context, username string) (string, error)
}

// Detector classifies a user's language from tweet text, falling back to
// the profile biography and finally to English.
type Detector struct {
	bios BioLookup
}

func NewDetector(bios BioLookup) *Detector {
	return &Detector{bios: bios}
}

func (d *Detector) Detect(ctx context.Context, text, username string) models.Language {
	if HasTurkishMark(text) {
		return models.LanguageTurkish
	}
	if bio, err := d.bios.Bio(ctx, username); err == nil && HasTurkishMark(bio) {
		return models.LanguageTurkish
	}
	return models.LanguageEnglish
}
