package game

import "strings"

// Choice is a normalized (English) game choice.
type Choice string

const (
	ChoiceRock     Choice = "rock"
	ChoicePaper    Choice = "paper"
	ChoiceScissors Choice = "scissors"
)

// ChoiceTokens are the accepted keywords in tweet text, checked in order.
// The Turkish tokens come first so that a bilingual reply resolves the same
// way on both localizations of the announcement.
var ChoiceTokens = []string{"taş", "kağıt", "makas", "rock", "paper", "scissors"}

// Normalize maps a Turkish token onto its English choice. English tokens map
// to themselves; anything else returns ok=false.
var normalize = map[string]Choice{
	"taş":      ChoiceRock,
	"kağıt":    ChoicePaper,
	"makas":    ChoiceScissors,
	"rock":     ChoiceRock,
	"paper":    ChoicePaper,
	"scissors": ChoiceScissors,
}

func Normalize(token string) (Choice, bool) {
	c, ok := normalize[token]
	return c, ok
}

// ExtractChoice returns the first choice token found in the tweet text, or
// "" when the text contains none.
//
// Lowercasing is locale-agnostic: strings.ToLower folds the ASCII I to i,
// not the Turkish ı, so a fully upper-cased KAĞIT does not match kağıt.
// Mixed-case and dotted forms match fine. Fixing it would take
// golang.org/x/text/cases with a Turkish locale.
func ExtractChoice(text string) string {
	text = strings.ToLower(text)
	for _, token := range ChoiceTokens {
		if strings.Contains(text, token) {
			return token
		}
	}
	return ""
}

// beats[a] is the choice a wins against.
var beats = map[Choice]Choice{
	ChoiceRock:     ChoiceScissors,
	ChoiceScissors: ChoicePaper,
	ChoicePaper:    ChoiceRock,
}

// Winner applies the cyclic dominance rule to two normalized choices.
// It returns 1 or 2 for the winning side and 0 for a draw.
func Winner(c1, c2 Choice) int {
	switch {
	case c1 == c2:
		return 0
	case beats[c1] == c2:
		return 1
	default:
		return 2
	}
}
