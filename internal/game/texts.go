package game

import (
	"fmt"

	"github.com/apsnygame/rpsbot/internal/models"
)

// Texts produces all outbound tweet copy. The strings are the product's
// literal announcement texts, parameterized on the bot handle and the
// pinned rules tweet.
type Texts struct {
	BotHandle string
	PinnedURL string
}

func (t Texts) Announcement(lang1, lang2 models.Language, user1, user2 string) string {
	tr := fmt.Sprintf(
		"Oyun zamanı ! #taşkağıtmakas #oyun için meydan okundu! \n"+
			"@%s vs @%s!\n"+
			"@%s + taş, kağıt ya da makas yaz ve 20:00 TRT’de zamanla.\n"+
			"[%s]. $BSC",
		user1, user2, t.BotHandle, t.PinnedURL,
	)
	en := fmt.Sprintf(
		"Play #games time! @%s vs @%s!\n"+
			"#rockpaperscissors #game challenged!\n"+
			"Tag @%s + rock, paper or scissors, time your reply tweet (UTC 17:00) and send.\n"+
			"[%s]. $BSC",
		user1, user2, t.BotHandle, t.PinnedURL,
	)

	switch {
	case lang1 == models.LanguageTurkish && lang2 == models.LanguageTurkish:
		return tr
	case lang1 == models.LanguageEnglish && lang2 == models.LanguageEnglish:
		return en
	default:
		return tr + "\n" + en
	}
}

func (t Texts) BothNoShow(user1, user2 string) string {
	return fmt.Sprintf("@%s ve @%s katılmadı! Yeni eşleşme aranıyor. $BSC", user1, user2)
}

func (t Texts) SingleNoShow(absent, winner string) string {
	return fmt.Sprintf("@%s katılmadı, @%s kazandı! Kumbara: +1 BSC. $BSC", absent, winner)
}

func (t Texts) Draw(user1, choice1, user2, choice2 string) string {
	return fmt.Sprintf("@%s (%s) vs @%s (%s): Berabere! Kumbara: +0.5 BSC. $BSC", user1, choice1, user2, choice2)
}

func (t Texts) Win(user1, choice1, user2, choice2, winner string) string {
	return fmt.Sprintf("@%s (%s) vs @%s (%s): @%s kazandı! Kumbara: +1 BSC. $BSC", user1, choice1, user2, choice2, winner)
}

func (t Texts) RejectBanned() string {
	return fmt.Sprintf("2 kere katılmadın, 7 gün ban. Detay: [%s]. $BSC", t.PinnedURL)
}

func (t Texts) RejectAccount(username string) string {
	return fmt.Sprintf("@%s, şartlar: hesap >1 ay, tweet >10. Detay: [%s]. $BSC", username, t.PinnedURL)
}

func (t Texts) RejectQuota(username string) string {
	return fmt.Sprintf("@%s, günlük 10 oyun sınırı. Yarın bekleriz! $BSC", username)
}

func (t Texts) RejectError(username string) string {
	return fmt.Sprintf("@%s, hata: kullanıcı doğrulanamadı. DM @%s. $BSC", username, t.BotHandle)
}
