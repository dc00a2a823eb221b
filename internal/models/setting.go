package models

const SettingLastMentionID = "last_mention_id"

// Setting is a single key-value row; the only key in use is the mention
// watermark.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}
