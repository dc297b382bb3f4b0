package db

import "time"

// TranslationRecord maps translation_history. One row per successful translation.
type TranslationRecord struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SourceText     string    `gorm:"column:source_text;type:text;not null"`
	TranslatedText string    `gorm:"column:translated_text;type:text;not null"`
	FromLang       string    `gorm:"column:from_lang;type:varchar(16);not null"`
	ToLang         string    `gorm:"column:to_lang;type:varchar(16);not null"`
	EngineName     string    `gorm:"column:engine_name;type:varchar(32);not null"`
	IsWord         bool      `gorm:"column:is_word;not null;default:false"`
	WordDetailJSON *string   `gorm:"column:word_detail_json;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index:idx_translation_history_created_at"`
}

func (TranslationRecord) TableName() string { return "translation_history" }

func autoMigrateModels() []any {
	return []any{
		&TranslationRecord{},
	}
}
