package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Pluto731/Translation-tools/internal/db"
	"github.com/Pluto731/Translation-tools/internal/globaltime"
	"github.com/Pluto731/Translation-tools/internal/translation"
)

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = db.ErrNotFound

// Entry is one stored translation as exposed to callers.
type Entry struct {
	ID             int64                   `json:"id"`
	SourceText     string                  `json:"source_text"`
	TranslatedText string                  `json:"translated_text"`
	FromLang       string                  `json:"from_lang"`
	ToLang         string                  `json:"to_lang"`
	EngineName     string                  `json:"engine_name"`
	IsWord         bool                    `json:"is_word"`
	WordDetail     *translation.WordDetail `json:"word_detail,omitempty"`
	CreatedAt      string                  `json:"created_at"`
}

// Page is one slice of a listing plus the total number of matches.
type Page struct {
	Entries  []Entry `json:"entries"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// Repository stores successful translations.
type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores a successful result. Failed results are rejected.
func (r *Repository) Create(ctx context.Context, result translation.Result) error {
	if !result.Success() {
		return fmt.Errorf("refusing to store failed translation: %s", result.Error)
	}

	record := db.TranslationRecord{
		SourceText:     result.SourceText,
		TranslatedText: result.TranslatedText,
		FromLang:       result.FromLang,
		ToLang:         result.ToLang,
		EngineName:     result.EngineName,
		IsWord:         result.IsWord,
		CreatedAt:      globaltime.UTC(),
	}
	if result.WordDetail != nil {
		raw, err := json.Marshal(result.WordDetail)
		if err != nil {
			return fmt.Errorf("encode word detail: %w", err)
		}
		detail := string(raw)
		record.WordDetailJSON = &detail
	}

	return r.pool.InsertTranslationRecord(ctx, &record)
}

func (r *Repository) FindByID(ctx context.Context, id int64) (Entry, error) {
	record, err := r.pool.GetTranslationRecord(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return toEntry(record), nil
}

// List returns entries newest first. query filters by source or translated text.
func (r *Repository) List(ctx context.Context, page, pageSize int, query string) (Page, error) {
	page = max(page, 1)
	if pageSize <= 0 {
		pageSize = 20
	}

	records, total, err := r.pool.ListTranslationRecords(ctx, db.ListHistoryParams{
		Page:     page,
		PageSize: pageSize,
		Query:    strings.TrimSpace(query),
	})
	if err != nil {
		return Page{}, err
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toEntry(record))
	}
	return Page{Entries: entries, Total: total, Page: page, PageSize: pageSize}, nil
}

// All returns every entry, newest first.
func (r *Repository) All(ctx context.Context) ([]Entry, error) {
	records, err := r.pool.ListAllTranslationRecords(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toEntry(record))
	}
	return entries, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.pool.CountTranslationRecords(ctx)
}

// DeleteByID reports whether an entry was removed.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	return r.pool.DeleteTranslationRecord(ctx, id)
}

func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	return r.pool.DeleteAllTranslationRecords(ctx)
}

func toEntry(record db.TranslationRecord) Entry {
	entry := Entry{
		ID:             record.ID,
		SourceText:     record.SourceText,
		TranslatedText: record.TranslatedText,
		FromLang:       record.FromLang,
		ToLang:         record.ToLang,
		EngineName:     record.EngineName,
		IsWord:         record.IsWord,
		CreatedAt:      record.CreatedAt.UTC().Format(timestampLayout),
	}
	if record.WordDetailJSON != nil && *record.WordDetailJSON != "" {
		var detail translation.WordDetail
		// A damaged detail column still leaves a usable entry.
		if err := json.Unmarshal([]byte(*record.WordDetailJSON), &detail); err == nil {
			entry.WordDetail = &detail
		}
	}
	return entry
}

const timestampLayout = "2006-01-02 15:04:05"
