package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ListHistoryParams controls history listings. Page is 1-based.
type ListHistoryParams struct {
	Page     int
	PageSize int
	Query    string
}

func (p *Pool) InsertTranslationRecord(ctx context.Context, record *TranslationRecord) error {
	if err := p.ready(); err != nil {
		return err
	}
	if err := p.gdb.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert translation record: %w", err)
	}
	return nil
}

func (p *Pool) GetTranslationRecord(ctx context.Context, id int64) (TranslationRecord, error) {
	if err := p.ready(); err != nil {
		return TranslationRecord{}, err
	}

	var record TranslationRecord
	err := p.gdb.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TranslationRecord{}, ErrNotFound
		}
		return TranslationRecord{}, fmt.Errorf("query translation record: %w", err)
	}
	return record, nil
}

// ListTranslationRecords returns one page of records, newest first, plus the
// total number of records matching the query.
func (p *Pool) ListTranslationRecords(ctx context.Context, params ListHistoryParams) ([]TranslationRecord, int64, error) {
	if err := p.ready(); err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	scoped := p.gdb.WithContext(ctx).Model(&TranslationRecord{})
	if query := strings.TrimSpace(params.Query); query != "" {
		pattern := "%" + escapeLike(query) + "%"
		scoped = scoped.Where(
			"source_text LIKE ? ESCAPE '\\' OR translated_text LIKE ? ESCAPE '\\'",
			pattern, pattern,
		)
	}
	scoped = scoped.Session(&gorm.Session{})

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count translation records: %w", err)
	}

	records := make([]TranslationRecord, 0, pageSize)
	err := scoped.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list translation records: %w", err)
	}
	return records, total, nil
}

// ListAllTranslationRecords returns every record, newest first, for export.
func (p *Pool) ListAllTranslationRecords(ctx context.Context) ([]TranslationRecord, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}

	var records []TranslationRecord
	err := p.gdb.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list translation records: %w", err)
	}
	return records, nil
}

func (p *Pool) CountTranslationRecords(ctx context.Context) (int64, error) {
	if err := p.ready(); err != nil {
		return 0, err
	}

	var total int64
	if err := p.gdb.WithContext(ctx).Model(&TranslationRecord{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count translation records: %w", err)
	}
	return total, nil
}

// DeleteTranslationRecord reports whether a row was removed.
func (p *Pool) DeleteTranslationRecord(ctx context.Context, id int64) (bool, error) {
	if err := p.ready(); err != nil {
		return false, err
	}

	res := p.gdb.WithContext(ctx).Where("id = ?", id).Delete(&TranslationRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete translation record: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteAllTranslationRecords removes every row and returns how many were removed.
func (p *Pool) DeleteAllTranslationRecords(ctx context.Context) (int64, error) {
	if err := p.ready(); err != nil {
		return 0, err
	}

	res := p.gdb.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TranslationRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete translation records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
