package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format names an export layout.
type Format string

const (
	FormatCSV Format = "csv"
	FormatTXT Format = "txt"
)

// ParseFormat accepts "csv" or "txt", case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTXT:
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType is the MIME type for an export body.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Export writes entries in the given format.
func Export(w io.Writer, format Format, entries []Entry) error {
	switch format {
	case FormatCSV:
		return ExportCSV(w, entries)
	case FormatTXT:
		return ExportTXT(w, entries)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

const utf8BOM = "\ufeff"

var csvHeader = []string{"ID", "Source", "Translation", "From", "To", "Engine", "Word", "Created"}

// ExportCSV writes a UTF-8 CSV with a byte order mark so spreadsheet tools
// detect the encoding.
func ExportCSV(w io.Writer, entries []Entry) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range entries {
		row := []string{
			strconv.FormatInt(entry.ID, 10),
			entry.SourceText,
			entry.TranslatedText,
			entry.FromLang,
			entry.ToLang,
			entry.EngineName,
			yesNo(entry.IsWord),
			entry.CreatedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", entry.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportTXT writes one numbered block per entry separated by blank lines.
func ExportTXT(w io.Writer, entries []Entry) error {
	for i, entry := range entries {
		var b strings.Builder
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#%d  [%s] %s -> %s  (%s)\n", i+1, entry.EngineName, entry.FromLang, entry.ToLang, entry.CreatedAt)
		fmt.Fprintf(&b, "Source: %s\n", entry.SourceText)
		fmt.Fprintf(&b, "Translation: %s\n", entry.TranslatedText)
		if entry.WordDetail != nil && len(entry.WordDetail.Explains) > 0 {
			fmt.Fprintf(&b, "Explains: %s\n", strings.Join(entry.WordDetail.Explains, "; "))
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("write entry %d: %w", entry.ID, err)
		}
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
