package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Pluto731/Translation-tools/internal/cli"
	"github.com/Pluto731/Translation-tools/internal/globaltime"
	"github.com/Pluto731/Translation-tools/internal/history"
)

func runHistory(args []string) int {
	if len(args) == 0 {
		printHistoryUsage()
		return 2
	}

	action := strings.ToLower(strings.TrimSpace(args[0]))
	switch action {
	case "list", "export", "delete", "clear":
	default:
		fmt.Fprintf(os.Stderr, "Unknown history action: %s\n\n", args[0])
		printHistoryUsage()
		return 2
	}

	fs := flag.NewFlagSet("history "+action, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	page := fs.Int("page", 1, "Page number for list")
	pageSize := fs.Int("page-size", 0, "Entries per page for list (default from settings)")
	query := fs.String("q", "", "Only list entries whose source or translation contains this text")
	format := fs.String("format", "", "list: table or json; export: csv or txt")
	out := fs.String("out", "", "Export destination file (default stdout)")
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var id int64
	switch action {
	case "delete":
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "history delete requires one id")
			return 2
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(fs.Arg(0)), 10, 64)
		if err != nil || parsed <= 0 {
			fmt.Fprintln(os.Stderr, "history id must be a positive integer")
			return 2
		}
		id = parsed
	default:
		if fs.NArg() != 0 {
			fmt.Fprintf(os.Stderr, "history %s takes no arguments\n", action)
			return 2
		}
	}
	if *page < 1 {
		fmt.Fprintln(os.Stderr, "--page must be >= 1")
		return 2
	}
	if *pageSize < 0 || *pageSize > 200 {
		fmt.Fprintln(os.Stderr, "--page-size must be between 1 and 200")
		return 2
	}

	if action == "clear" && !*force {
		ok, err := confirmDangerousAction("Delete every history entry?")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read confirmation: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Cancelled")
			return 1
		}
	}

	rt, err := bootstrap(envLoader, historyRequired)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	ctx, cancel := commandContext(*timeout)
	defer cancel()

	switch action {
	case "list":
		outputFormat, err := parseOutputFormat(*format, outputFormatTable, outputFormatTable, outputFormatJSON)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		size := *pageSize
		if size == 0 {
			size = rt.Settings().Preferences.HistoryPageSize
		}
		result, err := rt.history.List(ctx, *page, size, *query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List history failed: %v\n", err)
			return 1
		}
		if err := printHistoryPage(os.Stdout, result, outputFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0

	case "export":
		raw := *format
		if strings.TrimSpace(raw) == "" {
			raw = string(history.FormatCSV)
		}
		exportFormat, err := history.ParseFormat(raw)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		entries, err := rt.history.All(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export history failed: %v\n", err)
			return 1
		}
		if err := exportHistory(*out, exportFormat, entries); err != nil {
			fmt.Fprintf(os.Stderr, "Export history failed: %v\n", err)
			return 1
		}
		if *out != "" {
			fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(entries), *out)
		}
		return 0

	case "delete":
		deleted, err := rt.history.DeleteByID(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Delete history entry failed: %v\n", err)
			return 1
		}
		if !deleted {
			fmt.Fprintf(os.Stderr, "History entry not found: %d\n", id)
			return 1
		}
		fmt.Printf("history deleted id=%d at=%s\n", id, globaltime.UTC().Format(time.RFC3339))
		return 0

	default:
		removed, err := rt.history.DeleteAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Clear history failed: %v\n", err)
			return 1
		}
		fmt.Printf("history cleared removed=%d\n", removed)
		return 0
	}
}

func printHistoryPage(w io.Writer, page history.Page, format string) error {
	if format == outputFormatJSON {
		return printJSON(w, page)
	}

	rows := make([][]string, 0, len(page.Entries))
	for _, entry := range page.Entries {
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			entry.CreatedAt,
			entry.EngineName,
			entry.FromLang + "->" + entry.ToLang,
			truncateForTable(entry.SourceText, 32),
			truncateForTable(entry.TranslatedText, 32),
		})
	}
	if err := writeTable(w, []string{"ID", "CREATED", "ENGINE", "LANGS", "SOURCE", "TRANSLATION"}, rows); err != nil {
		return err
	}

	pages := int64(1)
	if page.PageSize > 0 && page.Total > 0 {
		pages = (page.Total + int64(page.PageSize) - 1) / int64(page.PageSize)
	}
	_, err := fmt.Fprintf(w, "\npage %d/%d, %d entries\n", page.Page, pages, page.Total)
	return err
}

func exportHistory(path string, format history.Format, entries []history.Entry) error {
	if strings.TrimSpace(path) == "" {
		return history.Export(os.Stdout, format, entries)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := history.Export(file, format, entries); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func confirmDangerousAction(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", strings.TrimSpace(prompt))
	reader := bufio.NewReader(stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func printHistoryUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  translation-tools history list [--page 1] [--page-size 20] [--q text] [--format table|json] [--env .env]")
	fmt.Fprintln(os.Stderr, "  translation-tools history export [--format csv|txt] [--out file] [--env .env]")
	fmt.Fprintln(os.Stderr, "  translation-tools history delete [--env .env] <id>")
	fmt.Fprintln(os.Stderr, "  translation-tools history clear [--force] [--env .env]")
}
