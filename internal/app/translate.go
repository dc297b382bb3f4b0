package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Pluto731/Translation-tools/internal/cli"
	"github.com/Pluto731/Translation-tools/internal/langdetect"
	"github.com/Pluto731/Translation-tools/internal/language"
	"github.com/Pluto731/Translation-tools/internal/translation"
)

// languageFlags holds the --from/--to/--engine flags shared by translating commands.
type languageFlags struct {
	from   *string
	to     *string
	engine *string
}

func addLanguageFlags(fs *flag.FlagSet) languageFlags {
	return languageFlags{
		from:   fs.String("from", "", "Source language code (default from settings, \"auto\" detects)"),
		to:     fs.String("to", "", "Target language code (default from settings)"),
		engine: fs.String("engine", "", "Engine for this command only (baidu, youdao, llm)"),
	}
}

// resolve validates the flags and applies the preference defaults.
func (f languageFlags) resolve(rt *runtime) (string, string, error) {
	from, err := normalizeLanguageFlag("--from", *f.from)
	if err != nil {
		return "", "", err
	}
	to, err := normalizeLanguageFlag("--to", *f.to)
	if err != nil {
		return "", "", err
	}
	if to == language.Auto {
		return "", "", fmt.Errorf("--to cannot be %q", language.Auto)
	}
	from, to = rt.languages(from, to)
	return from, to, nil
}

// selectEngine switches the in-memory engine for this process only.
func (f languageFlags) selectEngine(rt *runtime) error {
	name := strings.TrimSpace(*f.engine)
	if name == "" {
		return nil
	}
	return rt.engines.SetCurrent(name)
}

func normalizeLanguageFlag(flagName, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	lang := language.NormalizeTag(raw)
	if lang == "" {
		return "", fmt.Errorf("%s must be a valid language code", flagName)
	}
	return lang, nil
}

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	langs := addLanguageFlags(fs)
	format := fs.String("format", outputFormatText, "Output format: text or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatText, outputFormatText, outputFormatJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	text, err := textArgument(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "translate requires text as arguments or on stdin")
		return 2
	}

	rt, err := bootstrap(envLoader, historyOptional)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	from, to, err := langs.resolve(rt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := langs.selectEngine(rt); err != nil {
		fmt.Fprintf(os.Stderr, "Select engine failed: %v\n", err)
		return 2
	}

	ctx, cancel := commandContext(*timeout)
	defer cancel()

	result, err := rt.service.TranslateText(ctx, text, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
		return 1
	}
	return printResult(os.Stdout, result, outputFormat)
}

func runLookup(args []string) int {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")
	langs := addLanguageFlags(fs)
	format := fs.String("format", outputFormatText, "Output format: text or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatText, outputFormatText, outputFormatJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		fmt.Fprintln(os.Stderr, "lookup requires exactly one word")
		return 2
	}
	word := strings.TrimSpace(fs.Arg(0))

	rt, err := bootstrap(envLoader, historyOptional)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	from, to, err := langs.resolve(rt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := langs.selectEngine(rt); err != nil {
		fmt.Fprintf(os.Stderr, "Select engine failed: %v\n", err)
		return 2
	}

	ctx, cancel := commandContext(*timeout)
	defer cancel()

	result, err := rt.service.LookupWord(ctx, word, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
		return 1
	}
	return printResult(os.Stdout, result, outputFormat)
}

// printResult writes result and maps an engine failure to exit code 1.
func printResult(w io.Writer, result translation.Result, format string) int {
	if format == outputFormatJSON {
		if err := printJSON(w, result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		if !result.Success() {
			return 1
		}
		return 0
	}

	if !result.Success() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", result.EngineName, result.Error)
		return 1
	}
	if err := writeResultText(w, result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}

func writeResultText(w io.Writer, result translation.Result) error {
	var b strings.Builder
	b.WriteString(result.TranslatedText)
	b.WriteString("\n")

	if detail := result.WordDetail; detail != nil {
		var phonetics []string
		if detail.Phonetic != "" {
			phonetics = append(phonetics, "["+detail.Phonetic+"]")
		}
		if detail.UKPhonetic != "" {
			phonetics = append(phonetics, "UK ["+detail.UKPhonetic+"]")
		}
		if detail.USPhonetic != "" {
			phonetics = append(phonetics, "US ["+detail.USPhonetic+"]")
		}
		if len(phonetics) > 0 {
			b.WriteString("\n" + strings.Join(phonetics, "  ") + "\n")
		}
		if len(detail.Explains) > 0 {
			b.WriteString("\n")
			for _, explain := range detail.Explains {
				b.WriteString("  - " + explain + "\n")
			}
		}
		if len(detail.Examples) > 0 {
			b.WriteString("\nExamples:\n")
			for _, example := range detail.Examples {
				b.WriteString("  " + example.Source + "\n    " + example.Target + "\n")
			}
		}
	}

	fmt.Fprintf(&b, "\n(%s, %s -> %s)\n", result.EngineName,
		translation.LanguageDisplayName(result.FromLang), translation.LanguageDisplayName(result.ToLang))
	_, err := io.WriteString(w, b.String())
	return err
}

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	limit := fs.Int("limit", 3, "Number of candidate languages to show (1-10)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *limit < 1 || *limit > 10 {
		fmt.Fprintln(os.Stderr, "--limit must be between 1 and 10")
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable, outputFormatTable, outputFormatJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	text, err := textArgument(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "detect requires text as arguments or on stdin")
		return 2
	}

	code, ok := langdetect.Detector{}.Detect(text)
	candidates := langdetect.Confidence(text, *limit)

	if outputFormat == outputFormatJSON {
		payload := struct {
			Language   string                 `json:"language"`
			Detected   bool                   `json:"detected"`
			Candidates []langdetect.Candidate `json:"candidates"`
		}{Language: code, Detected: ok, Candidates: candidates}
		if err := printJSON(os.Stdout, payload); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	if !ok {
		fmt.Fprintln(os.Stderr, "Language could not be detected")
		return 1
	}
	rows := make([][]string, 0, len(candidates))
	for _, candidate := range candidates {
		rows = append(rows, []string{
			candidate.Code,
			translation.LanguageDisplayName(candidate.Code),
			fmt.Sprintf("%.3f", candidate.Confidence),
		})
	}
	fmt.Printf("Detected: %s (%s)\n\n", code, translation.LanguageDisplayName(code))
	if err := writeTable(os.Stdout, []string{"CODE", "LANGUAGE", "CONFIDENCE"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}
