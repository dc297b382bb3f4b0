package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Pluto731/Translation-tools/internal/cli"
	"github.com/Pluto731/Translation-tools/internal/settings"
)

func runEngines(args []string) int {
	fs := flag.NewFlagSet("engines", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	use := fs.String("use", "", "Make this engine the saved default")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable, outputFormatTable, outputFormatJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	rt, err := bootstrap(envLoader, historyOff)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	if name := strings.ToLower(strings.TrimSpace(*use)); name != "" {
		if err := rt.engines.SetCurrent(name); err != nil {
			fmt.Fprintf(os.Stderr, "Select engine failed: %v\n", err)
			return 2
		}
		ctx, cancel := commandContext(30 * time.Second)
		defer cancel()
		_, err = rt.UpdateSettings(ctx, func(current settings.Settings) settings.Settings {
			return current.WithPreferences(func(p *settings.Preferences) {
				p.DefaultEngine = name
			})
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Save settings failed: %v\n", err)
			return 1
		}
		if override := strings.TrimSpace(rt.cfg.Engine); override != "" && override != name {
			fmt.Fprintf(os.Stderr, "Warning: TRANSLATION_ENGINE=%s overrides the saved default\n", override)
		}
	}

	names := rt.engines.Names()
	current := rt.engines.CurrentName()

	if outputFormat == outputFormatJSON {
		payload := struct {
			Engines []string `json:"engines"`
			Current string   `json:"current"`
		}{Engines: names, Current: current}
		if err := printJSON(os.Stdout, payload); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		marker := ""
		if name == current {
			marker = "*"
		}
		rows = append(rows, []string{marker, name})
	}
	if err := writeTable(os.Stdout, []string{"CURRENT", "ENGINE"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}
