package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Pluto731/Translation-tools/internal/cli"
	"github.com/Pluto731/Translation-tools/internal/settings"
	payloadschema "github.com/Pluto731/Translation-tools/schema"
)

const outputFormatYAML = "yaml"

type settingKind int

const (
	settingString settingKind = iota
	settingBool
	settingInt
)

type settingField struct {
	section string
	kind    settingKind
}

// settingFields maps every key accepted by "settings set" to its section.
var settingFields = map[string]settingField{
	"baidu_app_id":      {section: "api_keys"},
	"baidu_secret_key":  {section: "api_keys"},
	"baidu_api_url":     {section: "api_keys"},
	"youdao_app_key":    {section: "api_keys"},
	"youdao_app_secret": {section: "api_keys"},
	"youdao_api_url":    {section: "api_keys"},
	"llm_api_url":       {section: "api_keys"},
	"llm_api_key":       {section: "api_keys"},
	"llm_model_name":    {section: "api_keys"},
	"default_engine":    {section: "preferences"},
	"default_from_lang": {section: "preferences"},
	"default_to_lang":   {section: "preferences"},
	"show_word_detail":  {section: "preferences", kind: settingBool},
	"history_page_size": {section: "preferences", kind: settingInt},
}

func runSettings(args []string) int {
	if len(args) == 0 {
		printSettingsUsage()
		return 2
	}

	action := strings.ToLower(strings.TrimSpace(args[0]))
	switch action {
	case "show", "set", "path":
	default:
		fmt.Fprintf(os.Stderr, "Unknown settings action: %s\n\n", args[0])
		printSettingsUsage()
		return 2
	}

	fs := flag.NewFlagSet("settings "+action, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", outputFormatYAML, "Output format for show: yaml or json")
	reveal := fs.Bool("reveal", false, "Show secrets in plaintext")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var update *payloadschema.SettingsUpdate
	if action == "set" {
		payload, err := settingsUpdatePayload(fs.Args())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		update, err = payloadschema.ValidateSettingsUpdate(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
			return 2
		}
	} else if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "settings %s takes no arguments\n", action)
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatYAML, outputFormatYAML, outputFormatJSON)
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

	switch action {
	case "path":
		fmt.Println(rt.store.Path())
		return 0
	case "set":
		ctx, cancel := commandContext(30 * time.Second)
		defer cancel()
		if _, err := rt.UpdateSettings(ctx, update.Apply); err != nil {
			fmt.Fprintf(os.Stderr, "Save settings failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Settings saved to %s\n", rt.store.Path())
		return 0
	}

	current := rt.Settings()
	if !*reveal {
		current.APIKeys = current.APIKeys.Redacted()
	}
	if err := writeSettings(os.Stdout, current, outputFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}

// settingsUpdatePayload turns key=value assignments into a settings update
// document. Keys may carry their section prefix ("preferences.default_engine").
func settingsUpdatePayload(assignments []string) ([]byte, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("settings set requires at least one key=value")
	}

	doc := map[string]map[string]any{}
	for _, assignment := range assignments {
		before, value, ok := strings.Cut(assignment, "=")
		key := strings.ToLower(strings.TrimSpace(before))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", assignment)
		}

		section := ""
		if prefix, name, dotted := strings.Cut(key, "."); dotted {
			section, key = prefix, name
		}
		field, known := settingFields[key]
		if !known || (section != "" && section != field.section) {
			return nil, fmt.Errorf("unknown setting %q", strings.TrimSpace(before))
		}

		var parsed any
		switch field.kind {
		case settingBool:
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%s must be true or false", key)
			}
			parsed = b
		case settingInt:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer", key)
			}
			parsed = n
		default:
			parsed = value
		}

		if doc[field.section] == nil {
			doc[field.section] = map[string]any{}
		}
		doc[field.section][key] = parsed
	}
	return json.Marshal(doc)
}

func writeSettings(w io.Writer, value settings.Settings, format string) error {
	if format == outputFormatJSON {
		return printJSON(w, value)
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}

func printSettingsUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  translation-tools settings show [--format yaml|json] [--reveal] [--env .env]")
	fmt.Fprintln(os.Stderr, "  translation-tools settings set [--env .env] <key=value>...")
	fmt.Fprintln(os.Stderr, "  translation-tools settings path [--env .env]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Keys: baidu_app_id, baidu_secret_key, baidu_api_url, youdao_app_key,")
	fmt.Fprintln(os.Stderr, "  youdao_app_secret, youdao_api_url, llm_api_url, llm_api_key, llm_model_name,")
	fmt.Fprintln(os.Stderr, "  default_engine, default_from_lang, default_to_lang, show_word_detail, history_page_size")
}
