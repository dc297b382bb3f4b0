package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Pluto731/Translation-tools/internal/cli"
	"github.com/Pluto731/Translation-tools/internal/reader"
	"github.com/Pluto731/Translation-tools/internal/translation"
)

type documentFunc func(ctx context.Context, rt *runtime, from, to string, progress func(translation.Progress)) (translation.DocumentResult, error)

func runFile(args []string) int {
	return runDocument("file", args, func(fs *flag.FlagSet) (string, error) {
		if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
			return "", fmt.Errorf("file requires exactly one path")
		}
		path := strings.TrimSpace(fs.Arg(0))
		if !reader.IsSupported(path) {
			return "", fmt.Errorf("unsupported file type %q (supported: %s)", path, strings.Join(reader.SupportedExtensions(), ", "))
		}
		return path, nil
	}, func(path string) documentFunc {
		return func(ctx context.Context, rt *runtime, from, to string, progress func(translation.Progress)) (translation.DocumentResult, error) {
			return rt.files.TranslateFile(ctx, path, from, to, progress)
		}
	})
}

func runURL(args []string) int {
	return runDocument("url", args, func(fs *flag.FlagSet) (string, error) {
		if fs.NArg() != 1 {
			return "", fmt.Errorf("url requires exactly one address")
		}
		pageURL := strings.TrimSpace(fs.Arg(0))
		if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
			return "", fmt.Errorf("url must start with http:// or https://")
		}
		return pageURL, nil
	}, func(pageURL string) documentFunc {
		return func(ctx context.Context, rt *runtime, from, to string, progress func(translation.Progress)) (translation.DocumentResult, error) {
			return rt.files.TranslateURL(ctx, pageURL, from, to, progress)
		}
	})
}

// runDocument drives the chunked translation commands. Progress goes to
// stderr so stdout carries only the translation.
func runDocument(
	name string,
	args []string,
	target func(fs *flag.FlagSet) (string, error),
	build func(target string) documentFunc,
) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Minute, "Command timeout")
	langs := addLanguageFlags(fs)
	out := fs.String("out", "", "Write the translation to this file instead of stdout")
	quiet := fs.Bool("quiet", false, "Suppress progress output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	value, err := target(fs)
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

	progress := func(p translation.Progress) {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Translating chunk %d/%d...\n", p.Current, p.Total)
		}
	}

	result, err := build(value)(ctx, rt, from, to, progress)
	if err != nil {
		switch {
		case errors.Is(err, reader.ErrEmptyDocument):
			fmt.Fprintf(os.Stderr, "Nothing to translate: %v\n", err)
		case errors.Is(err, translation.ErrNoEngine):
			fmt.Fprintln(os.Stderr, "No translation engine is configured")
		default:
			fmt.Fprintf(os.Stderr, "Translate %s failed: %v\n", name, err)
		}
		return 1
	}

	if err := writeOutput(*out, result.Text); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "%s translated: chunks=%d failed=%d engine=%s\n", name, result.Chunks, result.FailedChunks, rt.engines.CurrentName())
	}
	if result.FailedChunks > 0 {
		return 1
	}
	return 0
}
