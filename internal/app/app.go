package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "translate":
		return runTranslate(args[1:])
	case "lookup":
		return runLookup(args[1:])
	case "file":
		return runFile(args[1:])
	case "url":
		return runURL(args[1:])
	case "detect":
		return runDetect(args[1:])
	case "engines":
		return runEngines(args[1:])
	case "history":
		return runHistory(args[1:])
	case "settings":
		return runSettings(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "translation-tools CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  translation-tools <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  translate  Translate text from arguments or stdin")
	fmt.Fprintln(os.Stderr, "  lookup     Look up a single word")
	fmt.Fprintln(os.Stderr, "  file       Translate a .txt, .md, .pdf, .docx or .html file")
	fmt.Fprintln(os.Stderr, "  url        Translate the readable text of a web page")
	fmt.Fprintln(os.Stderr, "  detect     Detect the language of text")
	fmt.Fprintln(os.Stderr, "  engines    List engines or choose the default one")
	fmt.Fprintln(os.Stderr, "  history    List, export, delete or clear translation history")
	fmt.Fprintln(os.Stderr, "  settings   Show or change stored settings")
	fmt.Fprintln(os.Stderr, "  serve      Start the HTTP API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"translation-tools <command> -h\" for command-specific flags.")
}
