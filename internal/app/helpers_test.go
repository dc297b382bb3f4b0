package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	got, err := parseOutputFormat(" JSON ", outputFormatText, outputFormatText, outputFormatJSON)
	if err != nil || got != outputFormatJSON {
		t.Fatalf("parse = %q, %v", got, err)
	}
	got, err = parseOutputFormat("", outputFormatText, outputFormatText, outputFormatJSON)
	if err != nil || got != outputFormatText {
		t.Fatalf("default = %q, %v", got, err)
	}
	if _, err := parseOutputFormat("xml", outputFormatText, outputFormatText, outputFormatJSON); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestTruncateForTable(t *testing.T) {
	t.Parallel()

	if got := truncateForTable("hello\n  world", 20); got != "hello world" {
		t.Fatalf("unexpected collapse: %q", got)
	}
	if got := truncateForTable("你好世界你好世界", 5); got != "你好..." {
		t.Fatalf("unexpected rune truncation: %q", got)
	}
	if got := truncateForTable("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected short truncation: %q", got)
	}
}

func TestTextArgumentReadsStdin(t *testing.T) {
	original := stdin
	t.Cleanup(func() { stdin = original })

	stdin = strings.NewReader("from a pipe\n")
	got, err := textArgument([]string{"-"})
	if err != nil || got != "from a pipe" {
		t.Fatalf("stdin text = %q, %v", got, err)
	}

	got, err = textArgument([]string{"hello", "world"})
	if err != nil || got != "hello world" {
		t.Fatalf("args text = %q, %v", got, err)
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeTable(&buf, []string{"ID", "NAME"}, [][]string{{"1", "baidu"}}); err != nil {
		t.Fatalf("write table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "1 ") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
}
