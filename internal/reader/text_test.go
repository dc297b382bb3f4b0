package reader

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestCleanTextCollapsesWhitespaceAndDropsBlankLines(t *testing.T) {
	input := "  First   paragraph \n\n Second\tparagraph \r\n\r\nThird line "
	got := CleanText(input)
	want := "First paragraph\nSecond paragraph\nThird line"
	if got != want {
		t.Fatalf("CleanText mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestTruncateText(t *testing.T) {
	input := "abcdefghijklmnopqrstuvwxyz"

	got, truncated := TruncateText(input, 10)
	if !truncated {
		t.Fatalf("expected truncated=true")
	}
	if got != "abcdefghi…" {
		t.Fatalf("unexpected truncated text: %q", got)
	}

	full, wasTruncated := TruncateText("short", 10)
	if wasTruncated {
		t.Fatalf("expected truncated=false for short text")
	}
	if full != "short" {
		t.Fatalf("unexpected short text: %q", full)
	}
}

func TestDecodeTextStripsBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("你好 world")...)
	if got := decodeText(raw); got != "你好 world" {
		t.Fatalf("unexpected decoded text: %q", got)
	}
}

func TestDecodeTextDetectsGB18030(t *testing.T) {
	source := strings.Repeat("今天天气很好，我们一起去公园散步，然后在湖边喝茶聊天。", 8)
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String(source)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	got := decodeText([]byte(encoded))
	if got != source {
		t.Fatalf("unexpected decoded text: %q", got)
	}
}
