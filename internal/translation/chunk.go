package translation

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the per-call character budget used for long documents.
const DefaultChunkSize = 5000

// SplitTextChunks splits text into pieces of at most maxSize characters.
//
// Text that already fits is returned as the only chunk, even when empty. Longer
// text is split on newlines and paragraphs are packed greedily; the packing
// budget counts one separator per paragraph. A paragraph longer than maxSize is
// hard-sliced into maxSize pieces and emitted on its own.
func SplitTextChunks(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	chunks := make([]string, 0, utf8.RuneCountInString(text)/maxSize+1)
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		currentLen = 0
	}

	for _, paragraph := range strings.Split(text, "\n") {
		paragraphLen := utf8.RuneCountInString(paragraph)

		if currentLen+paragraphLen+1 <= maxSize {
			if current.Len() > 0 {
				current.WriteByte('\n')
				currentLen++
			}
			current.WriteString(paragraph)
			currentLen += paragraphLen
			continue
		}

		flush()
		if paragraphLen > maxSize {
			chunks = append(chunks, sliceRunes(paragraph, maxSize)...)
			continue
		}
		current.WriteString(paragraph)
		currentLen = paragraphLen
	}
	flush()

	return chunks
}

func sliceRunes(text string, size int) []string {
	runes := []rune(text)
	pieces := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
