package translation

import "testing"

func TestIsSingleWord(t *testing.T) {
	t.Parallel()

	words := []string{"hello", "apple-pie", "  Apple  ", "你好", "中国", "书"}
	for _, text := range words {
		if !IsSingleWord(text) {
			t.Fatalf("expected %q to be a single word", text)
		}
	}

	phrases := []string{"hello world", "你好世界", "", "   ", "hello123", "中国人民", "a-b-c", "hello你好"}
	for _, text := range phrases {
		if IsSingleWord(text) {
			t.Fatalf("did not expect %q to be a single word", text)
		}
	}
}
