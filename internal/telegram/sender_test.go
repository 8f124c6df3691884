package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessageShortText(t *testing.T) {
	parts := SplitMessage("hello", 4096)
	if len(parts) != 1 || parts[0] != "hello" {
		t.Errorf("SplitMessage = %v, want single unchanged part", parts)
	}
}

func TestSplitMessageLongText(t *testing.T) {
	text := strings.Repeat("a", 10000)
	parts := SplitMessage(text, 4096)

	if len(parts) < 3 {
		t.Fatalf("got %d parts, want at least 3", len(parts))
	}
	var total int
	for i, p := range parts {
		if len([]rune(p)) > 4096 {
			t.Errorf("part %d has %d runes, exceeds limit", i, len([]rune(p)))
		}
		total += len([]rune(p))
	}
	if total != 10000 {
		t.Errorf("total runes = %d, want 10000 (no content lost)", total)
	}
}

func TestSplitMessagePrefersNewlineBoundary(t *testing.T) {
	line := strings.Repeat("x", 90)
	text := strings.Join([]string{line, line, line}, "\n")
	parts := SplitMessage(text, 100)

	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3: %q", len(parts), parts)
	}
	for i, p := range parts {
		if p != line {
			t.Errorf("part %d = %q, want a full line", i, p)
		}
	}
}
