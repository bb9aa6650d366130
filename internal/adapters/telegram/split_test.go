package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessageShortText(t *testing.T) {
	parts := SplitMessage("  всего одна строка  ")
	if len(parts) != 1 || parts[0] != "всего одна строка" {
		t.Fatalf("ожидали одну обрезанную часть, получили %v", parts)
	}
}

func TestSplitMessageEmpty(t *testing.T) {
	if parts := SplitMessage("   \n  "); parts != nil {
		t.Fatalf("пустой текст не должен давать частей, получили %v", parts)
	}
}

func TestSplitMessagePrefersLineBoundaries(t *testing.T) {
	line := strings.Repeat("а", 1500)
	text := line + "\n" + line + "\n" + line

	parts := SplitMessage(text)
	if len(parts) != 2 {
		t.Fatalf("ожидали 2 части, получили %d", len(parts))
	}
	for i, part := range parts {
		if len([]rune(part)) > messageLimit {
			t.Fatalf("часть %d длиннее лимита: %d", i, len([]rune(part)))
		}
		if strings.HasPrefix(part, "\n") || strings.HasSuffix(part, "\n") {
			t.Fatalf("часть %d не должна начинаться или заканчиваться переводом строки", i)
		}
	}
	if got := strings.Count(parts[0], "а"); got != 3000 {
		t.Fatalf("первая часть должна содержать две строки, получили %d символов", got)
	}
}

func TestSplitMessageHardBreaksLongLine(t *testing.T) {
	text := strings.Repeat("б", messageLimit+100)
	parts := SplitMessage(text)
	if len(parts) != 2 {
		t.Fatalf("ожидали 2 части, получили %d", len(parts))
	}
	if len([]rune(parts[0])) != messageLimit {
		t.Fatalf("первая часть должна быть ровно в лимит, получили %d", len([]rune(parts[0])))
	}
}
