package classifier

import (
	"context"
	"testing"

	"roster-bot/internal/domain"
)

func TestSimpleClassify(t *testing.T) {
	c := NewSimple()
	cases := map[string]domain.Intent{
		"бот, кто играл на прошлой неделе?": domain.IntentLastWeek,
		"бот, кто играет в среду?":          domain.IntentThisWeek,
		"бот, во сколько начало?":           domain.IntentThisWeek,
		"бот, ты живой?":                    domain.IntentGenericQuestion,
		"бот":                               domain.DefaultIntent,
	}
	for text, want := range cases {
		if got := c.Classify(context.Background(), text); got != want {
			t.Fatalf("Classify(%q): получили %s, ожидали %s", text, got, want)
		}
	}
}
