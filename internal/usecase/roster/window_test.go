package roster

import (
	"testing"
	"time"

	"roster-bot/internal/domain"
)

func TestResolveWindowThisWeekAllWeekdays(t *testing.T) {
	anchor := time.Wednesday
	// 2025-11-03 — понедельник; проверяем все дни недели подряд.
	base := time.Date(2025, 11, 3, 15, 30, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		now := base.AddDate(0, 0, i)
		window := ResolveWindow(now, domain.IntentThisWeek, anchor)

		if window.Start.Weekday() != anchor {
			t.Fatalf("%s: начало окна должно падать на опорный день, получили %s", now.Weekday(), window.Start.Weekday())
		}
		if window.Start.After(now) {
			t.Fatalf("%s: начало окна не должно быть позже текущего момента", now.Weekday())
		}
		if now.Sub(window.Start) >= 7*24*time.Hour {
			t.Fatalf("%s: опорный день должен быть последним перед текущим моментом", now.Weekday())
		}
		if !window.Start.Before(window.End) {
			t.Fatalf("%s: нарушен инвариант Start < End", now.Weekday())
		}
		if !window.Contains(now) {
			t.Fatalf("%s: текущий момент должен попадать в окно этой недели", now.Weekday())
		}
	}
}

func TestResolveWindowOnAnchorDay(t *testing.T) {
	// 2025-11-05 — среда, опорный день: сдвиг назад должен быть нулевым.
	now := time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC)
	window := ResolveWindow(now, domain.IntentThisWeek, time.Wednesday)

	wantStart := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	if !window.Start.Equal(wantStart) {
		t.Fatalf("ожидали начало окна %s, получили %s", wantStart, window.Start)
	}
}

func TestResolveWindowLastWeekAdjacent(t *testing.T) {
	anchor := time.Wednesday
	now := time.Date(2025, 11, 7, 20, 0, 0, 0, time.UTC) // пятница
	thisWeek := ResolveWindow(now, domain.IntentThisWeek, anchor)
	lastWeek := ResolveWindow(now, domain.IntentLastWeek, anchor)

	if !lastWeek.End.Equal(thisWeek.Start) {
		t.Fatalf("окна должны стыковаться: конец прошлой %s, начало этой %s", lastWeek.End, thisWeek.Start)
	}
	if lastWeek.End.Sub(lastWeek.Start) != 7*24*time.Hour {
		t.Fatalf("прошлая неделя должна длиться ровно 7 суток, получили %s", lastWeek.End.Sub(lastWeek.Start))
	}
	boundary := thisWeek.Start
	if lastWeek.Contains(boundary) {
		t.Fatal("граница не должна входить в прошлую неделю (полуинтервал)")
	}
	if !thisWeek.Contains(boundary) {
		t.Fatal("граница должна входить в эту неделю")
	}
}

func TestResolveWindowGenericQuestionUsesThisWeek(t *testing.T) {
	now := time.Date(2025, 11, 7, 20, 0, 0, 0, time.UTC)
	window := ResolveWindow(now, domain.IntentGenericQuestion, time.Wednesday)
	if window.Label != domain.WindowThisWeek {
		t.Fatalf("ожидали окно этой недели, получили %s", window.Label)
	}
}
