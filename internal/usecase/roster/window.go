package roster

import (
	"time"

	"roster-bot/internal/domain"
)

// ResolveWindow вычисляет окно времени для намерения относительно опорного
// дня недели. Берётся последнее наступление опорного дня не позже "сейчас";
// если сегодня опорный день, опорным считается сегодняшний день.
//
// «Эта неделя» — [опорный день 00:00, конец текущего дня),
// «прошлая неделя» — [опорный день −7 суток, опорный день 00:00).
// Окна стыкуются без зазора и пересечения. Вопросы не про состав
// разрешаются в окно текущей недели.
func ResolveWindow(now time.Time, intent domain.Intent, anchor time.Weekday) domain.TimeWindow {
	back := (int(now.Weekday()) - int(anchor) + 7) % 7
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	anchorDay := today.AddDate(0, 0, -back)

	if intent == domain.IntentLastWeek {
		return domain.TimeWindow{
			Start: anchorDay.AddDate(0, 0, -7),
			End:   anchorDay,
			Label: domain.WindowLastWeek,
		}
	}
	return domain.TimeWindow{
		Start: anchorDay,
		End:   today.AddDate(0, 0, 1),
		Label: domain.WindowThisWeek,
	}
}
