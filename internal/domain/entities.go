package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent — закрытый набор намерений триггерного сообщения.
type Intent string

const (
	// IntentThisWeek — вопрос о составе на текущую неделю.
	IntentThisWeek Intent = "this_week"
	// IntentLastWeek — вопрос о составе за прошлую неделю.
	IntentLastWeek Intent = "last_week"
	// IntentGenericQuestion — вопрос не про состав.
	IntentGenericQuestion Intent = "generic_question"
)

// DefaultIntent используется при любой неоднозначности классификации.
const DefaultIntent = IntentThisWeek

// ParseIntent проверяет, что значение входит в закрытый набор.
// При невалидном значении возвращает DefaultIntent и false.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentThisWeek:
		return IntentThisWeek, true
	case IntentLastWeek:
		return IntentLastWeek, true
	case IntentGenericQuestion:
		return IntentGenericQuestion, true
	}
	return DefaultIntent, false
}

// ChatMessage — сообщение группового чата. Неизменяемо после выгрузки.
type ChatMessage struct {
	ID         int64
	SenderID   int64
	SenderName string
	Text       string
	SentAt     time.Time
}

// WindowLabel именует разрешённое окно времени.
type WindowLabel string

const (
	// WindowThisWeek — от последнего опорного дня до текущего момента.
	WindowThisWeek WindowLabel = "this_week"
	// WindowLastWeek — предыдущий полный недельный интервал.
	WindowLastWeek WindowLabel = "last_week"
)

// TimeWindow — полуинтервал [Start, End). Инвариант: Start < End.
type TimeWindow struct {
	Start time.Time
	End   time.Time
	Label WindowLabel
}

// Contains сообщает, попадает ли момент в окно.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// GameStatus — статус игры после свёртки истории.
type GameStatus string

const (
	// GameActive — игра в силе.
	GameActive GameStatus = "active"
	// GameCancelled — игра отменена.
	GameCancelled GameStatus = "cancelled"
)

// PlusOne — гости, приглашённые участником.
type PlusOne struct {
	Inviter string
	Guests  int
}

// RosterOutcome — результат свёртки истории чата в состав на игру.
// Живёт в рамках одного запроса и нигде не сохраняется.
type RosterOutcome struct {
	Confirmed    []string
	PlusOnes     []PlusOne
	Withdrawn    []string
	Status       GameStatus
	CancelReason string
	WhoseFault   string
	TotalCount   int
}

// Normalize приводит ответ делегата к инвариантам состава:
// списки без nil и пустых имён, статус по умолчанию active, количество
// гостей не меньше 1, отказавшийся не числится среди подтверждённых,
// TotalCount всегда пересчитывается локально и не берётся из ответа.
func (r *RosterOutcome) Normalize() {
	r.Confirmed = cleanNames(r.Confirmed)
	r.Withdrawn = cleanNames(r.Withdrawn)

	if r.Status != GameCancelled {
		r.Status = GameActive
	}
	r.CancelReason = strings.TrimSpace(r.CancelReason)
	r.WhoseFault = strings.TrimSpace(r.WhoseFault)

	withdrawn := make(map[string]struct{}, len(r.Withdrawn))
	for _, name := range r.Withdrawn {
		withdrawn[strings.ToLower(name)] = struct{}{}
	}
	confirmed := make([]string, 0, len(r.Confirmed))
	for _, name := range r.Confirmed {
		if _, out := withdrawn[strings.ToLower(name)]; out {
			continue
		}
		confirmed = append(confirmed, name)
	}
	r.Confirmed = confirmed

	plusOnes := make([]PlusOne, 0, len(r.PlusOnes))
	for _, po := range r.PlusOnes {
		po.Inviter = strings.TrimSpace(po.Inviter)
		if po.Inviter == "" {
			continue
		}
		if po.Guests < 1 {
			po.Guests = 1
		}
		plusOnes = append(plusOnes, po)
	}
	r.PlusOnes = plusOnes

	total := len(r.Confirmed)
	for _, po := range r.PlusOnes {
		total += po.Guests
	}
	r.TotalCount = total
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// ProcessReport — строка аудита обработанного вебхука.
type ProcessReport struct {
	ID           uuid.UUID
	UpdateID     int
	Intent       Intent
	MessageCount int
	PlayerCount  int
	Status       string
	Error        string
	CreatedAt    time.Time
}
