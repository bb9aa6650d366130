package roster

import (
	"fmt"
	"strings"

	"roster-bot/internal/domain"
)

// FormatRoster формирует текстовое представление состава для отправки в чат.
// Порядок секций фиксированный: заголовок окна, подтверждённые игроки,
// гости «+1» (если есть), отказавшиеся (если есть), строка статуса.
func FormatRoster(outcome domain.RosterOutcome, intent domain.Intent, minPlayers int) string {
	if minPlayers <= 0 {
		minPlayers = 10
	}

	var sections []string
	sections = append(sections, "⚽ "+windowHeader(intent))
	sections = append(sections, confirmedSection(outcome.Confirmed))

	if len(outcome.PlusOnes) > 0 {
		sections = append(sections, plusOnesSection(outcome.PlusOnes))
	}
	if len(outcome.Withdrawn) > 0 {
		sections = append(sections, withdrawnSection(outcome.Withdrawn))
	}

	sections = append(sections, statusLine(outcome, minPlayers))
	return strings.Join(sections, "\n\n")
}

func windowHeader(intent domain.Intent) string {
	if intent == domain.IntentLastWeek {
		return "Состав за прошлую неделю"
	}
	return "Состав на эту неделю"
}

func confirmedSection(names []string) string {
	if len(names) == 0 {
		return "Играют: пока никто"
	}
	var b strings.Builder
	b.WriteString("Играют:")
	for i, name := range names {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, name))
	}
	return b.String()
}

func plusOnesSection(plusOnes []domain.PlusOne) string {
	var b strings.Builder
	b.WriteString("Плюс гости:")
	for _, po := range plusOnes {
		b.WriteString(fmt.Sprintf("\n• %s +%d", po.Inviter, po.Guests))
	}
	return b.String()
}

func withdrawnSection(names []string) string {
	var b strings.Builder
	b.WriteString("Не смогут:")
	for _, name := range names {
		b.WriteString("\n• " + name)
	}
	return b.String()
}

func statusLine(outcome domain.RosterOutcome, minPlayers int) string {
	if outcome.Status == domain.GameCancelled {
		line := "❌ Игра отменена."
		if outcome.CancelReason != "" {
			line += " Причина: " + outcome.CancelReason + "."
		}
		if outcome.WhoseFault != "" {
			line += " Виноват: " + outcome.WhoseFault + "."
		}
		return line
	}
	if outcome.TotalCount >= minPlayers {
		return fmt.Sprintf("Итого: %d. Состав набран, играем! ✅", outcome.TotalCount)
	}
	missing := minPlayers - outcome.TotalCount
	return fmt.Sprintf("Итого: %d. %s.", outcome.TotalCount, needMorePlayers(missing))
}

// needMorePlayers согласует «нужен ещё N игрок(а/ов)» по-русски.
func needMorePlayers(n int) string {
	form := "игроков"
	verb := "Нужно"
	switch {
	case n%10 == 1 && n%100 != 11:
		form = "игрок"
		verb = "Нужен"
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		form = "игрока"
	}
	return fmt.Sprintf("%s ещё %d %s", verb, n, form)
}
