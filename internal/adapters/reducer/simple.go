package reducer

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"roster-bot/internal/domain"
)

// Simple — эвристический редьюсер по ключевым словам. Повторяет семантику
// LLM-редьюсера на простых сообщениях: строгий хронологический порядок,
// последнее слово человека о своём участии — решающее.
// Используется в локальной разработке и тестах.
type Simple struct{}

// NewSimple создаёт редьюсер.
func NewSimple() *Simple {
	return &Simple{}
}

var _ domain.RosterReducer = (*Simple)(nil)

var plusGuestsRe = regexp.MustCompile(`\+\s*(\d+)`)

var (
	inMarkers       = []string{"я в игре", "играю", "буду", "записывай"}
	outMarkers      = []string{"не смогу", "не буду", "пас", "выпадаю", "минус"}
	guestMarkers    = []string{"+1", "плюс один", "возьму друга", "со мной ещё"}
	cancelledPhrase = []string{"игра отменяется", "игры не будет", "отбой", "не набралось"}
)

type participation int

const (
	unknown participation = iota
	confirmed
	withdrawn
)

// Reduce сворачивает историю по ключевым словам.
func (s *Simple) Reduce(_ context.Context, messages []domain.ChatMessage) (domain.RosterOutcome, error) {
	state := make(map[string]participation)
	order := make([]string, 0)
	guests := make(map[string]int)
	guestOrder := make([]string, 0)
	outcome := domain.RosterOutcome{Status: domain.GameActive}

	record := func(name string, p participation) {
		if _, seen := state[name]; !seen {
			order = append(order, name)
		}
		state[name] = p
	}

	for _, msg := range messages {
		name := strings.TrimSpace(msg.SenderName)
		if name == "" {
			continue
		}
		lower := strings.ToLower(msg.Text)
		trimmed := strings.TrimSpace(msg.Text)

		for _, phrase := range cancelledPhrase {
			if strings.Contains(lower, phrase) {
				outcome.Status = domain.GameCancelled
				outcome.CancelReason = trimmed
			}
		}

		switch {
		case hasGuestMarker(lower):
			n := 1
			if m := plusGuestsRe.FindStringSubmatch(lower); m != nil {
				if parsed, err := strconv.Atoi(m[1]); err == nil && parsed > 1 {
					n = parsed
				}
			}
			if _, seen := guests[name]; !seen {
				guestOrder = append(guestOrder, name)
			}
			guests[name] = n
		case trimmed == "+" || containsAny(lower, inMarkers):
			record(name, confirmed)
		case trimmed == "-" || containsAny(lower, outMarkers):
			record(name, withdrawn)
		}
	}

	for _, name := range order {
		switch state[name] {
		case confirmed:
			outcome.Confirmed = append(outcome.Confirmed, name)
		case withdrawn:
			outcome.Withdrawn = append(outcome.Withdrawn, name)
		}
	}
	for _, name := range guestOrder {
		outcome.PlusOnes = append(outcome.PlusOnes, domain.PlusOne{Inviter: name, Guests: guests[name]})
	}

	outcome.Normalize()
	return outcome, nil
}

func hasGuestMarker(lower string) bool {
	if containsAny(lower, guestMarkers) {
		return true
	}
	if m := plusGuestsRe.FindStringSubmatch(lower); m != nil {
		return true
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
