package classifier

import (
	"context"
	"strings"

	"roster-bot/internal/domain"
)

// Simple — эвристический классификатор по ключевым словам.
// Используется в локальной разработке и тестах вместо LLM.
type Simple struct{}

// NewSimple создаёт классификатор.
func NewSimple() *Simple {
	return &Simple{}
}

var _ domain.IntentClassifier = (*Simple)(nil)

var lastWeekMarkers = []string{"прошл", "было", "играли", "last week"}

var rosterMarkers = []string{"кто", "сколько", "состав", "игра", "плюс", "минус"}

// Classify определяет намерение по ключевым словам.
func (s *Simple) Classify(_ context.Context, text string) domain.Intent {
	lower := strings.ToLower(text)
	for _, marker := range lastWeekMarkers {
		if strings.Contains(lower, marker) {
			return domain.IntentLastWeek
		}
	}
	for _, marker := range rosterMarkers {
		if strings.Contains(lower, marker) {
			return domain.IntentThisWeek
		}
	}
	if strings.Contains(lower, "?") {
		return domain.IntentGenericQuestion
	}
	return domain.DefaultIntent
}
