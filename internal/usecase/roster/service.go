package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"roster-bot/internal/domain"
	"roster-bot/internal/infra/metrics"
)

// Service выполняет полный цикл обработки адресованного сообщения:
// классификация намерения, выбор окна, выгрузка истории, свёртка в состав,
// форматирование и отправка ответа в чат.
type Service struct {
	classifier domain.IntentClassifier
	history    domain.HistoryProvider
	reducer    domain.RosterReducer
	poster     domain.ChatPoster
	anchor     time.Weekday
	minPlayers int
	now        func() time.Time
	log        zerolog.Logger
}

// Result — итог обработки для подтверждения вызывающей стороне.
type Result struct {
	Intent       domain.Intent
	Window       domain.TimeWindow
	MessageCount int
	Outcome      domain.RosterOutcome
}

// NewService создаёт сервис. nowFn нужен тестам; nil означает time.Now.
func NewService(classifier domain.IntentClassifier, history domain.HistoryProvider, reducer domain.RosterReducer, poster domain.ChatPoster, anchor time.Weekday, minPlayers int, nowFn func() time.Time, log zerolog.Logger) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		classifier: classifier,
		history:    history,
		reducer:    reducer,
		poster:     poster,
		anchor:     anchor,
		minPlayers: minPlayers,
		now:        nowFn,
		log:        log,
	}
}

// HandleMention обрабатывает одно адресованное боту сообщение.
// Шаги выполняются строго последовательно: каждый зависит от предыдущего.
func (s *Service) HandleMention(ctx context.Context, text string) (Result, error) {
	intent := s.classifier.Classify(ctx, text)
	window := ResolveWindow(s.now(), intent, s.anchor)
	result := Result{Intent: intent, Window: window}

	s.log.Debug().
		Str("intent", string(intent)).
		Time("window_start", window.Start).
		Time("window_end", window.End).
		Msg("окно разрешено")

	messages, err := s.history.FetchWindow(ctx, window)
	if err != nil {
		return result, fmt.Errorf("%w: история чата: %v", domain.ErrDelegateUnavailable, err)
	}
	result.MessageCount = len(messages)

	start := time.Now()
	outcome, err := s.reducer.Reduce(ctx, messages)
	metrics.RosterBuildSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return result, fmt.Errorf("свёртка состава: %w", err)
	}
	result.Outcome = outcome

	reply := FormatRoster(outcome, intent, s.minPlayers)
	if err := s.poster.Post(ctx, reply); err != nil {
		return result, fmt.Errorf("%w: отправка ответа: %v", domain.ErrDelegateUnavailable, err)
	}

	s.log.Info().
		Str("intent", string(intent)).
		Int("messages", result.MessageCount).
		Int("players", outcome.TotalCount).
		Msg("состав отправлен в чат")
	return result, nil
}
