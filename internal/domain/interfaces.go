package domain

import (
	"context"
	"time"
)

// IntentClassifier определяет намерение адресованного боту сообщения.
// Реализации не возвращают ошибок: любая неоднозначность или сбой
// классификации разрешается в DefaultIntent.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) Intent
}

// RosterReducer сворачивает упорядоченную историю чата в состав на игру.
// Сообщения передаются от старых к новым.
type RosterReducer interface {
	Reduce(ctx context.Context, messages []ChatMessage) (RosterOutcome, error)
}

// HistoryProvider выгружает сообщения группы, попавшие в окно времени,
// в хронологическом порядке.
type HistoryProvider interface {
	FetchWindow(ctx context.Context, window TimeWindow) ([]ChatMessage, error)
}

// ChatPoster отправляет текст в групповой чат.
type ChatPoster interface {
	Post(ctx context.Context, text string) error
}

// Cache используется для простых TTL-замков.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// ReportRepo сохраняет аудит обработки вебхуков.
type ReportRepo interface {
	SaveReport(ctx context.Context, report ProcessReport) error
}
