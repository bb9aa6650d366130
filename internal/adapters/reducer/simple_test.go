package reducer

import (
	"context"
	"testing"
	"time"

	"roster-bot/internal/domain"
)

func msg(id int64, sender, text string) domain.ChatMessage {
	return domain.ChatMessage{ID: id, SenderName: sender, Text: text, SentAt: time.Unix(1700000000+id*60, 0)}
}

func TestSimpleReduceLastWriteWins(t *testing.T) {
	r := NewSimple()
	messages := []domain.ChatMessage{
		msg(1, "Вася", "+"),
		msg(2, "Коля", "я в игре"),
		msg(3, "Коля", "парни, не смогу, пас"),
		msg(4, "Петя", "+2"),
	}

	outcome, err := r.Reduce(context.Background(), messages)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(outcome.Confirmed) != 1 || outcome.Confirmed[0] != "Вася" {
		t.Fatalf("ожидали только Васю в подтверждённых, получили %v", outcome.Confirmed)
	}
	if len(outcome.Withdrawn) != 1 || outcome.Withdrawn[0] != "Коля" {
		t.Fatalf("последнее слово Коли — отказ, получили %v", outcome.Withdrawn)
	}
	if len(outcome.PlusOnes) != 1 || outcome.PlusOnes[0].Inviter != "Петя" || outcome.PlusOnes[0].Guests != 2 {
		t.Fatalf("ожидали двух гостей от Пети, получили %v", outcome.PlusOnes)
	}
	if outcome.TotalCount != 3 {
		t.Fatalf("ожидали итог 3, получили %d", outcome.TotalCount)
	}
}

func TestSimpleReduceCancellation(t *testing.T) {
	r := NewSimple()
	messages := []domain.ChatMessage{
		msg(1, "Вася", "+"),
		msg(2, "Админ", "Игра отменяется, поле залило"),
	}

	outcome, err := r.Reduce(context.Background(), messages)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if outcome.Status != domain.GameCancelled {
		t.Fatalf("ожидали отмену игры, получили %s", outcome.Status)
	}
	if outcome.CancelReason == "" {
		t.Fatal("ожидали текст причины отмены")
	}
}

func TestSimpleReduceEmptyHistory(t *testing.T) {
	outcome, err := NewSimple().Reduce(context.Background(), nil)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if outcome.TotalCount != 0 || outcome.Status != domain.GameActive {
		t.Fatalf("ожидали нулевой результат, получили %+v", outcome)
	}
}
