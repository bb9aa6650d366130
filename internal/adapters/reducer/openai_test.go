package reducer

import (
	"context"
	"errors"
	"testing"
	"time"

	"roster-bot/internal/domain"
	openai "roster-bot/internal/infra/openai"
)

type fakeChatClient struct {
	content string
	err     error
	calls   int
}

func (f *fakeChatClient) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if f.content == "" {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: f.content}}},
	}, nil
}

func sampleMessages() []domain.ChatMessage {
	return []domain.ChatMessage{
		{ID: 1, SenderName: "Вася", Text: "+", SentAt: time.Unix(1700000000, 0)},
		{ID: 2, SenderName: "Петя", Text: "+1", SentAt: time.Unix(1700000100, 0)},
	}
}

func newTestReducer(client chatClient) *OpenAI {
	return NewOpenAI(client, "test-model", time.Second)
}

func TestReduceEmptyHistorySkipsDelegate(t *testing.T) {
	client := &fakeChatClient{content: `{"confirmed_players": ["Вася"]}`}
	r := newTestReducer(client)

	outcome, err := r.Reduce(context.Background(), nil)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if client.calls != 0 {
		t.Fatal("пустая история не должна вызывать делегата")
	}
	if len(outcome.Confirmed) != 0 || len(outcome.PlusOnes) != 0 || len(outcome.Withdrawn) != 0 {
		t.Fatalf("ожидали пустой состав, получили %+v", outcome)
	}
	if outcome.Status != domain.GameActive || outcome.TotalCount != 0 {
		t.Fatalf("ожидали active и итог 0, получили %s, %d", outcome.Status, outcome.TotalCount)
	}
}

func TestReduceRecountsDelegateTotal(t *testing.T) {
	client := &fakeChatClient{content: `{
		"confirmed_players": ["Вася", "Петя"],
		"plus_ones": [{"inviter_name": "Петя", "guest_count": 2}],
		"game_status": "active",
		"total_count": 42
	}`}
	r := newTestReducer(client)

	outcome, err := r.Reduce(context.Background(), sampleMessages())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if outcome.TotalCount != 4 {
		t.Fatalf("итог делегата не должен приниматься на веру: ожидали 4, получили %d", outcome.TotalCount)
	}
}

func TestReduceWithdrawnExcludesConfirmed(t *testing.T) {
	client := &fakeChatClient{content: `{
		"confirmed_players": ["Вася", "Коля"],
		"withdrawn_players": ["Коля"]
	}`}
	r := newTestReducer(client)

	outcome, err := r.Reduce(context.Background(), sampleMessages())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(outcome.Confirmed) != 1 || outcome.Confirmed[0] != "Вася" {
		t.Fatalf("отказавшийся не должен числиться в подтверждённых: %v", outcome.Confirmed)
	}
	if len(outcome.Withdrawn) != 1 || outcome.Withdrawn[0] != "Коля" {
		t.Fatalf("ожидали Колю среди отказавшихся: %v", outcome.Withdrawn)
	}
}

func TestReduceDefaultsMissingFields(t *testing.T) {
	client := &fakeChatClient{content: `{"confirmed_players": ["Вася"]}`}
	r := newTestReducer(client)

	outcome, err := r.Reduce(context.Background(), sampleMessages())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if outcome.Status != domain.GameActive {
		t.Fatalf("отсутствующий статус должен сводиться к active, получили %s", outcome.Status)
	}
	if outcome.PlusOnes == nil || outcome.Withdrawn == nil {
		t.Fatal("отсутствующие списки должны нормализоваться в пустые")
	}
	if outcome.CancelReason != "" || outcome.WhoseFault != "" {
		t.Fatal("необязательные поля должны оставаться пустыми")
	}
}

func TestReduceSalvagesWrappedJSON(t *testing.T) {
	client := &fakeChatClient{content: "Вот состав:\n```json\n{\"confirmed_players\": [\"Вася\"]}\n```"}
	r := newTestReducer(client)

	outcome, err := r.Reduce(context.Background(), sampleMessages())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(outcome.Confirmed) != 1 || outcome.Confirmed[0] != "Вася" {
		t.Fatalf("ожидали извлечённый из обёртки состав, получили %v", outcome.Confirmed)
	}
}

func TestReduceMalformedOutput(t *testing.T) {
	client := &fakeChatClient{content: "извините, не получилось"}
	r := newTestReducer(client)

	_, err := r.Reduce(context.Background(), sampleMessages())
	if !errors.Is(err, domain.ErrMalformedOutput) {
		t.Fatalf("ожидали ErrMalformedOutput, получили %v", err)
	}
}

func TestReduceDelegateUnavailable(t *testing.T) {
	r := newTestReducer(&fakeChatClient{err: errors.New("connection refused")})

	_, err := r.Reduce(context.Background(), sampleMessages())
	if !errors.Is(err, domain.ErrDelegateUnavailable) {
		t.Fatalf("ожидали ErrDelegateUnavailable, получили %v", err)
	}
}

func TestReduceEmptyChoices(t *testing.T) {
	r := newTestReducer(&fakeChatClient{})

	_, err := r.Reduce(context.Background(), sampleMessages())
	if !errors.Is(err, domain.ErrDelegateUnavailable) {
		t.Fatalf("ожидали ErrDelegateUnavailable при пустом ответе, получили %v", err)
	}
}
