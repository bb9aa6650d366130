package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

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

func newTestClassifier(client chatClient) *OpenAI {
	return NewOpenAI(client, "test-model", time.Second, zerolog.Nop())
}

func TestClassifyLastWeek(t *testing.T) {
	c := newTestClassifier(&fakeChatClient{content: `{"intent": "last_week"}`})
	if got := c.Classify(context.Background(), "бот, кто играл на прошлой неделе?"); got != domain.IntentLastWeek {
		t.Fatalf("ожидали last_week, получили %s", got)
	}
}

func TestClassifyFallsBackOnTransportError(t *testing.T) {
	c := newTestClassifier(&fakeChatClient{err: errors.New("timeout")})
	if got := c.Classify(context.Background(), "бот, состав?"); got != domain.DefaultIntent {
		t.Fatalf("ожидали намерение по умолчанию, получили %s", got)
	}
}

func TestClassifyFallsBackOnEmptyChoices(t *testing.T) {
	c := newTestClassifier(&fakeChatClient{})
	if got := c.Classify(context.Background(), "бот, состав?"); got != domain.DefaultIntent {
		t.Fatalf("ожидали намерение по умолчанию, получили %s", got)
	}
}

func TestClassifyFallsBackOnBadJSON(t *testing.T) {
	c := newTestClassifier(&fakeChatClient{content: "это не JSON"})
	if got := c.Classify(context.Background(), "бот, состав?"); got != domain.DefaultIntent {
		t.Fatalf("ожидали намерение по умолчанию, получили %s", got)
	}
}

func TestClassifyFallsBackOnUnknownIntent(t *testing.T) {
	c := newTestClassifier(&fakeChatClient{content: `{"intent": "next_year"}`})
	if got := c.Classify(context.Background(), "бот, состав?"); got != domain.DefaultIntent {
		t.Fatalf("ожидали намерение по умолчанию, получили %s", got)
	}
}

func TestClassifySkipsDelegateOnEmptyText(t *testing.T) {
	client := &fakeChatClient{content: `{"intent": "last_week"}`}
	c := newTestClassifier(client)
	if got := c.Classify(context.Background(), "   "); got != domain.DefaultIntent {
		t.Fatalf("ожидали намерение по умолчанию, получили %s", got)
	}
	if client.calls != 0 {
		t.Fatal("пустой текст не должен вызывать делегата")
	}
}
