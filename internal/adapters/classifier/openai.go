package classifier

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"roster-bot/internal/domain"
	openai "roster-bot/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI классифицирует намерение через Chat Completions.
// Любой сбой — сетевой, пустой ответ, нечитаемый JSON, значение вне набора —
// разрешается в намерение по умолчанию: ошибка классификации не должна
// прерывать видимый пользователю поток.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewOpenAI создаёт классификатор намерений.
func NewOpenAI(client chatClient, model string, timeout time.Duration, log zerolog.Logger) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout, log: log}
}

var _ domain.IntentClassifier = (*OpenAI)(nil)

type intentPayload struct {
	Intent string `json:"intent"`
}

const intentSystemPrompt = `Ты разбираешь сообщения, адресованные боту футбольного чата.
Определи намерение и верни строго JSON формата {"intent": "..."} с одним из значений:
- "this_week" — вопрос о составе на текущую неделю («кто играет?», «сколько нас?», «состав?»);
- "last_week" — вопрос о прошедшей игре («кто играл на прошлой неделе?», «сколько нас было?»);
- "generic_question" — любой другой вопрос боту.
Если намерение неоднозначно, выбирай "this_week".`

// Classify определяет намерение триггерного сообщения.
func (c *OpenAI) Classify(ctx context.Context, text string) domain.Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.DefaultIntent
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: openai.Deterministic(),
		MaxTokens:   50,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: intentSystemPrompt},
			{Role: openai.RoleUser, Content: trimmed},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.Warn().Err(err).Msg("классификация намерения не удалась, берём значение по умолчанию")
		return domain.DefaultIntent
	}
	if len(resp.Choices) == 0 {
		c.log.Warn().Msg("классификатор вернул пустой ответ, берём значение по умолчанию")
		return domain.DefaultIntent
	}

	var parsed intentPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)), &parsed); err != nil {
		c.log.Warn().Err(err).Msg("ответ классификатора не разобран, берём значение по умолчанию")
		return domain.DefaultIntent
	}
	intent, ok := domain.ParseIntent(parsed.Intent)
	if !ok {
		c.log.Warn().Str("intent", parsed.Intent).Msg("классификатор вернул значение вне набора")
	}
	return intent
}
