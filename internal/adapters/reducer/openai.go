package reducer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"roster-bot/internal/domain"
	openai "roster-bot/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI сворачивает историю чата в состав через Chat Completions.
// В отличие от классификатора намерений сбои здесь не маскируются:
// неверный состав хуже видимой ошибки.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

// NewOpenAI создаёт редьюсер состава.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

var _ domain.RosterReducer = (*OpenAI)(nil)

type messagePayload struct {
	Sender string `json:"sender"`
	SentAt string `json:"sent_at"`
	Text   string `json:"text"`
}

type rosterPayload struct {
	Confirmed    []string         `json:"confirmed_players"`
	PlusOnes     []plusOnePayload `json:"plus_ones"`
	Withdrawn    []string         `json:"withdrawn_players"`
	Status       string           `json:"game_status"`
	CancelReason string           `json:"cancellation_reason"`
	WhoseFault   string           `json:"whose_fault"`
	Total        json.Number      `json:"total_count"`
}

type plusOnePayload struct {
	Inviter string `json:"inviter_name"`
	Guests  int    `json:"guest_count"`
}

const rosterSystemPrompt = `Ты ведёшь учёт состава на еженедельную футбольную игру по переписке группового чата.
Сообщения даны в хронологическом порядке, от старых к новым. Правила:
1. Обрабатывай сообщения строго по порядку: более позднее высказывание человека о своём участии отменяет более раннее.
2. Кто записался («+», «я в игре», «буду») и позже отказался («-», «не смогу», «пас») — попадает только в withdrawn_players.
3. «+1», «возьму друга» и подобное — гость пригласившего (автора сообщения); если число гостей не названо, считай одного, поле guest_count.
4. Слова об отмене игры («игра отменяется», «не набралось», «отбой») — game_status "cancelled"; причину пиши в cancellation_reason, шутливого виновника (если есть) в whose_fault.
5. Не выдумывай имён и фактов, которых нет в сообщениях.
Верни один JSON-объект формата:
{"confirmed_players": ["..."], "plus_ones": [{"inviter_name": "...", "guest_count": 1}], "withdrawn_players": ["..."], "game_status": "active"|"cancelled", "cancellation_reason": "...", "whose_fault": "..."}`

// Reduce сворачивает историю сообщений в состав на игру. Пустая история
// сворачивается в нулевой результат без обращения к делегату.
func (r *OpenAI) Reduce(ctx context.Context, messages []domain.ChatMessage) (domain.RosterOutcome, error) {
	if len(messages) == 0 {
		outcome := domain.RosterOutcome{Status: domain.GameActive}
		outcome.Normalize()
		return outcome, nil
	}

	payload := make([]messagePayload, 0, len(messages))
	for _, msg := range messages {
		payload = append(payload, messagePayload{
			Sender: msg.SenderName,
			SentAt: msg.SentAt.UTC().Format(time.RFC3339),
			Text:   clipRunes(msg.Text, 500),
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.RosterOutcome{}, fmt.Errorf("marshal messages: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: openai.Deterministic(),
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: rosterSystemPrompt},
			{Role: openai.RoleUser, Content: "Сообщения чата в JSON:\n" + string(body)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ResponseFormatTypeJSONObject},
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.RosterOutcome{}, fmt.Errorf("%w: %v", domain.ErrDelegateUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return domain.RosterOutcome{}, fmt.Errorf("%w: пустой ответ", domain.ErrDelegateUnavailable)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	parsed, err := parseRosterReply(content)
	if err != nil {
		return domain.RosterOutcome{}, err
	}

	outcome := domain.RosterOutcome{
		Confirmed:    parsed.Confirmed,
		Withdrawn:    parsed.Withdrawn,
		Status:       domain.GameStatus(strings.ToLower(strings.TrimSpace(parsed.Status))),
		CancelReason: parsed.CancelReason,
		WhoseFault:   parsed.WhoseFault,
	}
	for _, po := range parsed.PlusOnes {
		outcome.PlusOnes = append(outcome.PlusOnes, domain.PlusOne{Inviter: po.Inviter, Guests: po.Guests})
	}
	// Итог делегата игнорируется: Normalize пересчитывает его локально.
	outcome.Normalize()
	return outcome, nil
}

// parseRosterReply разбирает ответ делегата: сперва как есть, затем —
// если объект обёрнут в посторонний текст или ограждение кода —
// по первому встреченному JSON-объекту.
func parseRosterReply(content string) (rosterPayload, error) {
	var parsed rosterPayload
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed, nil
	}
	embedded, ok := extractJSONObject(content)
	if !ok {
		return rosterPayload{}, fmt.Errorf("%w: JSON-объект не найден", domain.ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(embedded), &parsed); err != nil {
		return rosterPayload{}, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	return parsed, nil
}

func extractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
