package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"roster-bot/internal/domain"
	"roster-bot/internal/infra/metrics"
	"roster-bot/internal/usecase/roster"
)

const (
	dedupTTL     = 10 * time.Minute
	courtesyText = "Упс, что-то пошло не так 🙈 Спросите меня ещё раз чуть позже."
)

type mentionService interface {
	HandleMention(ctx context.Context, text string) (roster.Result, error)
}

// Handler обслуживает вебхук бота: валидация, проверка адресации,
// запуск конвейера и подтверждение вызывающей стороне.
type Handler struct {
	svc     mentionService
	poster  domain.ChatPoster
	cache   domain.Cache      // nil — без защиты от повторной доставки
	reports domain.ReportRepo // nil — без аудита
	botName string
	mention string
	cfgErr  error
	log     zerolog.Logger
}

// NewHandler создаёт обработчик. cfgErr фиксирует результат проверки
// конфигурации на старте: при ненулевом значении каждый запрос завершается
// ошибкой конфигурации до любых внешних вызовов.
func NewHandler(svc mentionService, poster domain.ChatPoster, cache domain.Cache, reports domain.ReportRepo, botName, mention string, cfgErr error, log zerolog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		poster:  poster,
		cache:   cache,
		reports: reports,
		botName: botName,
		mention: mention,
		cfgErr:  cfgErr,
		log:     log,
	}
}

type webhookAck struct {
	Status       string        `json:"status"`
	Intent       domain.Intent `json:"intent,omitempty"`
	MessageCount int           `json:"message_count,omitempty"`
	PlayerCount  int           `json:"player_count,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// ServeWebhook обрабатывает один входящий апдейт.
func (h *Handler) ServeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.cfgErr != nil {
		h.log.Error().Err(fmt.Errorf("%w: %v", domain.ErrConfigMissing, h.cfgErr)).Msg("вебхук отклонён")
		metrics.IncWebhook("config_error")
		writeAck(w, http.StatusInternalServerError, webhookAck{Status: "error", Error: "сервис не сконфигурирован"})
		return
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.rejectPayload(w, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
		return
	}
	if upd.Message == nil || strings.TrimSpace(upd.Message.Text) == "" {
		h.rejectPayload(w, fmt.Errorf("%w: нет текста сообщения", domain.ErrInvalidPayload))
		return
	}
	text := upd.Message.Text

	if !h.addressed(text) {
		metrics.IncWebhook("ignored")
		writeAck(w, http.StatusOK, webhookAck{Status: "ignored"})
		return
	}

	log := h.log.With().
		Int("update_id", upd.UpdateID).
		Str("correlation_id", uuid.NewString()).
		Logger()

	var result roster.Result
	var handleErr error
	run := func() error {
		result, handleErr = h.svc.HandleMention(r.Context(), text)
		return handleErr
	}

	if !h.runOnce(r.Context(), upd.UpdateID, log, run) {
		metrics.IncWebhook("duplicate")
		writeAck(w, http.StatusOK, webhookAck{Status: "duplicate"})
		return
	}

	if handleErr != nil {
		log.Error().Err(handleErr).Msg("обработка адресованного сообщения не удалась")
		h.notifyChatBestEffort(r.Context(), log)
		h.saveReport(r.Context(), log, upd.UpdateID, result, "error", handleErr.Error())
		metrics.IncWebhook("error")
		writeAck(w, http.StatusInternalServerError, webhookAck{Status: "error", Error: "внутренняя ошибка обработки"})
		return
	}

	h.saveReport(r.Context(), log, upd.UpdateID, result, "ok", "")
	metrics.IncWebhook("ok")
	writeAck(w, http.StatusOK, webhookAck{
		Status:       "ok",
		Intent:       result.Intent,
		MessageCount: result.MessageCount,
		PlayerCount:  result.Outcome.TotalCount,
	})
}

// runOnce выполняет fn под TTL-замком по update id, когда настроен кэш.
// Возвращает false, если апдейт уже обрабатывался (повторная доставка).
func (h *Handler) runOnce(ctx context.Context, updateID int, log zerolog.Logger, fn func() error) bool {
	if h.cache == nil {
		_ = fn()
		return true
	}
	key := fmt.Sprintf("webhook:update:%d", updateID)
	ran, err := h.cache.Once(ctx, key, dedupTTL, fn)
	if err != nil && !ran {
		// Сбой Redis не должен ронять обработку.
		log.Warn().Err(err).Msg("замок идемпотентности недоступен, обрабатываем без него")
		_ = fn()
		return true
	}
	return ran
}

func (h *Handler) addressed(text string) bool {
	lower := strings.ToLower(text)
	if h.mention != "" && strings.Contains(lower, strings.ToLower(h.mention)) {
		return true
	}
	return h.botName != "" && strings.Contains(lower, strings.ToLower(h.botName))
}

// notifyChatBestEffort пытается предупредить чат о сбое. Ошибка самой
// попытки логируется и считается, но дальше не распространяется.
func (h *Handler) notifyChatBestEffort(ctx context.Context, log zerolog.Logger) {
	if err := h.poster.Post(ctx, courtesyText); err != nil {
		metrics.CourtesyPostErrors.Inc()
		log.Warn().Err(err).Msg("не удалось уведомить чат об ошибке")
	}
}

func (h *Handler) saveReport(ctx context.Context, log zerolog.Logger, updateID int, result roster.Result, status, errText string) {
	if h.reports == nil {
		return
	}
	report := domain.ProcessReport{
		ID:           uuid.New(),
		UpdateID:     updateID,
		Intent:       result.Intent,
		MessageCount: result.MessageCount,
		PlayerCount:  result.Outcome.TotalCount,
		Status:       status,
		Error:        errText,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.reports.SaveReport(ctx, report); err != nil {
		log.Warn().Err(err).Msg("не удалось сохранить отчёт аудита")
	}
}

func (h *Handler) rejectPayload(w http.ResponseWriter, err error) {
	h.log.Warn().Err(err).Msg("вебхук отклонён")
	metrics.IncWebhook("invalid_payload")
	writeAck(w, http.StatusBadRequest, webhookAck{Status: "error", Error: "некорректное тело запроса"})
}

func writeAck(w http.ResponseWriter, code int, ack webhookAck) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ack)
}
