package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"roster-bot/internal/adapters/bot"
	"roster-bot/internal/adapters/classifier"
	"roster-bot/internal/adapters/mtproto"
	"roster-bot/internal/adapters/reducer"
	"roster-bot/internal/adapters/repo"
	"roster-bot/internal/adapters/telegram"
	"roster-bot/internal/domain"
	"roster-bot/internal/infra/cache"
	"roster-bot/internal/infra/config"
	"roster-bot/internal/infra/db"
	httpinfra "roster-bot/internal/infra/http"
	"roster-bot/internal/infra/log"
	"roster-bot/internal/infra/metrics"
	openaiinfra "roster-bot/internal/infra/openai"
	"roster-bot/internal/usecase/roster"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "bot-gateway")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgErr := cfg.Validate()
	if cfgErr != nil {
		// Конфигурация проверяется и на каждом запросе: шлюз поднимается,
		// но отвечает ошибкой конфигурации, не трогая внешние сервисы.
		logger.Error().Err(cfgErr).Msg("неполная конфигурация")
	}

	anchor, err := cfg.AnchorWeekday()
	if err != nil {
		logger.Fatal().Err(err).Msg("некорректный опорный день недели")
	}
	location := cfg.Location()

	var intentClassifier domain.IntentClassifier
	var rosterReducer domain.RosterReducer
	if cfg.SimpleDelegates {
		intentClassifier = classifier.NewSimple()
		rosterReducer = reducer.NewSimple()
	} else {
		llm := openaiinfra.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
		intentClassifier = classifier.NewOpenAI(llm, cfg.OpenAI.Model, cfg.OpenAI.Timeout, logger.With().Str("component", "classifier").Logger())
		rosterReducer = reducer.NewOpenAI(llm, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
	}

	var poster domain.ChatPoster = noopPoster{}
	if cfg.Telegram.Token != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			logger.Fatal().Err(err).Msg("не удалось создать бота")
		}
		poster = telegram.NewPoster(botAPI, cfg.Telegram.GroupID)
	}

	history := mtproto.NewHistory(
		cfg.Telegram.APIID,
		cfg.Telegram.APIHash,
		cfg.MTProto.SessionFile,
		cfg.Telegram.GroupAlias,
		cfg.MTProto.PageSize,
		cfg.MTProto.MaxPages,
		logger.With().Str("component", "mtproto").Logger(),
	)

	now := func() time.Time { return time.Now().In(location) }
	rosterService := roster.NewService(
		intentClassifier,
		history,
		rosterReducer,
		poster,
		anchor,
		cfg.Game.MinPlayers,
		now,
		logger.With().Str("component", "roster").Logger(),
	)

	var dedup domain.Cache
	if cfg.RedisAddr != "" {
		dedup = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	var reports domain.ReportRepo
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("нет подключения к БД")
		}
		defer pool.Close()
		reports = repo.NewPostgres(pool)
	}

	handler := bot.NewHandler(
		rosterService,
		poster,
		dedup,
		reports,
		cfg.Bot.Name,
		cfg.Bot.Mention,
		cfgErr,
		logger.With().Str("component", "webhook").Logger(),
	)

	server := httpinfra.NewServer(logger)
	server.Router.Post("/bot/webhook", handler.ServeWebhook)

	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("остановка шлюза")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

// noopPoster подменяет отправителя, пока не задан токен бота: запросы
// всё равно завершатся ошибкой конфигурации до отправки.
type noopPoster struct{}

func (noopPoster) Post(context.Context, string) error {
	return fmt.Errorf("%w: не задан токен бота", domain.ErrConfigMissing)
}
