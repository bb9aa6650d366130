package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию бота.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"Europe/Moscow"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		APIID      int    `envconfig:"TG_API_ID"`
		APIHash    string `envconfig:"TG_API_HASH"`
		GroupAlias string `envconfig:"TG_GROUP_ALIAS"`
		GroupID    int64  `envconfig:"TG_GROUP_CHAT_ID"`
	} `envconfig:""`

	Bot struct {
		Name    string `envconfig:"BOT_NAME" default:"бот"`
		Mention string `envconfig:"BOT_MENTION" default:"@roster_bot"`
	} `envconfig:""`

	OpenAI struct {
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		BaseURL string        `envconfig:"OPENAI_BASE_URL"`
		Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4.1-mini"`
		Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	} `envconfig:""`

	MTProto struct {
		SessionFile string `envconfig:"MTPROTO_SESSION_FILE" default:"session.json"`
		PageSize    int    `envconfig:"MTPROTO_PAGE_SIZE" default:"100"`
		MaxPages    int    `envconfig:"MTPROTO_MAX_PAGES" default:"10"`
	} `envconfig:""`

	Game struct {
		AnchorDay  string `envconfig:"GAME_ANCHOR_DAY" default:"wednesday"`
		MinPlayers int    `envconfig:"GAME_MIN_PLAYERS" default:"10"`
	} `envconfig:""`

	// SimpleDelegates включает эвристические классификатор и редьюсер
	// вместо LLM (для локальной разработки).
	SimpleDelegates bool `envconfig:"SIMPLE_DELEGATES" default:"false"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Validate проверяет обязательные значения. Ошибка перечисляет имена
// отсутствующих переменных, не раскрывая значений остальных.
func (c AppConfig) Validate() error {
	var missing []string
	if c.Telegram.Token == "" {
		missing = append(missing, "TG_BOT_TOKEN")
	}
	if c.Telegram.APIID == 0 {
		missing = append(missing, "TG_API_ID")
	}
	if c.Telegram.APIHash == "" {
		missing = append(missing, "TG_API_HASH")
	}
	if c.Telegram.GroupAlias == "" {
		missing = append(missing, "TG_GROUP_ALIAS")
	}
	if c.Telegram.GroupID == 0 {
		missing = append(missing, "TG_GROUP_CHAT_ID")
	}
	if !c.SimpleDelegates && c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("не заданы переменные окружения: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AnchorWeekday разбирает опорный день недели.
func (c AppConfig) AnchorWeekday() (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(c.Game.AnchorDay)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Wednesday, fmt.Errorf("неизвестный день недели: %q", c.Game.AnchorDay)
}

// Location возвращает часовой пояс бота, UTC при ошибке загрузки.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
