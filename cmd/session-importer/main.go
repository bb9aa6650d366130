package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"roster-bot/internal/adapters/mtproto"
	"roster-bot/internal/infra/config"
)

// Конвертирует MTProto-сессию (строка Telethon или готовый gotd JSON)
// в файл, который читает шлюз через session.FileStorage.
func main() {
	var (
		filePath string
		outPath  string
	)
	flag.StringVar(&filePath, "file", "", "путь к файлу с MTProto-сессией")
	flag.StringVar(&outPath, "out", "", "путь к результату (по умолчанию MTPROTO_SESSION_FILE)")
	flag.Parse()

	if filePath == "" {
		log.Fatal().Msg("session-importer: укажите файл сессии (-file)")
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("session-importer: не удалось прочитать файл сессии")
	}

	normalized, converted, err := mtproto.NormalizeSessionBytes(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("session-importer: неподдерживаемый формат сессии")
	}

	if outPath == "" {
		cfg := config.Load()
		outPath = cfg.MTProto.SessionFile
	}

	if err := os.WriteFile(outPath, normalized, 0o600); err != nil {
		log.Fatal().Err(err).Msg("session-importer: не удалось записать файл сессии")
	}

	if converted {
		fmt.Println("Сессия сконвертирована в формат gotd JSON")
	}
	fmt.Printf("Сессия сохранена в %s (%d байт)\n", outPath, len(normalized))
}
