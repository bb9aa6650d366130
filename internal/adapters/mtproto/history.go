package mtproto

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"roster-bot/internal/domain"
	"roster-bot/internal/infra/metrics"
)

// History выгружает сообщения группы через MTProto.
// Страницы идут от новых к старым по offset id; выгрузка останавливается,
// как только встречаются сообщения старше начала окна, и в любом случае
// ограничена maxPages страницами.
type History struct {
	client     *telegram.Client
	groupAlias string
	pageSize   int
	maxPages   int
	log        zerolog.Logger
}

// NewHistory создаёт MTProto-клиента с сессией в файле.
func NewHistory(apiID int, apiHash, sessionFile, groupAlias string, pageSize, maxPages int, log zerolog.Logger) *History {
	if pageSize <= 0 {
		pageSize = 100
	}
	if maxPages <= 0 {
		maxPages = 10
	}
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionFile},
	})
	return &History{
		client:     client,
		groupAlias: strings.TrimPrefix(groupAlias, "@"),
		pageSize:   pageSize,
		maxPages:   maxPages,
		log:        log,
	}
}

var _ domain.HistoryProvider = (*History)(nil)

// FetchWindow возвращает сообщения окна в хронологическом порядке
// (от старых к новым).
func (h *History) FetchWindow(ctx context.Context, window domain.TimeWindow) ([]domain.ChatMessage, error) {
	var collected []domain.ChatMessage
	err := h.client.Run(ctx, func(ctx context.Context) error {
		api := h.client.API()

		peer, names, err := h.resolveGroup(ctx, api)
		if err != nil {
			return err
		}

		offsetID := 0
		pages := 0
		for pages < h.maxPages {
			start := time.Now()
			res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
				Peer:     peer,
				OffsetID: offsetID,
				Limit:    h.pageSize,
			})
			metrics.ObserveNetworkRequest("mtproto", "messages_get_history", h.groupAlias, start, err)
			if err != nil {
				return fmt.Errorf("messages.getHistory: %w", err)
			}
			pages++

			batch, users, ok := historyMessages(res)
			if !ok || len(batch) == 0 {
				break
			}
			collectNames(names, users)

			reachedStart := false
			for _, raw := range batch {
				msg, ok := raw.(*tg.Message)
				if !ok {
					continue
				}
				offsetID = msg.ID
				sentAt := time.Unix(int64(msg.Date), 0)
				if sentAt.Before(window.Start) {
					reachedStart = true
					break
				}
				if !window.Contains(sentAt) {
					continue
				}
				if strings.TrimSpace(msg.Message) == "" {
					continue
				}
				senderID := senderOf(msg)
				collected = append(collected, domain.ChatMessage{
					ID:         int64(msg.ID),
					SenderID:   senderID,
					SenderName: names[senderID],
					Text:       msg.Message,
					SentAt:     sentAt,
				})
			}
			if reachedStart || len(batch) < h.pageSize {
				break
			}
		}
		metrics.HistoryPagesFetched.Observe(float64(pages))
		h.log.Debug().Int("pages", pages).Int("messages", len(collected)).Msg("история выгружена")
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Платформа отдаёт страницы от новых к старым; редьюсеру нужен
	// хронологический порядок.
	reverse(collected)
	return collected, nil
}

func (h *History) resolveGroup(ctx context.Context, api *tg.Client) (tg.InputPeerClass, map[int64]string, error) {
	start := time.Now()
	resolved, err := api.ContactsResolveUsername(ctx, h.groupAlias)
	metrics.ObserveNetworkRequest("mtproto", "resolve_username", h.groupAlias, start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("contacts.resolveUsername %q: %w", h.groupAlias, err)
	}

	names := make(map[int64]string)
	collectNames(names, resolved.Users)

	for _, chat := range resolved.Chats {
		if channel, ok := chat.(*tg.Channel); ok {
			return &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}, names, nil
		}
	}
	return nil, nil, fmt.Errorf("группа %q не найдена среди разрешённых чатов", h.groupAlias)
}

func historyMessages(res tg.MessagesMessagesClass) ([]tg.MessageClass, []tg.UserClass, bool) {
	switch v := res.(type) {
	case *tg.MessagesChannelMessages:
		return v.Messages, v.Users, true
	case *tg.MessagesMessagesSlice:
		return v.Messages, v.Users, true
	case *tg.MessagesMessages:
		return v.Messages, v.Users, true
	}
	return nil, nil, false
}

func collectNames(names map[int64]string, users []tg.UserClass) {
	for _, raw := range users {
		user, ok := raw.(*tg.User)
		if !ok {
			continue
		}
		name := strings.TrimSpace(user.FirstName)
		if name == "" {
			name = user.Username
		}
		if name != "" {
			names[user.ID] = name
		}
	}
}

func senderOf(msg *tg.Message) int64 {
	if peer, ok := msg.FromID.(*tg.PeerUser); ok {
		return peer.UserID
	}
	return 0
}

func reverse(messages []domain.ChatMessage) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
