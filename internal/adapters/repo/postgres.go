package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster-bot/internal/domain"
)

// Postgres сохраняет аудит обработки вебхуков.
//
// Схема:
//
//	CREATE TABLE process_reports (
//	    id            UUID PRIMARY KEY,
//	    update_id     BIGINT NOT NULL,
//	    intent        TEXT NOT NULL,
//	    message_count INT NOT NULL,
//	    player_count  INT NOT NULL,
//	    status        TEXT NOT NULL,
//	    error         TEXT NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ domain.ReportRepo = (*Postgres)(nil)

// SaveReport записывает строку аудита.
func (p *Postgres) SaveReport(ctx context.Context, report domain.ProcessReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	_, err := p.pool.Exec(ctx, `
INSERT INTO process_reports (id, update_id, intent, message_count, player_count, status, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.ID.String(),
		report.UpdateID,
		string(report.Intent),
		report.MessageCount,
		report.PlayerCount,
		report.Status,
		report.Error,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("сохранение отчёта: %w", err)
	}
	return nil
}
