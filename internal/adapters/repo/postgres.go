package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photo-vote-bot/internal/domain"
)

// Postgres ведёт журнал циклов на основе pgxpool.
// Только запись: журнал не участвует в принятии решений.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.CycleJournal = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS vote_cycles (
    id          TEXT PRIMARY KEY,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    challenges  INT NOT NULL,
    votes       INT NOT NULL,
    boosts      INT NOT NULL,
    failed      INT NOT NULL
);
CREATE TABLE IF NOT EXISTS cycle_outcomes (
    cycle_id     TEXT NOT NULL REFERENCES vote_cycles (id),
    challenge_id BIGINT NOT NULL,
    title        TEXT NOT NULL,
    voted        INT NOT NULL,
    exposure     DOUBLE PRECISION NOT NULL,
    boosted      BOOLEAN NOT NULL,
    skipped      TEXT NOT NULL DEFAULT '',
    err          TEXT NOT NULL DEFAULT ''
);
`

// EnsureSchema создаёт таблицы журнала, если их ещё нет.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("создание схемы журнала: %w", err)
	}
	return nil
}

// SaveCycle сохраняет отчёт цикла вместе с исходами по челленджам.
func (p *Postgres) SaveCycle(ctx context.Context, report domain.CycleReport) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO vote_cycles (id, started_at, finished_at, challenges, votes, boosts, failed)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.StartedAt, report.FinishedAt,
		len(report.Outcomes), report.Voted(), report.Boosted(), report.Failed())
	if err != nil {
		return fmt.Errorf("запись цикла: %w", err)
	}

	for _, o := range report.Outcomes {
		_, err = tx.Exec(ctx,
			`INSERT INTO cycle_outcomes (cycle_id, challenge_id, title, voted, exposure, boosted, skipped, err)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			report.ID, o.ChallengeID, o.Title, o.Voted, o.Exposure, o.Boosted, o.Skipped, o.Err)
		if err != nil {
			return fmt.Errorf("запись исхода челленджа %d: %w", o.ChallengeID, err)
		}
	}

	return tx.Commit(ctx)
}
