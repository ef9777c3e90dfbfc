// Package ledger records match room sessions in Postgres: when a room opened and
// closed, how many joined, its peak size and how many joiners it turned away.
package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/duelpong/go/internal/relay"
	"github.com/rs/zerolog/log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS match_sessions (
		id           BIGSERIAL PRIMARY KEY,
		match_id     TEXT        NOT NULL,
		opened_at    TIMESTAMPTZ NOT NULL,
		closed_at    TIMESTAMPTZ,
		joins        INT         NOT NULL DEFAULT 0,
		peak_members INT         NOT NULL DEFAULT 0,
		rejections   INT         NOT NULL DEFAULT 0
	)`,
	// at most one open session per match
	`CREATE UNIQUE INDEX IF NOT EXISTS match_sessions_open_idx
		ON match_sessions (match_id) WHERE closed_at IS NULL`,
}

const (
	openSession = `
		INSERT INTO match_sessions (match_id, opened_at, joins, peak_members)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (match_id) WHERE closed_at IS NULL
		DO UPDATE SET
			joins = match_sessions.joins + 1,
			peak_members = GREATEST(match_sessions.peak_members, EXCLUDED.peak_members)`

	countRejection = `
		UPDATE match_sessions SET rejections = rejections + 1
		WHERE match_id = $1 AND closed_at IS NULL`

	closeSession = `
		UPDATE match_sessions SET closed_at = $2
		WHERE match_id = $1 AND closed_at IS NULL`
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Ledger is a relay.Observer backed by Postgres
type Ledger struct {
	db   execer
	pool *pgxpool.Pool
}

var _ relay.Observer = (*Ledger)(nil)

// Open connects to Postgres and makes sure the schema exists
func Open(ctx context.Context, dsn string) (*Ledger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	l := &Ledger{db: pool, pool: pool}
	if err := l.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return l, nil
}

// EnsureSchema creates the match_sessions table if needed
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := l.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Observe records one membership change
func (l *Ledger) Observe(ctx context.Context, e relay.RoomEvent) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	switch e.Kind {
	case relay.RoomJoined:
		tag, err = l.db.Exec(ctx, openSession, e.MatchID, e.At, e.Members)
	case relay.RoomRejected:
		tag, err = l.db.Exec(ctx, countRejection, e.MatchID)
	case relay.RoomLeft:
		if e.Members > 0 {
			return nil
		}
		tag, err = l.db.Exec(ctx, closeSession, e.MatchID, e.At)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("record %s for match %s: %w", e.Kind, e.MatchID, err)
	}

	if tag.RowsAffected() == 0 {
		log.Debug().
			Str("match_id", e.MatchID).
			Str("kind", string(e.Kind)).
			Msg("no open match session to update")
	}
	return nil
}

// Close releases the pool
func (l *Ledger) Close() {
	if l.pool != nil {
		l.pool.Close()
	}
}
