package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapquest/tapquest-backend/internal"
)

// =============================================================================
// FINISHED-GAME ARCHIVE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	id            BIGSERIAL PRIMARY KEY,
	session_id    TEXT        NOT NULL,
	visibility    TEXT        NOT NULL,
	rounds_played INT         NOT NULL,
	winner_id     TEXT        NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS game_result_players (
	result_id BIGINT NOT NULL REFERENCES game_results(id) ON DELETE CASCADE,
	player_id TEXT   NOT NULL,
	seat      INT    NOT NULL,
	character TEXT   NOT NULL,
	score     INT    NOT NULL,
	connected BOOLEAN NOT NULL
);
`

// ResultStore archives finished games to Postgres. The hub works fine
// without one; the archive is write-only from the game's point of view.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(ctx context.Context, databaseURL string) (*ResultStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Println("[store.NewResultStore] connected")
	return &ResultStore{pool: pool}, nil
}

// SaveResult writes the result header and per-player rows in one
// transaction.
func (s *ResultStore) SaveResult(ctx context.Context, result internal.GameResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var resultID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO game_results (session_id, visibility, rounds_played, winner_id, finished_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		result.SessionID, string(result.Visibility), result.RoundsPlayed, result.WinnerID, result.FinishedAt,
	).Scan(&resultID)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	for _, p := range result.Players {
		_, err = tx.Exec(ctx,
			`INSERT INTO game_result_players (result_id, player_id, seat, character, score, connected)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			resultID, p.PlayerID, p.Seat, p.Character, p.Score, p.Connected,
		)
		if err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// ResultCount reports the number of archived games. Used by tests and ops
// spot checks.
func (s *ResultStore) ResultCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_results`).Scan(&n)
	return n, err
}

// LoadResult reads one archived game back, players ordered by seat.
func (s *ResultStore) LoadResult(ctx context.Context, sessionID string) (*internal.GameResult, error) {
	var (
		resultID int64
		result   internal.GameResult
		vis      string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, session_id, visibility, rounds_played, winner_id, finished_at
		 FROM game_results WHERE session_id = $1
		 ORDER BY id DESC LIMIT 1`,
		sessionID,
	).Scan(&resultID, &result.SessionID, &vis, &result.RoundsPlayed, &result.WinnerID, &result.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("select result: %w", err)
	}
	result.Visibility = internal.Visibility(vis)

	rows, err := s.pool.Query(ctx,
		`SELECT player_id, seat, character, score, connected
		 FROM game_result_players WHERE result_id = $1
		 ORDER BY seat`,
		resultID,
	)
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	result.Players, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (internal.PlayerResult, error) {
		var p internal.PlayerResult
		err := row.Scan(&p.PlayerID, &p.Seat, &p.Character, &p.Score, &p.Connected)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan players: %w", err)
	}
	return &result, nil
}

func (s *ResultStore) Close() {
	s.pool.Close()
}
