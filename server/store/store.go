package store

import (
	"context"
	"embed"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

const matchColumns = `
	id, player_a, chat_a, balance_a,
	player_b, chat_b, balance_b,
	turn_for, created_at`

func scanMatch(row pgx.Row) (*Match, error) {
	var m Match
	err := row.Scan(
		&m.ID, &m.PlayerA, &m.ChatA, &m.BalanceA,
		&m.PlayerB, &m.ChatB, &m.BalanceB,
		&m.TurnFor, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMatch inserts an open match with only the owner seated.
func (db *DB) CreateMatch(ctx context.Context, playerA, chatA int64) (*Match, error) {
	id := uuid.NewString()
	return scanMatch(db.QueryRow(ctx, `
		INSERT INTO matches(id, player_a, chat_a)
		VALUES ($1, $2, $3)
		RETURNING`+matchColumns, id, playerA, chatA))
}

// FindOpenMatches lists matches still missing a second player.
func (db *DB) FindOpenMatches(ctx context.Context) ([]Match, error) {
	rows, err := db.Query(ctx, `
		SELECT`+matchColumns+`
		  FROM matches
		 WHERE player_b IS NULL
		 ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// AtomicJoin seats playerB into an open match. The WHERE player_b IS NULL
// guard makes concurrent joins exactly-once: the row is updated for one
// caller and nil is returned for everyone else.
func (db *DB) AtomicJoin(ctx context.Context, matchID string, playerB, chatB int64) (*Match, error) {
	m, err := scanMatch(db.QueryRow(ctx, `
		UPDATE matches
		   SET player_b = $2, chat_b = $3, turn_for = player_a
		 WHERE id = $1 AND player_b IS NULL
		RETURNING`+matchColumns, matchID, playerB, chatB))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (db *DB) FindByID(ctx context.Context, matchID string) (*Match, error) {
	m, err := scanMatch(db.QueryRow(ctx, `
		SELECT`+matchColumns+` FROM matches WHERE id = $1
	`, matchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (db *DB) UpdateBalances(ctx context.Context, matchID string, balanceA, balanceB int) error {
	_, err := db.Exec(ctx, `
		UPDATE matches SET balance_a = $2, balance_b = $3 WHERE id = $1
	`, matchID, balanceA, balanceB)
	return err
}

func (db *DB) UpdateTurn(ctx context.Context, matchID string, playerID int64) error {
	_, err := db.Exec(ctx, `
		UPDATE matches SET turn_for = $2 WHERE id = $1
	`, matchID, playerID)
	return err
}

// DeleteMatch removes a finished or abandoned match row.
func (db *DB) DeleteMatch(ctx context.Context, matchID string) error {
	_, err := db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, matchID)
	return err
}
