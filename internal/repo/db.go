// Package repo contains all database access logic for the TripNest API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// beginner opens a transaction. *pgxpool.Pool opens a real one; pgx.Tx opens
// a savepoint, so a TxRunner built on a test transaction still rolls back.
type beginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos bundles every repo bound to the same connection or transaction.
type Repos struct {
	Trips         TripRepo
	Days          DayRepo
	Activities    ActivityRepo
	Creators      CreatorRepo
	Conversations ConversationRepo
	Messages      MessageRepo
	Profiles      ProfileRepo
	Videos        VideoRepo
	Marketplace   MarketplaceRepo
}

// NewRepos builds the Postgres repos over conn.
func NewRepos(conn db) Repos {
	return Repos{
		Trips:         NewTripRepo(conn),
		Days:          NewDayRepo(conn),
		Activities:    NewActivityRepo(conn),
		Creators:      NewCreatorRepo(conn),
		Conversations: NewConversationRepo(conn),
		Messages:      NewMessageRepo(conn),
		Profiles:      NewProfileRepo(conn),
		Videos:        NewVideoRepo(conn),
		Marketplace:   NewMarketplaceRepo(conn),
	}
}

// TxRunner runs a unit of work inside one database transaction.
// fn receives repos bound to the transaction. A non-nil return from fn rolls
// everything back; nil commits.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Repos) error) error
}

type pgTxRunner struct {
	conn beginner
}

// NewTxRunner constructs a TxRunner over a pool (or, in tests, an open tx).
func NewTxRunner(conn beginner) TxRunner {
	return &pgTxRunner{conn: conn}
}

func (r *pgTxRunner) InTx(ctx context.Context, fn func(Repos) error) error {
	return pgx.BeginFunc(ctx, r.conn, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows through scan, wrapping failures with op.
// The result is nil when rows is empty; services normalize to non-nil.
func collect[T any](rows pgx.Rows, op string, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

// noRows maps pgx.ErrNoRows to domain.ErrNotFound.
func noRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using the
// default backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toUUID(id pgtype.UUID) uuid.UUID {
	return uuid.UUID(id.Bytes)
}
