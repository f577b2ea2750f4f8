// Package identity provides lookup access to the authoritative user store
// and the per-user permission-override store. Both collaborators are
// external and possibly unavailable; callers own timeouts and fallback.
package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftline/workforce-service/internal/domain"
)

// ErrNotFound reports that no user record exists for the requested id.
var ErrNotFound = errors.New("user not found")

// ErrUnavailable reports that the store has no backing database. Callers
// treat it like any other lookup failure, so requests degrade to the
// fallback identity instead of erroring.
var ErrUnavailable = errors.New("identity store unavailable")

// Store looks up hydrated user records by id.
type Store interface {
	Lookup(ctx context.Context, userID string) (domain.UserIdentity, error)
}

// Querier is the subset of pgxpool.Pool used by the Postgres store. It is
// satisfied by both a live pool and pgxmock.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	db Querier
}

// NewPostgresStore returns a Postgres-backed Store. The service can start
// without a database (no POSTGRES_DSN), in which case the pool handle is a
// nil *pgxpool.Pool; normalize it so Lookup degrades instead of panicking.
func NewPostgresStore(db Querier) Store {
	if pool, ok := db.(*pgxpool.Pool); ok && pool == nil {
		db = nil
	}
	return &postgresStore{db: db}
}

func (s *postgresStore) Lookup(ctx context.Context, userID string) (domain.UserIdentity, error) {
	if s.db == nil {
		return domain.UserIdentity{}, ErrUnavailable
	}

	const query = `
        SELECT id, email, roles, is_active
        FROM users WHERE id=$1`

	var (
		id     string
		email  string
		roles  []string
		active bool
	)
	if err := s.db.QueryRow(ctx, query, userID).Scan(&id, &email, &roles, &active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserIdentity{}, ErrNotFound
		}
		return domain.UserIdentity{}, err
	}
	return domain.NewUserIdentity(id, email, roles, active), nil
}
