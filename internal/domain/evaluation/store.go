package evaluation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"appraisal/internal/platform/querier"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"

	onceConstraint = "evaluations_once_per_employee"
)

// Store is the postgres StoreAPI.
type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.DB.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// mapPgError translates driver errors into domain sentinels. A malformed uuid
// can never match a row, so it reads as not found.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == onceConstraint:
			return ErrAlreadyCompleted
		case pgErr.Code == pgInvalidTextRep:
			return ErrNotFound
		}
	}
	return err
}

// mapPgDeleteError additionally reports a foreign key violation as ErrInUse.
func mapPgDeleteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrInUse
	}
	return mapPgError(err)
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// dayRange converts an inclusive calendar-day filter into half-open bounds.
func dayRange(from, to time.Time) (lower, upper *time.Time) {
	if !from.IsZero() {
		l := DateOnly(from)
		lower = &l
	}
	if !to.IsZero() {
		u := DateOnly(to).AddDate(0, 0, 1)
		upper = &u
	}
	return lower, upper
}
