package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConstraint  = errors.New("constraint violation")
	ErrUnavailable = errors.New("store unavailable")
)

// translateErr folds driver errors into the repo's sentinels so callers
// never branch on pgx internals.
func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23 covers integrity constraint violations.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
			return errors.Join(ErrConstraint, err)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
