package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/storeledger/backoffice/internal/records"
)

// ErrMalformedRow reports a backend row that could not be decoded, such as a
// non-numeric money column.
var ErrMalformedRow = errors.New("store: malformed row")

const uniqueViolation = "23505"

// translate maps driver errors onto the record sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return records.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", records.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func scanRow[R any](row pgx.CollectableRow) (R, error) {
	out, err := pgx.RowToStructByName[R](row)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return out, nil
}
