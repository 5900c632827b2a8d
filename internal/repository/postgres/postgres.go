package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Conn provides the shared store handle. *database.Manager implements it.
type Conn interface {
	Ensure(ctx context.Context) (*sql.DB, error)
}

// Postgres error codes the repositories translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRep      = "22P02"
)

func pqErrorCode(err error) (pq.ErrorCode, string) {
	var perr *pq.Error
	if errors.As(err, &perr) {
		return perr.Code, perr.Constraint
	}
	return "", ""
}
