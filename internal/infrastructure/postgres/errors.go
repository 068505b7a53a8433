package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// translate maps driver errors onto apperror kinds. notFound is the message
// used for pgx.ErrNoRows and foreign key violations.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.New(apperror.NotFound, notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperror.Wrap(apperror.Conflict, "User already exists with this email", err)
		case codeForeignKeyViolation:
			return apperror.Wrap(apperror.NotFound, notFound, err)
		}
	}
	return apperror.Wrap(apperror.Internal, "postgres", err)
}
