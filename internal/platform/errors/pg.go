package errors

import (
	stderrs "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstateCodes maps the SQLSTATEs the repos can hit onto our codes
var sqlstateCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,    // unique_violation
	"23503": ErrorCodeInvalidArgument, // foreign_key_violation
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"22007": ErrorCodeInvalidArgument, // invalid_datetime_format
	"25006": ErrorCodeUnavailable,     // read_only_sql_transaction
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
	"57014": ErrorCodeUnavailable,     // query_canceled, statement_timeout lands here
}

// PgError returns the *pgconn.PgError in the chain, if any
func PgError(err error) (*pgconn.PgError, bool) {
	var pg *pgconn.PgError
	ok := stderrs.As(err, &pg)
	return pg, ok
}

// DBErrorCode maps a postgres error to a code.
// ok is false when err carries no *pgconn.PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	pg, ok := PgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	if c, known := sqlstateCodes[pg.Code]; known {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with the mapped code, ErrorCodeDB when unmapped. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is FromPostgres with a format
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}
