package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolation は PostgreSQL の unique_violation の SQLSTATE です。
const uniqueViolation = "23505"

// IsUniqueViolation はエラーがユニーク制約違反かどうかを判定します。
// TranslateError 済みの gorm.ErrDuplicatedKey と、変換前の pgconn.PgError の両方に対応します。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
