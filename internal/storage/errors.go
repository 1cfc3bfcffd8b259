package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Сигнальные ошибки хранилища. Сервисный слой сопоставляет их со статусами
// ответов (404, 409), не разбирая ошибки драйвера.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникального ограничения.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
