package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/forum-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeTimeout, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505", "40001", "40P01":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation, serialization_failure, deadlock_detected
		case "55P03", "57014":
			return domainagg.Wrap(domainagg.CodeTimeout, op, err) // lock_not_available, query_canceled
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "deadlock"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "database is locked"):
		return domainagg.Wrap(domainagg.CodeTimeout, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}
