package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// Attempts before UpdateWithRetry gives up with ErrRowVersionConflict. Sweeps
// bump row_version when they claim a period, so operator edits can lose a race.
const defaultMaxRetries = 3

// EntityWithVersion is a row guarded by a row_version column. Implementations
// are pointer types so a missing row comes back as the zero value.
type EntityWithVersion interface {
	comparable
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
}

// UpdateIfVersionFunc writes entity only while its stored row_version still
// equals expectedVersion; zero affected rows means a concurrent writer won.
type UpdateIfVersionFunc[T EntityWithVersion] func(
	ctx context.Context,
	entity T,
	expectedVersion int64,
) (pgconn.CommandTag, error)

type GetByIDFunc[T EntityWithVersion] func(
	ctx context.Context,
	id string,
) (T, error)

// WithRetry loads the row, applies mutate and writes it back under the
// version check, reloading on conflict. It returns pgx.ErrNoRows for a missing
// row and utils.ErrRowVersionConflict once maxRetries writes have lost.
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id string,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) error {
	var missing T
	for i := 0; i < maxRetries; i++ {
		row, err := getByID(ctx, id)
		if err != nil {
			return err
		}
		if row == missing {
			return pgx.ErrNoRows
		}

		seen := row.GetRowVersion()
		if err := mutate(row); err != nil {
			return err
		}

		tag, err := updateIfVersion(ctx, row, seen)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			row.SetRowVersion(seen + 1)
			return nil
		}
	}
	return fmt.Errorf("update %q after %d attempts: %w", id, maxRetries, utils.ErrRowVersionConflict)
}
