package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type versionedThing struct {
	id      string
	version int64
	value   int
}

func (v *versionedThing) GetID() string { return v.id }
func (v *versionedThing) GetRowVersion() int64 { return v.version }
func (v *versionedThing) SetRowVersion(n int64) { v.version = n }

func TestWithRetryRetriesOnVersionConflict(t *testing.T) {
	stored := versionedThing{id: "a", version: 1}
	conflicts := 1

	get := func(ctx context.Context, id string) (*versionedThing, error) {
		cp := stored
		return &cp, nil
	}
	update := func(ctx context.Context, e *versionedThing, expected int64) (pgconn.CommandTag, error) {
		if conflicts > 0 {
			conflicts--
			stored.version++
			return pgconn.CommandTag("UPDATE 0"), nil
		}
		if expected != stored.version {
			return pgconn.CommandTag("UPDATE 0"), nil
		}
		stored.value = e.value
		stored.version++
		return pgconn.CommandTag("UPDATE 1"), nil
	}

	err := WithRetry(context.Background(), 3, "a", get, update, func(e *versionedThing) error {
		e.value = 42
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, stored.value)
	assert.Equal(t, int64(3), stored.version)
}

func TestWithRetryNotFound(t *testing.T) {
	get := func(ctx context.Context, id string) (*versionedThing, error) { return nil, nil }
	update := func(ctx context.Context, e *versionedThing, expected int64) (pgconn.CommandTag, error) {
		t.Fatal("update must not run")
		return nil, nil
	}
	err := WithRetry(context.Background(), 3, "missing", get, update, func(*versionedThing) error { return nil })
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}

func TestWithRetryGivesUp(t *testing.T) {
	get := func(ctx context.Context, id string) (*versionedThing, error) {
		return &versionedThing{id: id, version: 1}, nil
	}
	update := func(ctx context.Context, e *versionedThing, expected int64) (pgconn.CommandTag, error) {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	err := WithRetry(context.Background(), 2, "hot", get, update, func(*versionedThing) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrRowVersionConflict)
}
