package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execLog satisfies DBTX and records every statement. The cart mutation
// methods under test only call Exec.
type execLog struct {
	sql  []string
	args [][]any
	tag  pgconn.CommandTag
}

func (l *execLog) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	l.sql = append(l.sql, sql)
	l.args = append(l.args, args)
	return l.tag, nil
}

func (l *execLog) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("unexpected Query: " + sql)
}

func (l *execLog) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("unexpected QueryRow: " + sql)
}

func testUUID(b byte) pgtype.UUID {
	var id pgtype.UUID
	id.Bytes[15] = b
	id.Valid = true
	return id
}

// Abandoned-cart cleanup keys on carts.updated_at, so every line mutation
// must bump the owning cart's timestamp in the same statement. A cart with
// recent line activity then survives the purge regardless of when it was
// created.
func TestCartLineMutationsBumpCartTimestamp(t *testing.T) {
	ctx := context.Background()
	cartID := testUUID(1)
	productID := testUUID(2)
	itemID := testUUID(3)

	ops := []struct {
		name string
		call func(s *Store) error
	}{
		{"insert", func(s *Store) error { return s.InsertCartItem(ctx, cartID, productID, 2) }},
		{"update_quantity", func(s *Store) error { return s.UpdateCartItemQuantity(ctx, itemID, 3) }},
		{"move", func(s *Store) error { return s.MoveCartItem(ctx, itemID, cartID) }},
		{"delete", func(s *Store) error { return s.DeleteCartItem(ctx, itemID) }},
		{"clear", func(s *Store) error { return s.ClearCart(ctx, cartID) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			log := &execLog{tag: pgconn.NewCommandTag("UPDATE 1")}
			require.NoError(t, op.call(&Store{db: log}))
			require.Len(t, log.sql, 1)
			assert.Contains(t, log.sql[0], "UPDATE carts SET updated_at = now()",
				"%s must touch the owning cart", op.name)
		})
	}
}

func TestDeleteAbandonedGuestCartsScope(t *testing.T) {
	ctx := context.Background()
	log := &execLog{tag: pgconn.NewCommandTag("DELETE 4")}
	store := &Store{db: log}

	cutoff := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	deleted, err := store.DeleteAbandonedGuestCarts(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	require.Len(t, log.sql, 1)
	stmt := log.sql[0]
	assert.True(t, strings.Contains(stmt, "session_token IS NOT NULL"),
		"purge must never touch user carts")
	assert.True(t, strings.Contains(stmt, "updated_at < $1"),
		"purge must key on last activity")
	require.Len(t, log.args[0], 1)
	assert.Equal(t, cutoff, log.args[0][0])
}
