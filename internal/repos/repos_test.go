package repos

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seededDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, SeedDemo(context.Background(), db, bcrypt.MinCost))
	return db
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDB("mysql", "whatever")
	assert.Error(t, err)
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	require.NoError(t, SeedDemo(ctx, db, bcrypt.MinCost))

	var artists, users, carts int
	require.NoError(t, db.Get(&artists, `SELECT COUNT(*) FROM artists`))
	require.NoError(t, db.Get(&users, `SELECT COUNT(*) FROM users`))
	require.NoError(t, db.Get(&carts, `SELECT COUNT(*) FROM carts`))
	assert.Equal(t, 3, artists)
	assert.Equal(t, 2, users)
	assert.Equal(t, 2, carts)
}

func TestCartUpsertIncrementsExistingLine(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	carts := NewCartRepo(db)

	cartID, err := carts.EnsureCart(ctx, "u-alice")
	require.NoError(t, err)
	again, err := carts.EnsureCart(ctx, "u-alice")
	require.NoError(t, err)
	assert.Equal(t, cartID, again)

	require.NoError(t, carts.UpsertItem(ctx, cartID, "v-first-light-std", 2))
	require.NoError(t, carts.UpsertItem(ctx, cartID, "v-first-light-std", 3))

	lines, err := carts.Lines(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "First Light", lines[0].AlbumTitle)
	assert.True(t, lines[0].BasePrice.Equal(decimal.NewFromInt(20)))
}

func TestCartRemoveItemChecksOwnership(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	carts := NewCartRepo(db)

	aliceCart, err := carts.EnsureCart(ctx, "u-alice")
	require.NoError(t, err)
	adminCart, err := carts.EnsureCart(ctx, "u-admin")
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(ctx, aliceCart, "v-compass-std", 1))

	lines, err := carts.Lines(ctx, aliceCart)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	removed, err := carts.RemoveItem(ctx, adminCart, lines[0].ItemID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = carts.RemoveItem(ctx, aliceCart, lines[0].ItemID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestInventoryDecrementRefusesOversell(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	inv := NewInventoryRepo(db)

	require.NoError(t, inv.Decrement(ctx, "v-compass-collector", 2))
	err := inv.Decrement(ctx, "v-compass-collector", 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	qty, err := inv.Qty(ctx, "v-compass-collector")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	require.NoError(t, inv.Restock(ctx, "v-compass-collector", 2))
	qty, _ = inv.Qty(ctx, "v-compass-collector")
	assert.Equal(t, 3, qty)

	_, err = inv.Qty(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := NewInventoryRepo(tx).Decrement(ctx, "v-lilac-hour-std", 5); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	qty, err := NewInventoryRepo(db).Qty(ctx, "v-lilac-hour-std")
	require.NoError(t, err)
	assert.Equal(t, 25, qty)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = WithTx(ctx, db, func(tx *sqlx.Tx) error {
			_ = NewInventoryRepo(tx).Decrement(ctx, "v-lilac-hour-std", 5)
			panic("kaboom")
		})
	})

	qty, err := NewInventoryRepo(db).Qty(ctx, "v-lilac-hour-std")
	require.NoError(t, err)
	assert.Equal(t, 25, qty)
}

func TestDiscountsForAlbums(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	discounts := NewDiscountRepo(db)

	rows, err := discounts.ForAlbums(ctx, []string{"album-first-light", "album-compass"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "album-first-light", rows[0].AlbumID)
	assert.Equal(t, "disc-welcome", rows[0].ID)
	assert.True(t, rows[0].IsActive)

	require.NoError(t, discounts.Link(ctx, "disc-welcome", "album-first-light"))
	removed, err := discounts.Unlink(ctx, "disc-welcome", "album-first-light")
	require.NoError(t, err)
	assert.True(t, removed)

	rows, err = discounts.ForAlbums(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUserCreateDetectsDuplicateEmail(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	u, err := users.ByEmail(ctx, "ALICE@albumshop.test")
	require.NoError(t, err)
	assert.Equal(t, "u-alice", u.ID)

	dup := *u
	dup.ID = "u-other"
	dup.Email = " Alice@AlbumShop.test "
	created, err := users.Create(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAlbumListingExcludesOutOfStock(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	albums := NewAlbumRepo(db)

	list, err := albums.ListAvailable(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "album-lilac-hour", list[0].ID, "newest release first")
	for _, a := range list {
		assert.NotEqual(t, "out_of_stock", a.Status)
	}

	found, err := albums.Search(ctx, "north", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "album-compass", found[0].ID)
}

func TestCartRemoveLinesDeletesOnlyWhatWasRead(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	carts := NewCartRepo(db)

	cartID, err := carts.EnsureCart(ctx, "u-alice")
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(ctx, cartID, "v-first-light-std", 1))
	read, err := carts.Lines(ctx, cartID)
	require.NoError(t, err)

	// a line added after the read is left alone
	require.NoError(t, carts.UpsertItem(ctx, cartID, "v-compass-std", 1))
	require.NoError(t, carts.RemoveLines(ctx, cartID, read))
	left, err := carts.Lines(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "v-compass-std", left[0].VersionID)

	// a line topped up after the read aborts the whole removal
	read = left
	require.NoError(t, carts.UpsertItem(ctx, cartID, "v-compass-std", 2))
	err = WithTx(ctx, db, func(tx *sqlx.Tx) error {
		return carts.WithTx(tx).RemoveLines(ctx, cartID, read)
	})
	assert.ErrorIs(t, err, ErrCartChanged)
	left, err = carts.Lines(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, 3, left[0].Quantity)

	// removing the same lines twice fails the second time
	require.NoError(t, carts.RemoveLines(ctx, cartID, left))
	assert.ErrorIs(t, carts.RemoveLines(ctx, cartID, left), ErrCartChanged)

	assert.NoError(t, carts.Lock(ctx, cartID))
	assert.ErrorIs(t, carts.Lock(ctx, "cart-missing"), ErrCartChanged)
}
