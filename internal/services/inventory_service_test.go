package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumshop/internal/apperr"
	"albumshop/internal/repos"
	"albumshop/internal/services"
)

func TestCheckAvailability(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewInventoryService(repos.NewInventoryRepo(db))
	ctx := context.Background()

	cases := []struct {
		version string
		status  string
		qty     int
	}{
		{"v-first-light-std", "IN_STOCK", 50},
		{"v-compass-collector", "LOW_STOCK", 3},
		{"v-paper-moon-std", "OUT_OF_STOCK", 0},
	}
	for _, tc := range cases {
		av, err := svc.CheckAvailability(ctx, tc.version)
		require.NoError(t, err, tc.version)
		assert.Equal(t, tc.status, av.Status, tc.version)
		assert.Equal(t, tc.qty, av.Qty, tc.version)
	}

	_, err := svc.CheckAvailability(ctx, "v-missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSetStock(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewInventoryService(repos.NewInventoryRepo(db))
	ctx := context.Background()

	require.NoError(t, svc.SetStock(ctx, "v-compass-collector", 5))
	av, err := svc.CheckAvailability(ctx, "v-compass-collector")
	require.NoError(t, err)
	assert.Equal(t, "IN_STOCK", av.Status)

	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(svc.SetStock(ctx, "v-compass-collector", -1)))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.SetStock(ctx, "v-missing", 1)))

	rows, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}
