package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/repository/postgres"
	"flowrk-backend/internal/repository/storetest"
	"flowrk-backend/pkg/database"
)

// Runs against a real database when FLOWRK_TEST_DATABASE_URL is set.
func TestStoreConformance(t *testing.T) {
	dsn := storetest.DSN(t, "FLOWRK_TEST_DATABASE_URL")
	ctx := context.Background()

	pool, err := database.NewPostgresConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := postgres.NewStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	storetest.Run(t, store)
}
