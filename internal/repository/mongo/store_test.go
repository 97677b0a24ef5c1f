package mongo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/repository/mongo"
	"flowrk-backend/internal/repository/storetest"
	"flowrk-backend/pkg/database"
)

// Runs against a real server when FLOWRK_TEST_MONGO_URI is set.
func TestStoreConformance(t *testing.T) {
	uri := storetest.DSN(t, "FLOWRK_TEST_MONGO_URI")
	ctx := context.Background()

	client, err := database.NewMongoClient(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	storetest.Run(t, mongo.NewStore(client.Database("flowrk_test")))
}
