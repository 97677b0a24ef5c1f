package firebase_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/repository/firebase"
	"flowrk-backend/internal/repository/storetest"
	"flowrk-backend/pkg/database"
)

// Runs against a Realtime Database (or the emulator) when FLOWRK_TEST_FIREBASE_URL is set.
// FLOWRK_TEST_FIREBASE_CREDENTIALS optionally names a service-account file.
func TestStoreConformance(t *testing.T) {
	url := storetest.DSN(t, "FLOWRK_TEST_FIREBASE_URL")

	client, err := database.NewFirebaseDatabase(context.Background(), url, os.Getenv("FLOWRK_TEST_FIREBASE_CREDENTIALS"))
	require.NoError(t, err)

	storetest.Run(t, firebase.NewStore(client))
}
