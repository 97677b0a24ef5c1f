package database

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"flowrk-backend/pkg/logger"
)

// NewFirebaseDatabase opens the Realtime Database at databaseURL. With an empty
// credentialsFile the Application Default Credentials are used.
func NewFirebaseDatabase(ctx context.Context, databaseURL, credentialsFile string) (*db.Client, error) {
	if databaseURL == "" {
		return nil, errors.New("firebase: FIREBASE_DATABASE_URL not configured")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opts...)
	if err != nil {
		return nil, err
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Firebase Realtime Database client ready", "url", databaseURL)
	return client, nil
}
