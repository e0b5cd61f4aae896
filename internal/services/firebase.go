package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. bucket is the default
// Cloud Storage bucket used by the gcs storage driver and may be empty.
func InitFirebase(ctx context.Context, credPath, bucket string) (*firebase.App, *auth.Client, error) {
	opt := option.WithCredentialsFile(credPath)

	var cfg *firebase.Config
	if bucket != "" {
		cfg = &firebase.Config{StorageBucket: bucket}
	}

	app, err := firebase.NewApp(ctx, cfg, opt)
	if err != nil {
		return nil, nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, err
	}
	return app, authClient, nil
}
