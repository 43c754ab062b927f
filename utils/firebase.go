package utils

import (
	"context"
	"fmt"

	"appointly/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseMessaging builds an FCM client from FIREBASE_CREDENTIALS_PATH.
// It returns nil without error when no credentials are configured.
func FirebaseMessaging(ctx context.Context) (*messaging.Client, error) {
	path := config.AppConfig.FirebaseCredentialsPath
	if path == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return client, nil
}
