package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

type userGetter interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// FirebaseDirectory resolves owners against Firebase Authentication
type FirebaseDirectory struct {
	users    userGetter
	notFound func(error) bool
}

// NewFirebaseDirectory initialises a Firebase app using application default credentials
func NewFirebaseDirectory(ctx context.Context, projectID string) (*FirebaseDirectory, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return &FirebaseDirectory{users: client, notFound: auth.IsUserNotFound}, nil
}

func (d *FirebaseDirectory) Lookup(ctx context.Context, ownerID string) (Account, error) {
	rec, err := d.users.GetUser(ctx, ownerID)
	if err != nil {
		if d.notFound(err) {
			return Account{}, fmt.Errorf("%s: %w", ownerID, ErrNotFound)
		}
		return Account{}, fmt.Errorf("firebase get user: %w", err)
	}
	return Account{ID: ownerID, Disabled: rec.Disabled}, nil
}
