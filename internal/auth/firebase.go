package auth

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// idTokenVerifier is the slice of the Firebase Auth client this package uses.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier initialises the Admin SDK from a service-account JSON document.
// projectID may be empty, in which case the project_id of the credentials is used.
func NewFirebaseVerifier(ctx context.Context, credentialsJSON []byte, projectID string) (*FirebaseVerifier, error) {
	if projectID == "" {
		projectID = projectIDFromCredentials(credentialsJSON)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	identity := &Identity{
		UID:      decoded.UID,
		Email:    claimString(decoded.Claims, "email"),
		Issuer:   decoded.Issuer,
		Provider: decoded.Firebase.SignInProvider,
		Claims:   decoded.Claims,
	}
	if identity.Email == "" {
		return nil, ErrMissingEmail
	}
	return identity, nil
}

func projectIDFromCredentials(credentialsJSON []byte) string {
	var creds struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(credentialsJSON, &creds); err != nil {
		return ""
	}
	return creds.ProjectID
}
