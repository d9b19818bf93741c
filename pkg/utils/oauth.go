package utils

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
)

// ServiceAccountClient builds an HTTP client authenticated as a Google service
// account. When subject is set the account impersonates that user, which
// requires domain-wide delegation for the requested scopes.
func ServiceAccountClient(ctx context.Context, credentialsFile, subject string, scopes ...string) (*http.Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}
	jwtConfig.Subject = subject

	return jwtConfig.Client(ctx), nil
}
