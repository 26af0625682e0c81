package metabase

import (
	"context"
	"errors"

	"github.com/oapi-codegen/oapi-codegen/v2/pkg/securityprovider"
)

// The header carrying the session ID obtained from the session API.
const SessionHeader = "X-Metabase-Session"

// The header carrying a static API key.
const ApiKeyHeader = "X-Api-Key"

// Authenticates to the Metabase API using the given username and password, and returns an API client configured with
// the session obtained during authentication.
func MakeAuthenticatedClientWithUsernameAndPassword(ctx context.Context, endpoint string, username string, password string, opts ...ClientOption) (*ClientWithResponses, error) {
	client, err := NewClientWithResponses(endpoint, opts...)
	if err != nil {
		return nil, err
	}

	sessionResp, err := client.CreateSessionWithResponse(ctx, CreateSessionBody{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if sessionResp.StatusCode() != 200 || sessionResp.JSON200 == nil {
		return nil, errors.New("received unexpected response from the Metabase session API")
	}

	// Authenticated calls are made by passing the session ID in a Metabase-specific header.
	apiKeyProvider, err := securityprovider.NewSecurityProviderApiKey("header", SessionHeader, sessionResp.JSON200.Id)
	if err != nil {
		return nil, err
	}

	return NewClientWithResponses(endpoint, append(opts, WithRequestEditorFn(apiKeyProvider.Intercept))...)
}

// Returns an API client configured with the given API key.
func MakeAuthenticatedClientWithApiKey(ctx context.Context, endpoint string, apiKey string, opts ...ClientOption) (*ClientWithResponses, error) {
	apiKeyProvider, err := securityprovider.NewSecurityProviderApiKey("header", ApiKeyHeader, apiKey)
	if err != nil {
		return nil, err
	}

	return NewClientWithResponses(endpoint, append(opts, WithRequestEditorFn(apiKeyProvider.Intercept))...)
}

// Returns an API client sending the given token as a bearer credential.
func MakeAuthenticatedClientWithBearerToken(ctx context.Context, endpoint string, token string, opts ...ClientOption) (*ClientWithResponses, error) {
	bearerProvider, err := securityprovider.NewSecurityProviderBearerToken(token)
	if err != nil {
		return nil, err
	}

	return NewClientWithResponses(endpoint, append(opts, WithRequestEditorFn(bearerProvider.Intercept))...)
}
