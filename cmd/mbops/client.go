package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/oapi-codegen/oapi-codegen/v2/pkg/securityprovider"

	"github.com/flovouin/mbops/internal/rpc"
	"github.com/flovouin/mbops/metabase"
)

// Checks that the Metabase URL and a credential are set, before any network call is made.
func validateMetabaseConfig(config metabaseConfig) error {
	if len(config.Url) == 0 {
		return errors.New("the Metabase URL should be set and non-empty")
	}

	if len(config.ApiKey) == 0 && len(config.Token) == 0 && (len(config.Username) == 0 || len(config.Password) == 0) {
		return errors.New("the Metabase API key or token should be set and non-empty, unless a username and password are provided")
	}

	return nil
}

// Initializes the Metabase API client using the configuration.
// The API key takes precedence over the token, which takes precedence over the username and password.
func makeMetabaseClient(ctx context.Context, config metabaseConfig, httpClient *http.Client) (*metabase.ClientWithResponses, error) {
	if err := validateMetabaseConfig(config); err != nil {
		return nil, err
	}

	endpoint := metabase.ApiEndpoint(config.Url)
	opts := []metabase.ClientOption{metabase.WithHTTPClient(httpClient)}

	switch {
	case len(config.ApiKey) > 0:
		return metabase.MakeAuthenticatedClientWithApiKey(ctx, endpoint, config.ApiKey, opts...)
	case len(config.Token) > 0:
		return metabase.MakeAuthenticatedClientWithBearerToken(ctx, endpoint, config.Token, opts...)
	default:
		return metabase.MakeAuthenticatedClientWithUsernameAndPassword(ctx, endpoint, config.Username, config.Password, opts...)
	}
}

// Initializes the caller for the configured transport. A single pooled HTTP client is used for the whole run.
func makeCaller(ctx context.Context, config *toolConfig) (rpc.Caller, error) {
	httpClient := cleanhttp.DefaultPooledClient()

	if config.Transport == transportJSONRPC {
		opts := []rpc.JSONRPCOption{rpc.WithDoer(httpClient)}

		// The MCP server holds its own Metabase credentials, but an API key is forwarded when set.
		if len(config.Metabase.ApiKey) > 0 {
			apiKeyProvider, err := securityprovider.NewSecurityProviderApiKey("header", metabase.ApiKeyHeader, config.Metabase.ApiKey)
			if err != nil {
				return nil, err
			}
			opts = append(opts, rpc.WithEditor(apiKeyProvider.Intercept))
		}

		return rpc.NewJSONRPCCaller(config.MCP.Url, config.MCP.Path, opts...)
	}

	client, err := makeMetabaseClient(ctx, config.Metabase, httpClient)
	if err != nil {
		return nil, err
	}

	return rpc.NewRESTCaller(client), nil
}
