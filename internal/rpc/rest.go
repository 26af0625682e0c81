package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/flovouin/mbops/metabase"
)

const jsonContentType = "application/json"

// Sends a single operation to the Metabase API.
type restHandler func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error)

// Maps an operation to an HTTP method and path of the Metabase API.
type restRoute struct {
	method  string      // The HTTP method, for documentation and logging.
	path    string      // The path template, relative to the API endpoint.
	extract string      // If non-empty, the attribute of the response object returned as the result.
	handler restHandler // Builds and sends the request.
}

// Calls operations through the Metabase REST API.
type RESTCaller struct {
	client *metabase.ClientWithResponses
	routes map[string]restRoute
}

// Creates a caller sending operations to the Metabase REST API using the given (authenticated) client.
func NewRESTCaller(client *metabase.ClientWithResponses) *RESTCaller {
	return &RESTCaller{
		client: client,
		routes: restRoutes,
	}
}

var restRoutes = map[string]restRoute{
	OperationListDatabases: {
		method: http.MethodGet,
		path:   "/database",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			include, ok, err := args.String("include")
			if err != nil {
				return nil, err
			}

			params := metabase.ListDatabasesParams{}
			if ok {
				params.Include = &include
			}

			return client.ListDatabasesWithResponse(ctx, &params)
		},
	},
	OperationListTables: {
		method:  http.MethodGet,
		path:    "/database/{database_id}/metadata",
		extract: "tables",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			id, err := args.Int("database_id")
			if err != nil {
				return nil, err
			}
			return client.GetDatabaseMetadataWithResponse(ctx, id)
		},
	},
	OperationGetDatabaseMetadata: {
		method: http.MethodGet,
		path:   "/database/{database_id}/metadata",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			id, err := args.Int("database_id")
			if err != nil {
				return nil, err
			}
			return client.GetDatabaseMetadataWithResponse(ctx, id)
		},
	},
	OperationGetTableFields: {
		method:  http.MethodGet,
		path:    "/table/{table_id}/query_metadata",
		extract: "fields",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			id, err := args.Int("table_id")
			if err != nil {
				return nil, err
			}
			return client.GetTableMetadataWithResponse(ctx, id)
		},
	},
	OperationListCollections: {
		method: http.MethodGet,
		path:   "/collection",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			return client.ListCollectionsWithResponse(ctx)
		},
	},
	OperationCreateCard: {
		method: http.MethodPost,
		path:   "/card",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			body, err := jsonBody(args)
			if err != nil {
				return nil, err
			}
			return client.CreateCardWithBodyWithResponse(ctx, jsonContentType, body)
		},
	},
	OperationCreateDashboard: {
		method: http.MethodPost,
		path:   "/dashboard",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			body, err := jsonBody(args)
			if err != nil {
				return nil, err
			}
			return client.CreateDashboardWithBodyWithResponse(ctx, jsonContentType, body)
		},
	},
	OperationUpdateDashboard: {
		method: http.MethodPut,
		path:   "/dashboard/{dashboard_id}",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			id, err := args.Int("dashboard_id")
			if err != nil {
				return nil, err
			}

			body, err := jsonBody(args.Without("dashboard_id"))
			if err != nil {
				return nil, err
			}

			return client.UpdateDashboardWithBodyWithResponse(ctx, id, jsonContentType, body)
		},
	},
	OperationRunCardQuery: {
		method: http.MethodPost,
		path:   "/card/{card_id}/query",
		handler: func(ctx context.Context, client *metabase.ClientWithResponses, args Args) (metabase.MetabaseResponse, error) {
			id, err := args.Int("card_id")
			if err != nil {
				return nil, err
			}

			// Remaining arguments (e.g. `parameters`) are passed to the query. The body is omitted when there are none.
			rest := args.Without("card_id")
			if len(rest) == 0 {
				return client.QueryCardWithBodyWithResponse(ctx, id, jsonContentType, nil)
			}

			body, err := jsonBody(rest)
			if err != nil {
				return nil, err
			}

			return client.QueryCardWithBodyWithResponse(ctx, id, jsonContentType, body)
		},
	},
}

func jsonBody(args Args) (*bytes.Reader, error) {
	if args == nil {
		args = Args{}
	}

	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err.Error())
	}

	return bytes.NewReader(b), nil
}

// Returns the HTTP method and path template an operation is routed to.
func (c *RESTCaller) Route(operation string) (string, string, bool) {
	route, ok := c.routes[operation]
	return route.method, route.path, ok
}

func (c *RESTCaller) Call(ctx context.Context, operation string, args Args) (json.RawMessage, error) {
	route, ok := c.routes[operation]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownOperation, operation)
	}

	resp, err := route.handler(ctx, c.client, args)
	var decodeErr *metabase.DecodeError
	if errors.As(err, &decodeErr) {
		return nil, fmt.Errorf("%w: operation '%s': %s", ErrUnexpectedShape, operation, decodeErr.Error())
	}
	if err != nil {
		return nil, fmt.Errorf("calling operation '%s' (%s %s): %w", operation, route.method, route.path, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode(),
			Body:       resp.BodyString(),
		}
	}

	body := resp.BodyBytes()
	if len(route.extract) == 0 {
		return body, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("%w: operation '%s' should return an object", ErrUnexpectedShape, operation)
	}

	extracted, ok := obj[route.extract]
	if !ok {
		return nil, fmt.Errorf("%w: operation '%s' response has no '%s' attribute", ErrUnexpectedShape, operation, route.extract)
	}

	return extracted, nil
}
