package rpc

//go:generate mockgen -source=caller.go -destination=mock/caller.go

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// The names of the remote operations known to both transports.
// With the JSON-RPC transport, they are the names of the tools exposed by the MCP server.
const (
	OperationListDatabases       = "list_databases"
	OperationListTables          = "list_tables"
	OperationGetTableFields      = "get_table_fields"
	OperationGetDatabaseMetadata = "get_database_metadata"
	OperationListCollections     = "list_collections"
	OperationCreateCard          = "create_card"
	OperationCreateDashboard     = "create_dashboard"
	OperationUpdateDashboard     = "update_dashboard"
	OperationRunCardQuery        = "run_card_query"
)

// The keyword arguments of a remote operation. Values should be JSON-compatible.
type Args map[string]any

// Invokes a named remote operation and returns its decoded result.
// Calls are made once: there are no retries and no backoff.
type Caller interface {
	Call(ctx context.Context, operation string, args Args) (json.RawMessage, error)
}

var (
	// Returned (wrapped) when the remote service answers with a non-success status code.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// Returned (wrapped) when the operation is not supported by the transport.
	ErrUnknownOperation = errors.New("unknown operation")
	// Returned (wrapped) when a response cannot be decoded into the expected structure.
	ErrUnexpectedShape = errors.New("unexpected response shape")
	// Returned (wrapped) when a mandatory argument is missing or has the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// A non-success response from the remote service.
type StatusError struct {
	Operation  string // The operation that was called.
	StatusCode int    // The HTTP status code, or the JSON-RPC error code.
	Body       string // The raw response body or error message.
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("operation '%s' failed with status code %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Decodes the result of an operation into a typed structure, failing with `ErrUnexpectedShape` if it does not match.
func Decode[T any](operation string, raw json.RawMessage) (T, error) {
	var result T
	if len(raw) == 0 {
		return result, fmt.Errorf("%w: operation '%s' returned an empty result", ErrUnexpectedShape, operation)
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("%w: operation '%s': %s", ErrUnexpectedShape, operation, err.Error())
	}

	return result, nil
}

// Converts a typed request body into keyword arguments.
func ArgsFrom(body any) (Args, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var args Args
	if err := json.Unmarshal(b, &args); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrInvalidArgument)
	}

	return args, nil
}
