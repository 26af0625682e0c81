// Package catalog exposes the Metabase operations used by the operator commands as typed methods, along with the pure
// helpers matching and building their payloads.
package catalog

import (
	"context"

	"github.com/flovouin/mbops/internal/rpc"
	"github.com/flovouin/mbops/metabase"
)

// Typed domain operations, sent through any transport implementing `rpc.Caller`.
type Catalog struct {
	caller rpc.Caller
}

// Creates a new catalog sending operations through the given caller.
func New(caller rpc.Caller) *Catalog {
	return &Catalog{caller: caller}
}

// Calls the operation and decodes its result into `T`.
func call[T any](ctx context.Context, c *Catalog, operation string, args rpc.Args) (T, error) {
	raw, err := c.caller.Call(ctx, operation, args)
	if err != nil {
		var zero T
		return zero, err
	}

	return rpc.Decode[T](operation, raw)
}

// Lists all databases, whether the response is a bare list or wrapped in a `data` attribute.
func (c *Catalog) ListDatabases(ctx context.Context) ([]metabase.Database, error) {
	list, err := call[metabase.DatabaseList](ctx, c, rpc.OperationListDatabases, nil)
	if err != nil {
		return nil, err
	}

	return list.Data, nil
}

// Lists the tables of a database.
func (c *Catalog) ListTables(ctx context.Context, databaseId int) ([]metabase.Table, error) {
	return call[[]metabase.Table](ctx, c, rpc.OperationListTables, rpc.Args{"database_id": databaseId})
}

// Lists the fields of a table.
func (c *Catalog) GetTableFields(ctx context.Context, tableId int) ([]metabase.Field, error) {
	return call[[]metabase.Field](ctx, c, rpc.OperationGetTableFields, rpc.Args{"table_id": tableId})
}

// Returns a database along with all its tables and fields.
func (c *Catalog) GetDatabaseMetadata(ctx context.Context, databaseId int) (*metabase.DatabaseMetadata, error) {
	metadata, err := call[metabase.DatabaseMetadata](ctx, c, rpc.OperationGetDatabaseMetadata, rpc.Args{"database_id": databaseId})
	if err != nil {
		return nil, err
	}

	return &metadata, nil
}

func (c *Catalog) ListCollections(ctx context.Context) ([]metabase.Collection, error) {
	return call[[]metabase.Collection](ctx, c, rpc.OperationListCollections, nil)
}

// Creates a card and returns it as stored by Metabase.
func (c *Catalog) CreateCard(ctx context.Context, body metabase.CreateCardBody) (*metabase.Card, error) {
	args, err := rpc.ArgsFrom(body)
	if err != nil {
		return nil, err
	}

	card, err := call[metabase.Card](ctx, c, rpc.OperationCreateCard, args)
	if err != nil {
		return nil, err
	}

	return &card, nil
}

// Creates a dashboard and returns it as stored by Metabase.
func (c *Catalog) CreateDashboard(ctx context.Context, body metabase.CreateDashboardBody) (*metabase.Dashboard, error) {
	args, err := rpc.ArgsFrom(body)
	if err != nil {
		return nil, err
	}

	dashboard, err := call[metabase.Dashboard](ctx, c, rpc.OperationCreateDashboard, args)
	if err != nil {
		return nil, err
	}

	return &dashboard, nil
}

// Replaces the parameters (filters) of an existing dashboard.
func (c *Catalog) UpdateDashboardFilters(ctx context.Context, dashboardId int, parameters []metabase.DashboardParameter) (*metabase.Dashboard, error) {
	args, err := rpc.ArgsFrom(metabase.UpdateDashboardBody{Parameters: &parameters})
	if err != nil {
		return nil, err
	}
	args["dashboard_id"] = dashboardId

	dashboard, err := call[metabase.Dashboard](ctx, c, rpc.OperationUpdateDashboard, args)
	if err != nil {
		return nil, err
	}

	return &dashboard, nil
}

// Runs the query of a saved card with its default parameters.
func (c *Catalog) RunCardQuery(ctx context.Context, cardId int) (*metabase.CardQueryResult, error) {
	result, err := call[metabase.CardQueryResult](ctx, c, rpc.OperationRunCardQuery, rpc.Args{"card_id": cardId})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
