package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/internal/rpc"
	"github.com/flovouin/mbops/logger"
)

func runKeyTables(ctx context.Context, env *commandEnv) error {
	env.println("Listing databases...")
	databases, err := env.catalog.ListDatabases(ctx)
	if err != nil {
		logCallError("failed to list databases", rpc.OperationListDatabases, err)
	}
	printDatabases(env, databases)

	databaseId := env.config.Explore.ProductionDatabaseId
	env.printf("\nListing tables in database %d...\n", databaseId)
	tables, err := env.catalog.ListTables(ctx, databaseId)
	if err != nil {
		logCallError("failed to list tables", rpc.OperationListTables, err)
		return fmt.Errorf("listing tables of database %d: %w", databaseId, err)
	}
	env.printf("Found %d tables.\n", len(tables))

	keyTables := catalog.FilterKeyTables(tables, env.config.Explore.KeyTables)

	found := make(map[string]bool, len(keyTables))
	for _, t := range keyTables {
		found[t.Name] = true

		env.printf("\nGetting fields for %s table...\n", t.Name)
		fields, err := env.catalog.GetTableFields(ctx, t.Id)
		if err != nil {
			logCallError("failed to get table fields", rpc.OperationGetTableFields, err)
			continue
		}

		env.printf("Fields in %s:\n", t.Name)
		printFields(env, fields)
	}

	for _, name := range env.config.Explore.KeyTables {
		if !found[name] {
			logger.Warn("key table not found", zap.String("table", name), zap.Int("database_id", databaseId))
		}
	}

	return nil
}
