package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/internal/rpc"
	"github.com/flovouin/mbops/logger"
	"github.com/flovouin/mbops/metabase"
)

// Prints the fields of a table, one per line.
func printFields(env *commandEnv, fields []metabase.Field) {
	for _, f := range fields {
		semanticType := "N/A"
		if f.SemanticType != nil {
			semanticType = *f.SemanticType
		}
		env.printf("  - %s: %s (%s)\n", f.Name, f.BaseType, semanticType)
	}
}

// Prints the available databases.
func printDatabases(env *commandEnv, databases []metabase.Database) {
	env.println("Available databases:")
	for _, db := range databases {
		env.printf("  %d: %s (%s)\n", db.Id, db.Name, db.Engine)
	}
}

func runExplore(ctx context.Context, env *commandEnv) error {
	env.println("Exploring database structure...")

	databases, err := env.catalog.ListDatabases(ctx)
	if err != nil {
		logCallError("failed to list databases", rpc.OperationListDatabases, err)
		return fmt.Errorf("could not find the production database: %w", err)
	}
	printDatabases(env, databases)

	db, ok := catalog.FindProductionDatabase(databases, env.config.Explore.ProductionDatabaseId)
	if !ok {
		return errors.New("could not find the production database")
	}
	env.printf("\nUsing database: %s (ID: %d)\n", db.Name, db.Id)
	logger.Info("using production database", zap.Int("database_id", db.Id), zap.String("engine", db.Engine))

	var tables []metabase.TableMetadata
	metadata, err := env.catalog.GetDatabaseMetadata(ctx, db.Id)
	if err != nil {
		logCallError("failed to get database metadata", rpc.OperationGetDatabaseMetadata, err)
	} else {
		tables = metadata.Tables
	}

	names := make([]string, 0, len(tables))
	env.printf("\nTables in database %d:\n", db.Id)
	for _, t := range tables {
		env.printf("  - %s\n", t.Name)
		names = append(names, t.Name)
	}

	classification := catalog.ClassifyTables(names)
	env.printf("\nPotential seller/brand tables: [%s]\n", strings.Join(classification.Sellers, ", "))
	env.printf("Potential order tables: [%s]\n", strings.Join(classification.Orders, ", "))
	env.printf("Potential payment tables: [%s]\n", strings.Join(classification.Payments, ", "))

	env.println("\nChecking for common table names...")
	for _, name := range env.config.Explore.CandidateTables {
		t, found := catalog.FindTable(tables, name)
		if !found {
			env.printf("Table not found: %s\n", name)
			continue
		}

		env.printf("Found table: %s\n", name)
		printFields(env, t.Fields)
	}

	return nil
}
