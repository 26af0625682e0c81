package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/internal/plans"
	"github.com/flovouin/mbops/internal/rpc"
	"github.com/flovouin/mbops/logger"
	"github.com/flovouin/mbops/metabase"
)

// Returns the ID of the collection in which the card should be created, or `nil` for the root collection.
func findCardCollection(ctx context.Context, env *commandEnv) (*int, error) {
	collections, err := env.catalog.ListCollections(ctx)
	if err != nil {
		logCallError("failed to list collections", rpc.OperationListCollections, err)
	}

	collection, id, err := catalog.FindCollection(collections,
		toCollectionDefinitions(env.config.Card.IncludedCollections),
		toCollectionDefinitions(env.config.Card.ExcludedCollections))
	if err != nil {
		return nil, err
	}

	if collection == nil {
		env.println("Using root collection for now. Consider creating a 'Financial Reports' collection.")
		return nil, nil
	}

	env.printf("Found collection: %s (ID: %d)\n", collection.Name, id)
	return &id, nil
}

func runCreateCard(ctx context.Context, env *commandEnv) error {
	env.println("Creating Accounts Payable card in Metabase...")

	query, err := os.ReadFile(env.config.Card.SqlFile)
	if err != nil {
		return fmt.Errorf("reading SQL file: %w", err)
	}

	siteUrl := metabase.SiteUrl(env.config.Metabase.Url)
	env.printf("Connecting to Metabase at: %s\n", siteUrl)

	collectionId, err := findCardCollection(ctx, env)
	if err != nil {
		return err
	}

	body := catalog.BuildNativeCard(plans.AccountsPayableCard(string(query), env.config.Card.DatabaseId, collectionId))
	card, err := env.catalog.CreateCard(ctx, body)
	if err != nil {
		logCallError("failed to create card", rpc.OperationCreateCard, err)
		return fmt.Errorf("creating card: %w", err)
	}

	logger.Info("card created", zap.Int("card_id", card.Id), zap.Intp("collection_id", collectionId))
	env.printf("Successfully created card: %s\n", card.Name)
	env.printf("Card ID: %d\n", card.Id)
	env.printf("URL: %s/question/%d\n", siteUrl, card.Id)

	env.println("\nUsage instructions:")
	for i, step := range plans.AccountsPayableUsage {
		env.printf("%d. %s\n", i+1, step)
	}

	return nil
}
