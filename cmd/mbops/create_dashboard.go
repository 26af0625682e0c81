package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/internal/plans"
	"github.com/flovouin/mbops/internal/rpc"
	"github.com/flovouin/mbops/logger"
	"github.com/flovouin/mbops/metabase"
)

// Runs the card queries and prints which ones return data. The returned error aggregates failed cards.
func checkCards(ctx context.Context, env *commandEnv, cards []catalog.NamedCard) error {
	env.println("Testing card data...")

	checks, err := env.catalog.CheckCards(ctx, cards)

	working := 0
	for _, c := range checks {
		switch {
		case c.Works():
			working++
			env.printf("  OK    %s: %d rows\n", c.Card.Name, c.RowCount)
		case errors.Is(c.Err, catalog.ErrNoData):
			env.printf("  EMPTY %s: no data returned\n", c.Card.Name)
		default:
			env.printf("  ERROR %s: %s\n", c.Card.Name, c.Err.Error())
		}
	}
	env.printf("%d out of %d cards have data\n", working, len(cards))

	return err
}

func runCreateDashboard(ctx context.Context, env *commandEnv) error {
	policy, err := catalog.ParseCardCheckPolicy(env.config.Dashboard.CardCheckPolicy)
	if err != nil {
		return err
	}

	collectionId := env.config.Dashboard.CollectionId
	def := plans.RoasDashboard(collectionId)

	body, err := catalog.BuildDashboard(def)
	if err != nil {
		return err
	}

	filters, err := catalog.BuildFilters(plans.RoasFilters)
	if err != nil {
		return err
	}

	env.println("Creating ROAS dashboard layout")

	if policy.ShouldCheck() {
		checkErr := checkCards(ctx, env, def.Cards)
		if !policy.ShouldProceed(checkErr) {
			return fmt.Errorf("not creating the dashboard as some cards do not work: %w", checkErr)
		}
		if checkErr != nil {
			logger.Warn("some cards do not work, creating the dashboard anyway", zap.Error(checkErr))
		}
	}

	env.println("\nCreating dashboard...")
	dashboard, err := env.catalog.CreateDashboard(ctx, body)
	if err != nil {
		logCallError("failed to create dashboard", rpc.OperationCreateDashboard, err)
		return fmt.Errorf("creating dashboard: %w", err)
	}
	logger.Info("dashboard created", zap.Int("dashboard_id", dashboard.Id), zap.Int("collection_id", collectionId))
	env.printf("Dashboard created: ID %d\n", dashboard.Id)

	env.println("\nAdding dashboard filters...")
	logger.Debug("adding dashboard filters", zap.Int("dashboard_id", dashboard.Id), zap.Int("count", len(filters)))
	_, err = env.catalog.UpdateDashboardFilters(ctx, dashboard.Id, filters)
	if err != nil {
		logCallError("failed to add dashboard filters", rpc.OperationUpdateDashboard, err)
		env.println("Could not add filters (dashboard still usable)")
	} else {
		env.println("Filters added successfully")
	}

	env.println("\nROAS dashboard created successfully!")
	if len(env.config.Metabase.Url) > 0 {
		siteUrl := metabase.SiteUrl(env.config.Metabase.Url)
		env.printf("Dashboard URL: %s/dashboard/%d\n", siteUrl, dashboard.Id)
		env.printf("Collection URL: %s/collection/%d\n", siteUrl, collectionId)
	}

	return nil
}
