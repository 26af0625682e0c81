package plans

import (
	"github.com/flovouin/mbops/internal/catalog"
)

// The collection holding the ROAS cards and dashboard.
const RoasCollectionId = 47

const (
	roasDashboardName        = "ROAS Performance Tracker"
	roasDashboardDescription = "Complete ROAS tracking dashboard replacing TripleWhale. Monitors Google and Meta ad performance with real-time metrics from Supabase data warehouse."
)

const (
	roasOverview         = "ROAS Overview - 30 Day Summary"
	platformPerformance  = "Platform Performance Comparison"
	topCampaigns         = "Top Performing Campaigns"
	underperforming      = "Underperforming Campaigns Alert"
	dailyTrend           = "Daily Spend and Revenue Trend"
	weeklyPerformance    = "Weekly Performance Analysis"
	campaignEfficiency   = "Campaign Efficiency Metrics"
	revenueAttribution   = "Revenue Attribution by Platform"
	highSpendZeroRevenue = "High Spend Zero Revenue Alert"
)

// The existing ROAS cards, in the order they are checked.
var RoasCards = []catalog.NamedCard{
	{Name: roasOverview, Id: 262},
	{Name: platformPerformance, Id: 263},
	{Name: topCampaigns, Id: 264},
	{Name: underperforming, Id: 265},
	{Name: dailyTrend, Id: 266},
	{Name: weeklyPerformance, Id: 267},
	{Name: campaignEfficiency, Id: 268},
	{Name: revenueAttribution, Id: 269},
	{Name: highSpendZeroRevenue, Id: 270},
}

// The grid layout of the dashboard, 12 columns wide.
var RoasLayout = []catalog.CardPlacement{
	// Executive summary.
	{
		CardName: roasOverview,
		Row:      0,
		Col:      0,
		SizeX:    4,
		SizeY:    3,
		VisualizationSettings: map[string]any{
			"scalar.field":                    "overall_roas",
			"scalar.switch_positive_negative": false,
		},
	},
	{CardName: revenueAttribution, Row: 0, Col: 4, SizeX: 4, SizeY: 3},
	{CardName: campaignEfficiency, Row: 0, Col: 8, SizeX: 4, SizeY: 3},

	// Platforms.
	{CardName: platformPerformance, Row: 3, Col: 0, SizeX: 6, SizeY: 4},
	{
		CardName: dailyTrend,
		Row:      3,
		Col:      6,
		SizeX:    6,
		SizeY:    4,
		VisualizationSettings: map[string]any{
			"graph.dimensions": []any{"date"},
			"graph.metrics":    []any{"daily_spend", "daily_revenue"},
		},
	},

	// Campaigns.
	{CardName: topCampaigns, Row: 7, Col: 0, SizeX: 6, SizeY: 4},
	{CardName: underperforming, Row: 7, Col: 6, SizeX: 6, SizeY: 4},

	// Analysis and alerts.
	{CardName: weeklyPerformance, Row: 11, Col: 0, SizeX: 6, SizeY: 4},
	{CardName: highSpendZeroRevenue, Row: 11, Col: 6, SizeX: 6, SizeY: 4},
}

// The filters added to the dashboard once created.
var RoasFilters = []catalog.FilterDefinition{
	{
		Name:    "Date Range",
		Slug:    "date_range",
		Id:      "date_range",
		Type:    "date/all-options",
		Target:  []any{"dimension", []any{"template-tag", "date_range"}},
		Default: "past30days",
	},
	{
		Name:    "Platform",
		Slug:    "platform",
		Id:      "platform",
		Type:    "string/=",
		Target:  []any{"dimension", []any{"template-tag", "platform"}},
		Default: nil,
	},
}

// Returns the ROAS dashboard, created in the given collection.
func RoasDashboard(collectionId int) catalog.DashboardDefinition {
	return catalog.DashboardDefinition{
		Name:         roasDashboardName,
		Description:  roasDashboardDescription,
		CollectionId: &collectionId,
		Cards:        RoasCards,
		Layout:       RoasLayout,
	}
}
