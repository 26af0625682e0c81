// Package plans holds the literal definitions of the cards and dashboards managed by the operator commands.
package plans

import (
	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/metabase"
)

const (
	AccountsPayableCardName        = "Accounts Payable by Brand - Monthly"
	accountsPayableCardDescription = "Monthly AP report showing GMV, commissions, refunds, payments, and outstanding balances per seller/brand. Use start_date (first day of month) and end_date (first day of next month) parameters."
)

// The default values of the month boundaries, also shown in the usage instructions.
const (
	DefaultStartDate = "2024-07-01"
	DefaultEndDate   = "2024-08-01"
)

// The collections in which the accounts payable card is preferably created.
var FinancialCollections = []catalog.CollectionDefinition{
	{Name: "(?i)financial"},
	{Name: "(?i)seller"},
}

// Returns a reference to a column of the query result, for table visualization settings.
func columnRef(name string, baseType string) map[string]any {
	return map[string]any{
		"name":     name,
		"enabled":  true,
		"fieldRef": []any{metabase.FieldLiteral, name, map[string]any{"base-type": baseType}},
	}
}

// Returns the accounts payable card, running the given query against the database.
func AccountsPayableCard(query string, databaseId int, collectionId *int) catalog.NativeCardDefinition {
	return catalog.NativeCardDefinition{
		Name:         AccountsPayableCardName,
		Description:  accountsPayableCardDescription,
		CollectionId: collectionId,
		DatabaseId:   databaseId,
		Query:        query,
		Parameters: []catalog.TemplateParameter{
			{
				Name:        "start_date",
				DisplayName: "Month Start Date",
				Type:        "date",
				Required:    true,
				Default:     DefaultStartDate,
			},
			{
				Name:        "end_date",
				DisplayName: "Month End Date",
				Type:        "date",
				Required:    true,
				Default:     DefaultEndDate,
			},
		},
		Display: "table",
		VisualizationSettings: map[string]any{
			"table.columns": []any{
				columnRef("Brand Name", "type/Text"),
				columnRef("Commission Rate", "type/Text"),
				columnRef("Total GMV", "type/Currency"),
				columnRef("Bubble Goods Revenue", "type/Currency"),
				columnRef("Refunds/Damages", "type/Currency"),
				columnRef("Total AP Owed", "type/Currency"),
				columnRef("Paid This Month", "type/Currency"),
				columnRef("Outstanding Balance", "type/Currency"),
			},
		},
	}
}

// The steps to run the accounts payable report once the card is created.
var AccountsPayableUsage = []string{
	"Navigate to the card URL above",
	"Set start_date to first day of month (e.g., " + DefaultStartDate + ")",
	"Set end_date to first day of next month (e.g., " + DefaultEndDate + ")",
	"Click 'Get Answer' to run the report",
}
