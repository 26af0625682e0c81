package catalog

import (
	"strings"

	"github.com/flovouin/mbops/metabase"
)

// Returns the first database that looks like the production one: either its name contains "production", or it has the
// fallback ID and runs on MySQL.
func FindProductionDatabase(databases []metabase.Database, fallbackId int) (*metabase.Database, bool) {
	for i, db := range databases {
		if strings.Contains(strings.ToLower(db.Name), "production") {
			return &databases[i], true
		}

		if db.Id == fallbackId && strings.Contains(strings.ToLower(db.Engine), "mysql") {
			return &databases[i], true
		}
	}

	return nil, false
}

// Returns the tables whose name is one of the keys, in the order of `tables`.
func FilterKeyTables(tables []metabase.Table, keys []string) []metabase.Table {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	found := make([]metabase.Table, 0, len(keys))
	for _, t := range tables {
		if wanted[t.Name] {
			found = append(found, t)
		}
	}

	return found
}

// Finds a table by name, ignoring case.
func FindTable(tables []metabase.TableMetadata, name string) (*metabase.TableMetadata, bool) {
	for i, t := range tables {
		if strings.EqualFold(t.Name, name) {
			return &tables[i], true
		}
	}

	return nil, false
}

// Table names grouped by the kind of data they likely hold.
type TableClassification struct {
	Sellers  []string // Sellers, brands, vendors and merchants.
	Orders   []string // Orders, transactions and purchases.
	Payments []string // Payments, payouts and refunds.
}

var (
	sellerKeywords  = []string{"seller", "brand", "vendor", "merchant"}
	orderKeywords   = []string{"order", "transaction", "purchase"}
	paymentKeywords = []string{"payment", "payout", "refund"}
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Groups table names by keyword. A table belongs to the first matching group only, e.g. `seller_payouts` is a seller
// table.
func ClassifyTables(names []string) TableClassification {
	var c TableClassification
	for _, name := range names {
		lower := strings.ToLower(name)

		switch {
		case containsAny(lower, sellerKeywords):
			c.Sellers = append(c.Sellers, name)
		case containsAny(lower, orderKeywords):
			c.Orders = append(c.Orders, name)
		case containsAny(lower, paymentKeywords):
			c.Payments = append(c.Payments, name)
		}
	}

	return c
}
