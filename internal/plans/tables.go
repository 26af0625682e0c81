package plans

// The database used when none of the databases is named after production.
const ProductionDatabaseId = 2

// The tables holding the accounts payable data.
var KeyTables = []string{"sellers", "orders", "refunds", "seller_payouts"}

// The table names looked up when exploring the production database.
var CandidateTables = []string{
	"sellers", "brands", "vendors", "merchants",
	"orders", "line_items", "transactions",
	"payouts", "payments", "refunds",
}
