package domain

// SchemaVersion is the current version of the store schema. It gates backup
// restore compatibility and is recorded in exported documents. Migrations are
// additive-only and never re-run once a version has been applied.
const SchemaVersion = 1

// Table names identify record collections in the store, the mutation queue,
// and the backup document. They match the interchange format verbatim.
const (
	TableInventory        = "inventory"
	TableCustomers        = "customers"
	TableInvoices         = "invoices"
	TablePurchases        = "purchases"
	TableExpenses         = "expenses"
	TableCashEntries      = "cashEntries"
	TableStaff            = "staff"
	TableAttendance       = "attendance"
	TableStockAdjustments = "stockAdjustments"
	TableReminders        = "reminders"
	TableSettings         = "settings"
)

// Tables returns all known table names in canonical order.
func Tables() []string {
	return []string{
		TableInventory,
		TableCustomers,
		TableInvoices,
		TablePurchases,
		TableExpenses,
		TableCashEntries,
		TableStaff,
		TableAttendance,
		TableStockAdjustments,
		TableReminders,
		TableSettings,
	}
}
