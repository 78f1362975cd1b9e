package domain

import (
	"context"
	"time"
)

// Transaction exposes the mutation operations a persistence implementation
// must support within one atomic scope. Every successful mutation produces
// exactly one mutation-queue entry in the same commit.
type Transaction interface {
	CreateItem(InventoryItem) (InventoryItem, error)
	UpdateItem(id string, mutator func(*InventoryItem) error) (InventoryItem, error)
	DeleteItem(id string) error

	CreateCustomer(Customer) (Customer, error)
	UpdateCustomer(id string, mutator func(*Customer) error) (Customer, error)
	DeleteCustomer(id string) error

	CreateInvoice(Invoice) (Invoice, error)
	UpdateInvoice(id string, mutator func(*Invoice) error) (Invoice, error)
	DeleteInvoice(id string) error

	CreatePurchase(Purchase) (Purchase, error)
	UpdatePurchase(id string, mutator func(*Purchase) error) (Purchase, error)
	DeletePurchase(id string) error

	CreateExpense(Expense) (Expense, error)
	UpdateExpense(id string, mutator func(*Expense) error) (Expense, error)
	DeleteExpense(id string) error

	CreateCashEntry(CashEntry) (CashEntry, error)
	UpdateCashEntry(id string, mutator func(*CashEntry) error) (CashEntry, error)
	DeleteCashEntry(id string) error

	CreateStaff(Staff) (Staff, error)
	UpdateStaff(id string, mutator func(*Staff) error) (Staff, error)
	DeleteStaff(id string) error

	CreateAttendance(Attendance) (Attendance, error)
	UpdateAttendance(id string, mutator func(*Attendance) error) (Attendance, error)
	DeleteAttendance(id string) error

	CreateStockAdjustment(StockAdjustment) (StockAdjustment, error)
	DeleteStockAdjustment(id string) error

	CreateReminder(Reminder) (Reminder, error)
	UpdateReminder(id string, mutator func(*Reminder) error) (Reminder, error)
	DeleteReminder(id string) error

	PutSetting(Setting) (Setting, error)
	DeleteSetting(key string) error

	FindItem(id string) (InventoryItem, bool)
	FindCustomer(id string) (Customer, bool)
	FindInvoice(id string) (Invoice, bool)
}

// TableSet holds full collection contents for every known table. It is the
// payload of backup documents and of queue-bypassing state replacement.
type TableSet struct {
	Inventory        []InventoryItem   `json:"inventory"`
	Customers        []Customer        `json:"customers"`
	Invoices         []Invoice         `json:"invoices"`
	Purchases        []Purchase        `json:"purchases"`
	Expenses         []Expense         `json:"expenses"`
	CashEntries      []CashEntry       `json:"cashEntries"`
	Staff            []Staff           `json:"staff"`
	Attendance       []Attendance      `json:"attendance"`
	StockAdjustments []StockAdjustment `json:"stockAdjustments"`
	Reminders        []Reminder        `json:"reminders"`
	Settings         []Setting         `json:"settings"`
}

// PersistentStore is the durable store contract shared by all drivers.
// Reads return clones of committed state; time ranges are inclusive on both
// ends so callers can express millisecond-precise calendar-day windows.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(RuleView) error) error

	GetItem(id string) (InventoryItem, bool)
	ListItems() []InventoryItem
	ListLowStockItems() []InventoryItem

	GetCustomer(id string) (Customer, bool)
	ListCustomers() []Customer
	FindCustomerByPhone(phone string) (Customer, bool)

	GetInvoice(id string) (Invoice, bool)
	ListInvoices() []Invoice
	ListInvoicesByCustomer(customerID string) []Invoice
	ListInvoicesBetween(start, end time.Time) []Invoice

	GetPurchase(id string) (Purchase, bool)
	ListPurchases() []Purchase

	GetExpense(id string) (Expense, bool)
	ListExpenses() []Expense
	ListExpensesBetween(start, end time.Time) []Expense

	GetCashEntry(id string) (CashEntry, bool)
	ListCashEntries() []CashEntry
	ListCashEntriesBetween(start, end time.Time) []CashEntry

	GetStaff(id string) (Staff, bool)
	ListStaff() []Staff

	GetAttendance(id string) (Attendance, bool)
	ListAttendance() []Attendance
	ListAttendanceByStaff(staffID string) []Attendance

	ListStockAdjustments() []StockAdjustment

	GetReminder(id string) (Reminder, bool)
	ListReminders() []Reminder

	GetSetting(key string) (Setting, bool)
	ListSettings() []Setting

	// Mutation queue. PendingMutations returns items in insertion order and
	// never removes them; removal belongs to the external replay consumer via
	// AcknowledgeMutation. MarkMutationAttempt increments the retry counter.
	PendingMutations() []MutationRecord
	AcknowledgeMutation(id string) error
	MarkMutationAttempt(id string) error

	// Backup integration. ExportTables reads every collection in full.
	// ReplaceTables swaps in a complete replacement state atomically without
	// touching the mutation queue.
	ExportTables() TableSet
	ReplaceTables(TableSet) error
}
