package core

import "shopcore/pkg/domain"

type (
	InventoryItem   = domain.InventoryItem
	Variant         = domain.Variant
	Customer        = domain.Customer
	Invoice         = domain.Invoice
	LineItem        = domain.LineItem
	Purchase        = domain.Purchase
	Expense         = domain.Expense
	CashEntry       = domain.CashEntry
	Staff           = domain.Staff
	Attendance      = domain.Attendance
	StockAdjustment = domain.StockAdjustment
	Reminder        = domain.Reminder
	Setting         = domain.Setting
	MutationRecord  = domain.MutationRecord
	Transaction     = domain.Transaction
	PersistentStore = domain.PersistentStore
	RulesEngine     = domain.RulesEngine
	Result          = domain.Result
	Violation       = domain.Violation
	Action          = domain.Action
	Change          = domain.Change
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
