package memory

import (
	"shopcore/pkg/domain"
)

// Snapshot captures a point-in-time clone of the full store state, including
// the mutation queue. Drivers persist and reload it as a unit.
type Snapshot struct {
	Inventory        map[string]domain.InventoryItem   `json:"inventory"`
	Customers        map[string]domain.Customer        `json:"customers"`
	Invoices         map[string]domain.Invoice         `json:"invoices"`
	Purchases        map[string]domain.Purchase        `json:"purchases"`
	Expenses         map[string]domain.Expense         `json:"expenses"`
	CashEntries      map[string]domain.CashEntry       `json:"cashEntries"`
	Staff            map[string]domain.Staff           `json:"staff"`
	Attendance       map[string]domain.Attendance      `json:"attendance"`
	StockAdjustments map[string]domain.StockAdjustment `json:"stockAdjustments"`
	Reminders        map[string]domain.Reminder        `json:"reminders"`
	Settings         map[string]domain.Setting         `json:"settings"`
	Outbox           []domain.MutationRecord           `json:"outbox"`
	Seq              uint64                            `json:"seq"`
}

type memoryState struct {
	inventory        map[string]domain.InventoryItem
	customers        map[string]domain.Customer
	invoices         map[string]domain.Invoice
	purchases        map[string]domain.Purchase
	expenses         map[string]domain.Expense
	cashEntries      map[string]domain.CashEntry
	staff            map[string]domain.Staff
	attendance       map[string]domain.Attendance
	stockAdjustments map[string]domain.StockAdjustment
	reminders        map[string]domain.Reminder
	settings         map[string]domain.Setting
	outbox           []domain.MutationRecord
	seq              uint64
}

func newMemoryState() memoryState {
	return memoryState{
		inventory:        make(map[string]domain.InventoryItem),
		customers:        make(map[string]domain.Customer),
		invoices:         make(map[string]domain.Invoice),
		purchases:        make(map[string]domain.Purchase),
		expenses:         make(map[string]domain.Expense),
		cashEntries:      make(map[string]domain.CashEntry),
		staff:            make(map[string]domain.Staff),
		attendance:       make(map[string]domain.Attendance),
		stockAdjustments: make(map[string]domain.StockAdjustment),
		reminders:        make(map[string]domain.Reminder),
		settings:         make(map[string]domain.Setting),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.inventory {
		cloned.inventory[k] = cloneItem(v)
	}
	for k, v := range s.customers {
		cloned.customers[k] = v
	}
	for k, v := range s.invoices {
		cloned.invoices[k] = cloneInvoice(v)
	}
	for k, v := range s.purchases {
		cloned.purchases[k] = clonePurchase(v)
	}
	for k, v := range s.expenses {
		cloned.expenses[k] = v
	}
	for k, v := range s.cashEntries {
		cloned.cashEntries[k] = v
	}
	for k, v := range s.staff {
		cloned.staff[k] = v
	}
	for k, v := range s.attendance {
		cloned.attendance[k] = v
	}
	for k, v := range s.stockAdjustments {
		cloned.stockAdjustments[k] = v
	}
	for k, v := range s.reminders {
		cloned.reminders[k] = v
	}
	for k, v := range s.settings {
		cloned.settings[k] = v
	}
	cloned.outbox = make([]domain.MutationRecord, 0, len(s.outbox))
	for _, m := range s.outbox {
		cloned.outbox = append(cloned.outbox, m.Clone())
	}
	cloned.seq = s.seq
	return cloned
}

func cloneItem(i domain.InventoryItem) domain.InventoryItem {
	cp := i
	cp.Variants = append([]domain.Variant(nil), i.Variants...)
	return cp
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	cp := inv
	cp.Items = append([]domain.LineItem(nil), inv.Items...)
	if inv.CustomerID != nil {
		id := *inv.CustomerID
		cp.CustomerID = &id
	}
	return cp
}

func clonePurchase(p domain.Purchase) domain.Purchase {
	cp := p
	cp.Items = append([]domain.PurchaseItem(nil), p.Items...)
	return cp
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Inventory:        make(map[string]domain.InventoryItem, len(state.inventory)),
		Customers:        make(map[string]domain.Customer, len(state.customers)),
		Invoices:         make(map[string]domain.Invoice, len(state.invoices)),
		Purchases:        make(map[string]domain.Purchase, len(state.purchases)),
		Expenses:         make(map[string]domain.Expense, len(state.expenses)),
		CashEntries:      make(map[string]domain.CashEntry, len(state.cashEntries)),
		Staff:            make(map[string]domain.Staff, len(state.staff)),
		Attendance:       make(map[string]domain.Attendance, len(state.attendance)),
		StockAdjustments: make(map[string]domain.StockAdjustment, len(state.stockAdjustments)),
		Reminders:        make(map[string]domain.Reminder, len(state.reminders)),
		Settings:         make(map[string]domain.Setting, len(state.settings)),
		Outbox:           make([]domain.MutationRecord, 0, len(state.outbox)),
		Seq:              state.seq,
	}
	for k, v := range state.inventory {
		s.Inventory[k] = cloneItem(v)
	}
	for k, v := range state.customers {
		s.Customers[k] = v
	}
	for k, v := range state.invoices {
		s.Invoices[k] = cloneInvoice(v)
	}
	for k, v := range state.purchases {
		s.Purchases[k] = clonePurchase(v)
	}
	for k, v := range state.expenses {
		s.Expenses[k] = v
	}
	for k, v := range state.cashEntries {
		s.CashEntries[k] = v
	}
	for k, v := range state.staff {
		s.Staff[k] = v
	}
	for k, v := range state.attendance {
		s.Attendance[k] = v
	}
	for k, v := range state.stockAdjustments {
		s.StockAdjustments[k] = v
	}
	for k, v := range state.reminders {
		s.Reminders[k] = v
	}
	for k, v := range state.settings {
		s.Settings[k] = v
	}
	for _, m := range state.outbox {
		s.Outbox = append(s.Outbox, m.Clone())
	}
	return s
}

func memoryStateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range snapshot.Inventory {
		state.inventory[k] = cloneItem(v)
	}
	for k, v := range snapshot.Customers {
		state.customers[k] = v
	}
	for k, v := range snapshot.Invoices {
		state.invoices[k] = cloneInvoice(v)
	}
	for k, v := range snapshot.Purchases {
		state.purchases[k] = clonePurchase(v)
	}
	for k, v := range snapshot.Expenses {
		state.expenses[k] = v
	}
	for k, v := range snapshot.CashEntries {
		state.cashEntries[k] = v
	}
	for k, v := range snapshot.Staff {
		state.staff[k] = v
	}
	for k, v := range snapshot.Attendance {
		state.attendance[k] = v
	}
	for k, v := range snapshot.StockAdjustments {
		state.stockAdjustments[k] = v
	}
	for k, v := range snapshot.Reminders {
		state.reminders[k] = v
	}
	for k, v := range snapshot.Settings {
		state.settings[k] = v
	}
	state.outbox = make([]domain.MutationRecord, 0, len(snapshot.Outbox))
	for _, m := range snapshot.Outbox {
		state.outbox = append(state.outbox, m.Clone())
	}
	state.seq = snapshot.Seq
	return state
}

func tableSetFromState(state memoryState) domain.TableSet {
	set := domain.TableSet{
		Inventory:        make([]domain.InventoryItem, 0, len(state.inventory)),
		Customers:        make([]domain.Customer, 0, len(state.customers)),
		Invoices:         make([]domain.Invoice, 0, len(state.invoices)),
		Purchases:        make([]domain.Purchase, 0, len(state.purchases)),
		Expenses:         make([]domain.Expense, 0, len(state.expenses)),
		CashEntries:      make([]domain.CashEntry, 0, len(state.cashEntries)),
		Staff:            make([]domain.Staff, 0, len(state.staff)),
		Attendance:       make([]domain.Attendance, 0, len(state.attendance)),
		StockAdjustments: make([]domain.StockAdjustment, 0, len(state.stockAdjustments)),
		Reminders:        make([]domain.Reminder, 0, len(state.reminders)),
		Settings:         make([]domain.Setting, 0, len(state.settings)),
	}
	for _, v := range state.inventory {
		set.Inventory = append(set.Inventory, cloneItem(v))
	}
	for _, v := range state.customers {
		set.Customers = append(set.Customers, v)
	}
	for _, v := range state.invoices {
		set.Invoices = append(set.Invoices, cloneInvoice(v))
	}
	for _, v := range state.purchases {
		set.Purchases = append(set.Purchases, clonePurchase(v))
	}
	for _, v := range state.expenses {
		set.Expenses = append(set.Expenses, v)
	}
	for _, v := range state.cashEntries {
		set.CashEntries = append(set.CashEntries, v)
	}
	for _, v := range state.staff {
		set.Staff = append(set.Staff, v)
	}
	for _, v := range state.attendance {
		set.Attendance = append(set.Attendance, v)
	}
	for _, v := range state.stockAdjustments {
		set.StockAdjustments = append(set.StockAdjustments, v)
	}
	for _, v := range state.reminders {
		set.Reminders = append(set.Reminders, v)
	}
	for _, v := range state.settings {
		set.Settings = append(set.Settings, v)
	}
	return set
}

func stateFromTableSet(set domain.TableSet) memoryState {
	state := newMemoryState()
	for _, v := range set.Inventory {
		state.inventory[v.ID] = cloneItem(v)
	}
	for _, v := range set.Customers {
		state.customers[v.ID] = v
	}
	for _, v := range set.Invoices {
		state.invoices[v.ID] = cloneInvoice(v)
	}
	for _, v := range set.Purchases {
		state.purchases[v.ID] = clonePurchase(v)
	}
	for _, v := range set.Expenses {
		state.expenses[v.ID] = v
	}
	for _, v := range set.CashEntries {
		state.cashEntries[v.ID] = v
	}
	for _, v := range set.Staff {
		state.staff[v.ID] = v
	}
	for _, v := range set.Attendance {
		state.attendance[v.ID] = v
	}
	for _, v := range set.StockAdjustments {
		state.stockAdjustments[v.ID] = v
	}
	for _, v := range set.Reminders {
		state.reminders[v.ID] = v
	}
	for _, v := range set.Settings {
		state.settings[v.Key] = v
	}
	return state
}
