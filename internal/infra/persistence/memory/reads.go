package memory

import (
	"sort"
	"time"

	"shopcore/pkg/domain"
)

// Committed-state read helpers. All results are clones; list order is
// unspecified except where a natural sort is documented.

// GetItem retrieves an inventory item by ID.
func (s *Store) GetItem(id string) (domain.InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.state.inventory[id]
	if !ok {
		return domain.InventoryItem{}, false
	}
	return cloneItem(i), true
}

// ListItems returns all inventory items.
func (s *Store) ListItems() []domain.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.InventoryItem, 0, len(s.state.inventory))
	for _, i := range s.state.inventory {
		out = append(out, cloneItem(i))
	}
	return out
}

// ListLowStockItems filters items at or below their reorder threshold. The
// boundary is inclusive.
func (s *Store) ListLowStockItems() []domain.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.InventoryItem
	for _, i := range s.state.inventory {
		if i.IsLowStock() {
			out = append(out, cloneItem(i))
		}
	}
	return out
}

// GetCustomer retrieves a customer by ID.
func (s *Store) GetCustomer(id string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.customers[id]
	return c, ok
}

// ListCustomers returns all customers.
func (s *Store) ListCustomers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, 0, len(s.state.customers))
	for _, c := range s.state.customers {
		out = append(out, c)
	}
	return out
}

// FindCustomerByPhone looks a customer up through the phone index.
func (s *Store) FindCustomerByPhone(phone string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.state.customers {
		if c.Phone == phone {
			return c, true
		}
	}
	return domain.Customer{}, false
}

// GetInvoice retrieves an invoice by ID.
func (s *Store) GetInvoice(id string) (domain.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.state.invoices[id]
	if !ok {
		return domain.Invoice{}, false
	}
	return cloneInvoice(inv), true
}

// ListInvoices returns all invoices.
func (s *Store) ListInvoices() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Invoice, 0, len(s.state.invoices))
	for _, inv := range s.state.invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out
}

// ListInvoicesByCustomer returns a customer's invoices sorted by creation time.
func (s *Store) ListInvoicesByCustomer(customerID string) []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Invoice
	for _, inv := range s.state.invoices {
		if inv.CustomerID != nil && *inv.CustomerID == customerID {
			out = append(out, cloneInvoice(inv))
		}
	}
	sortByCreatedAt(out, func(inv domain.Invoice) time.Time { return inv.CreatedAt })
	return out
}

// ListInvoicesBetween returns invoices with createdAt inside [start, end],
// inclusive on both ends, sorted by creation time.
func (s *Store) ListInvoicesBetween(start, end time.Time) []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Invoice
	for _, inv := range s.state.invoices {
		if inWindow(inv.CreatedAt, start, end) {
			out = append(out, cloneInvoice(inv))
		}
	}
	sortByCreatedAt(out, func(inv domain.Invoice) time.Time { return inv.CreatedAt })
	return out
}

// GetPurchase retrieves a purchase by ID.
func (s *Store) GetPurchase(id string) (domain.Purchase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.purchases[id]
	if !ok {
		return domain.Purchase{}, false
	}
	return clonePurchase(p), true
}

// ListPurchases returns all purchases.
func (s *Store) ListPurchases() []domain.Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Purchase, 0, len(s.state.purchases))
	for _, p := range s.state.purchases {
		out = append(out, clonePurchase(p))
	}
	return out
}

// GetExpense retrieves an expense by ID.
func (s *Store) GetExpense(id string) (domain.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.expenses[id]
	return e, ok
}

// ListExpenses returns all expenses.
func (s *Store) ListExpenses() []domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Expense, 0, len(s.state.expenses))
	for _, e := range s.state.expenses {
		out = append(out, e)
	}
	return out
}

// ListExpensesBetween returns expenses inside [start, end], inclusive.
func (s *Store) ListExpensesBetween(start, end time.Time) []domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Expense
	for _, e := range s.state.expenses {
		if inWindow(e.CreatedAt, start, end) {
			out = append(out, e)
		}
	}
	sortByCreatedAt(out, func(e domain.Expense) time.Time { return e.CreatedAt })
	return out
}

// GetCashEntry retrieves a cash entry by ID.
func (s *Store) GetCashEntry(id string) (domain.CashEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.cashEntries[id]
	return c, ok
}

// ListCashEntries returns all cash entries.
func (s *Store) ListCashEntries() []domain.CashEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CashEntry, 0, len(s.state.cashEntries))
	for _, c := range s.state.cashEntries {
		out = append(out, c)
	}
	return out
}

// ListCashEntriesBetween returns cash entries inside [start, end], inclusive.
func (s *Store) ListCashEntriesBetween(start, end time.Time) []domain.CashEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CashEntry
	for _, c := range s.state.cashEntries {
		if inWindow(c.CreatedAt, start, end) {
			out = append(out, c)
		}
	}
	sortByCreatedAt(out, func(c domain.CashEntry) time.Time { return c.CreatedAt })
	return out
}

// GetStaff retrieves a staff record by ID.
func (s *Store) GetStaff(id string) (domain.Staff, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state.staff[id]
	return st, ok
}

// ListStaff returns all staff records.
func (s *Store) ListStaff() []domain.Staff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Staff, 0, len(s.state.staff))
	for _, st := range s.state.staff {
		out = append(out, st)
	}
	return out
}

// GetAttendance retrieves an attendance record by ID.
func (s *Store) GetAttendance(id string) (domain.Attendance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.attendance[id]
	return a, ok
}

// ListAttendance returns all attendance records.
func (s *Store) ListAttendance() []domain.Attendance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attendance, 0, len(s.state.attendance))
	for _, a := range s.state.attendance {
		out = append(out, a)
	}
	return out
}

// ListAttendanceByStaff returns one staff member's records sorted by date.
func (s *Store) ListAttendanceByStaff(staffID string) []domain.Attendance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attendance
	for _, a := range s.state.attendance {
		if a.StaffID == staffID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ListStockAdjustments returns the audit trail sorted by creation time.
func (s *Store) ListStockAdjustments() []domain.StockAdjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StockAdjustment, 0, len(s.state.stockAdjustments))
	for _, sa := range s.state.stockAdjustments {
		out = append(out, sa)
	}
	sortByCreatedAt(out, func(sa domain.StockAdjustment) time.Time { return sa.CreatedAt })
	return out
}

// GetReminder retrieves a reminder by ID.
func (s *Store) GetReminder(id string) (domain.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.reminders[id]
	return r, ok
}

// ListReminders returns all reminders.
func (s *Store) ListReminders() []domain.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Reminder, 0, len(s.state.reminders))
	for _, r := range s.state.reminders {
		out = append(out, r)
	}
	return out
}

// GetSetting retrieves a setting by key.
func (s *Store) GetSetting(key string) (domain.Setting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state.settings[key]
	return st, ok
}

// ListSettings returns all settings.
func (s *Store) ListSettings() []domain.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Setting, 0, len(s.state.settings))
	for _, st := range s.state.settings {
		out = append(out, st)
	}
	return out
}

// inWindow reports whether t falls inside [start, end], both ends inclusive.
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func sortByCreatedAt[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).Before(at(items[j])) })
}
