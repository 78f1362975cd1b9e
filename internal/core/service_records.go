package core

import (
	"context"
	"time"
)

// Purchases --------------------------------------------------------------

// CreatePurchase records stock bought from a supplier.
func (s *Service) CreatePurchase(ctx context.Context, purchase Purchase) (created Purchase, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_purchase", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreatePurchase(purchase)
		return txErr
	})
	return created, res, err
}

// UpdatePurchase mutates a purchase using the provided mutator.
func (s *Service) UpdatePurchase(ctx context.Context, id string, mutator func(*Purchase) error) (updated Purchase, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_purchase", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdatePurchase(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeletePurchase removes a purchase.
func (s *Service) DeletePurchase(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_purchase", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeletePurchase(id)
	})
	return res, err
}

// GetPurchase retrieves a purchase by ID.
func (s *Service) GetPurchase(id string) (Purchase, bool) {
	return s.store.GetPurchase(id)
}

// ListPurchases returns all purchases.
func (s *Service) ListPurchases() []Purchase {
	return s.store.ListPurchases()
}

// Expenses ---------------------------------------------------------------

// CreateExpense records an outgoing amount.
func (s *Service) CreateExpense(ctx context.Context, expense Expense) (created Expense, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_expense", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateExpense(expense)
		return txErr
	})
	return created, res, err
}

// UpdateExpense mutates an expense using the provided mutator.
func (s *Service) UpdateExpense(ctx context.Context, id string, mutator func(*Expense) error) (updated Expense, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_expense", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateExpense(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_expense", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteExpense(id)
	})
	return res, err
}

// GetExpense retrieves an expense by ID.
func (s *Service) GetExpense(id string) (Expense, bool) {
	return s.store.GetExpense(id)
}

// ListExpenses returns all expenses.
func (s *Service) ListExpenses() []Expense {
	return s.store.ListExpenses()
}

// ListExpensesBetween returns expenses created inside [start, end], inclusive.
func (s *Service) ListExpensesBetween(start, end time.Time) []Expense {
	return s.store.ListExpensesBetween(start, end)
}

// Cash entries -----------------------------------------------------------

// CreateCashEntry records a manual cash drawer movement.
func (s *Service) CreateCashEntry(ctx context.Context, entry CashEntry) (created CashEntry, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_cash_entry", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateCashEntry(entry)
		return txErr
	})
	return created, res, err
}

// UpdateCashEntry mutates a cash entry using the provided mutator.
func (s *Service) UpdateCashEntry(ctx context.Context, id string, mutator func(*CashEntry) error) (updated CashEntry, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_cash_entry", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateCashEntry(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteCashEntry removes a cash entry.
func (s *Service) DeleteCashEntry(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_cash_entry", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteCashEntry(id)
	})
	return res, err
}

// GetCashEntry retrieves a cash entry by ID.
func (s *Service) GetCashEntry(id string) (CashEntry, bool) {
	return s.store.GetCashEntry(id)
}

// ListCashEntries returns all cash entries.
func (s *Service) ListCashEntries() []CashEntry {
	return s.store.ListCashEntries()
}

// ListCashEntriesBetween returns cash entries created inside [start, end].
func (s *Service) ListCashEntriesBetween(start, end time.Time) []CashEntry {
	return s.store.ListCashEntriesBetween(start, end)
}

// Staff ------------------------------------------------------------------

// CreateStaff persists a new staff member.
func (s *Service) CreateStaff(ctx context.Context, staff Staff) (created Staff, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_staff", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateStaff(staff)
		return txErr
	})
	return created, res, err
}

// UpdateStaff mutates a staff member using the provided mutator.
func (s *Service) UpdateStaff(ctx context.Context, id string, mutator func(*Staff) error) (updated Staff, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_staff", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateStaff(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteStaff removes a staff member.
func (s *Service) DeleteStaff(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_staff", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteStaff(id)
	})
	return res, err
}

// GetStaff retrieves a staff member by ID.
func (s *Service) GetStaff(id string) (Staff, bool) {
	return s.store.GetStaff(id)
}

// ListStaff returns all staff members.
func (s *Service) ListStaff() []Staff {
	return s.store.ListStaff()
}

// Attendance -------------------------------------------------------------

// MarkAttendance records one staff member's status for one calendar day.
// The record ID derives from the staff/day pair, so marking the same pair
// twice fails with a duplicate-key error; use UpdateAttendance to correct a
// recorded day.
func (s *Service) MarkAttendance(ctx context.Context, att Attendance) (created Attendance, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("mark_attendance", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateAttendance(att)
		return txErr
	})
	return created, res, err
}

// UpdateAttendance mutates an attendance record using the provided mutator.
func (s *Service) UpdateAttendance(ctx context.Context, id string, mutator func(*Attendance) error) (updated Attendance, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_attendance", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateAttendance(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteAttendance removes an attendance record.
func (s *Service) DeleteAttendance(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_attendance", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteAttendance(id)
	})
	return res, err
}

// GetAttendance retrieves an attendance record by ID.
func (s *Service) GetAttendance(id string) (Attendance, bool) {
	return s.store.GetAttendance(id)
}

// ListAttendance returns all attendance records.
func (s *Service) ListAttendance() []Attendance {
	return s.store.ListAttendance()
}

// ListAttendanceByStaff returns one staff member's records ordered by date.
func (s *Service) ListAttendanceByStaff(staffID string) []Attendance {
	return s.store.ListAttendanceByStaff(staffID)
}

// Stock adjustments ------------------------------------------------------

// ListStockAdjustments returns the stock adjustment audit trail.
func (s *Service) ListStockAdjustments() []StockAdjustment {
	return s.store.ListStockAdjustments()
}

// Reminders --------------------------------------------------------------

// CreateReminder persists a new reminder.
func (s *Service) CreateReminder(ctx context.Context, reminder Reminder) (created Reminder, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_reminder", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateReminder(reminder)
		return txErr
	})
	return created, res, err
}

// UpdateReminder mutates a reminder using the provided mutator.
func (s *Service) UpdateReminder(ctx context.Context, id string, mutator func(*Reminder) error) (updated Reminder, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_reminder", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateReminder(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteReminder removes a reminder.
func (s *Service) DeleteReminder(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_reminder", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteReminder(id)
	})
	return res, err
}

// GetReminder retrieves a reminder by ID.
func (s *Service) GetReminder(id string) (Reminder, bool) {
	return s.store.GetReminder(id)
}

// ListReminders returns all reminders.
func (s *Service) ListReminders() []Reminder {
	return s.store.ListReminders()
}

// Settings ---------------------------------------------------------------

// PutSetting upserts a key/value setting.
func (s *Service) PutSetting(ctx context.Context, setting Setting) (stored Setting, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("put_setting", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		stored, txErr = tx.PutSetting(setting)
		return txErr
	})
	return stored, res, err
}

// DeleteSetting removes a setting by key.
func (s *Service) DeleteSetting(ctx context.Context, key string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_setting", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteSetting(key)
	})
	return res, err
}

// GetSetting retrieves a setting by key.
func (s *Service) GetSetting(key string) (Setting, bool) {
	return s.store.GetSetting(key)
}

// ListSettings returns all settings.
func (s *Service) ListSettings() []Setting {
	return s.store.ListSettings()
}
