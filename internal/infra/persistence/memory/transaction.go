package memory

import (
	"errors"
	"time"

	"shopcore/pkg/domain"
)

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []domain.Change
	now     time.Time
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// stampCreate fills creator-side timestamps. A caller-provided CreatedAt is
// preserved so imported records keep their original history.
func (tx *transaction) stampCreate(base *domain.Base) {
	if base.CreatedAt.IsZero() {
		base.CreatedAt = tx.now
	}
	base.UpdatedAt = tx.now
}

// clampVariantStock enforces the stock floor: variant stock never goes
// negative, deductions bottom out at zero.
func clampVariantStock(item *domain.InventoryItem) {
	for i := range item.Variants {
		if item.Variants[i].Stock < 0 {
			item.Variants[i].Stock = 0
		}
	}
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) domain.RuleView {
	return transactionView{state: state}
}

func (v transactionView) ListItems() []domain.InventoryItem {
	out := make([]domain.InventoryItem, 0, len(v.state.inventory))
	for _, i := range v.state.inventory {
		out = append(out, cloneItem(i))
	}
	return out
}

func (v transactionView) FindItem(id string) (domain.InventoryItem, bool) {
	i, ok := v.state.inventory[id]
	if !ok {
		return domain.InventoryItem{}, false
	}
	return cloneItem(i), true
}

func (v transactionView) FindCustomer(id string) (domain.Customer, bool) {
	c, ok := v.state.customers[id]
	return c, ok
}

func (v transactionView) FindStaff(id string) (domain.Staff, bool) {
	st, ok := v.state.staff[id]
	return st, ok
}

// Inventory --------------------------------------------------------------

// CreateItem stores a new inventory item within the transaction.
func (tx *transaction) CreateItem(item domain.InventoryItem) (domain.InventoryItem, error) {
	if item.ID == "" {
		item.ID = tx.store.newID()
	}
	if _, exists := tx.state.inventory[item.ID]; exists {
		return domain.InventoryItem{}, domain.ErrDuplicateKey{Table: domain.TableInventory, ID: item.ID}
	}
	tx.stampCreate(&item.Base)
	clampVariantStock(&item)
	tx.state.inventory[item.ID] = cloneItem(item)
	tx.recordChange(domain.Change{Table: domain.TableInventory, RecordID: item.ID, Action: domain.ActionCreate, After: cloneItem(item)})
	return cloneItem(item), nil
}

// UpdateItem mutates an inventory item using the provided mutator function.
func (tx *transaction) UpdateItem(id string, mutator func(*domain.InventoryItem) error) (domain.InventoryItem, error) {
	current, ok := tx.state.inventory[id]
	if !ok {
		return domain.InventoryItem{}, domain.ErrNotFound{Table: domain.TableInventory, ID: id}
	}
	before := cloneItem(current)
	if err := mutator(&current); err != nil {
		return domain.InventoryItem{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	clampVariantStock(&current)
	tx.state.inventory[id] = cloneItem(current)
	tx.recordChange(domain.Change{Table: domain.TableInventory, RecordID: id, Action: domain.ActionUpdate, Before: before, After: cloneItem(current)})
	return cloneItem(current), nil
}

// DeleteItem removes an inventory item from the transaction state.
func (tx *transaction) DeleteItem(id string) error {
	current, ok := tx.state.inventory[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableInventory, ID: id}
	}
	delete(tx.state.inventory, id)
	tx.recordChange(domain.Change{Table: domain.TableInventory, RecordID: id, Action: domain.ActionDelete, Before: cloneItem(current)})
	return nil
}

// Customers --------------------------------------------------------------

// CreateCustomer stores a new customer.
func (tx *transaction) CreateCustomer(c domain.Customer) (domain.Customer, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.customers[c.ID]; exists {
		return domain.Customer{}, domain.ErrDuplicateKey{Table: domain.TableCustomers, ID: c.ID}
	}
	tx.stampCreate(&c.Base)
	tx.state.customers[c.ID] = c
	tx.recordChange(domain.Change{Table: domain.TableCustomers, RecordID: c.ID, Action: domain.ActionCreate, After: c})
	return c, nil
}

// UpdateCustomer mutates an existing customer.
func (tx *transaction) UpdateCustomer(id string, mutator func(*domain.Customer) error) (domain.Customer, error) {
	current, ok := tx.state.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrNotFound{Table: domain.TableCustomers, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Customer{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.customers[id] = current
	tx.recordChange(domain.Change{Table: domain.TableCustomers, RecordID: id, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteCustomer removes a customer from state.
func (tx *transaction) DeleteCustomer(id string) error {
	current, ok := tx.state.customers[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableCustomers, ID: id}
	}
	delete(tx.state.customers, id)
	tx.recordChange(domain.Change{Table: domain.TableCustomers, RecordID: id, Action: domain.ActionDelete, Before: current})
	return nil
}

// Invoices ---------------------------------------------------------------

// CreateInvoice stores a completed sale. Totals are fixed here and never
// recomputed afterwards.
func (tx *transaction) CreateInvoice(inv domain.Invoice) (domain.Invoice, error) {
	if inv.ID == "" {
		inv.ID = tx.store.newID()
	}
	if _, exists := tx.state.invoices[inv.ID]; exists {
		return domain.Invoice{}, domain.ErrDuplicateKey{Table: domain.TableInvoices, ID: inv.ID}
	}
	tx.stampCreate(&inv.Base)
	tx.state.invoices[inv.ID] = cloneInvoice(inv)
	tx.recordChange(domain.Change{Table: domain.TableInvoices, RecordID: inv.ID, Action: domain.ActionCreate, After: cloneInvoice(inv)})
	return cloneInvoice(inv), nil
}

// UpdateInvoice mutates an existing invoice. Callers are expected to restrict
// themselves to status and payment fields; the service layer enforces that.
func (tx *transaction) UpdateInvoice(id string, mutator func(*domain.Invoice) error) (domain.Invoice, error) {
	current, ok := tx.state.invoices[id]
	if !ok {
		return domain.Invoice{}, domain.ErrNotFound{Table: domain.TableInvoices, ID: id}
	}
	before := cloneInvoice(current)
	if err := mutator(&current); err != nil {
		return domain.Invoice{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.invoices[id] = cloneInvoice(current)
	tx.recordChange(domain.Change{Table: domain.TableInvoices, RecordID: id, Action: domain.ActionUpdate, Before: before, After: cloneInvoice(current)})
	return cloneInvoice(current), nil
}

// DeleteInvoice removes an invoice from state.
func (tx *transaction) DeleteInvoice(id string) error {
	current, ok := tx.state.invoices[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableInvoices, ID: id}
	}
	delete(tx.state.invoices, id)
	tx.recordChange(domain.Change{Table: domain.TableInvoices, RecordID: id, Action: domain.ActionDelete, Before: cloneInvoice(current)})
	return nil
}

// Purchases --------------------------------------------------------------

// CreatePurchase stores a procurement record.
func (tx *transaction) CreatePurchase(p domain.Purchase) (domain.Purchase, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.purchases[p.ID]; exists {
		return domain.Purchase{}, domain.ErrDuplicateKey{Table: domain.TablePurchases, ID: p.ID}
	}
	tx.stampCreate(&p.Base)
	tx.state.purchases[p.ID] = clonePurchase(p)
	tx.recordChange(domain.Change{Table: domain.TablePurchases, RecordID: p.ID, Action: domain.ActionCreate, After: clonePurchase(p)})
	return clonePurchase(p), nil
}

// UpdatePurchase mutates an existing purchase.
func (tx *transaction) UpdatePurchase(id string, mutator func(*domain.Purchase) error) (domain.Purchase, error) {
	current, ok := tx.state.purchases[id]
	if !ok {
		return domain.Purchase{}, domain.ErrNotFound{Table: domain.TablePurchases, ID: id}
	}
	before := clonePurchase(current)
	if err := mutator(&current); err != nil {
		return domain.Purchase{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.purchases[id] = clonePurchase(current)
	tx.recordChange(domain.Change{Table: domain.TablePurchases, RecordID: id, Action: domain.ActionUpdate, Before: before, After: clonePurchase(current)})
	return clonePurchase(current), nil
}

// DeletePurchase removes a purchase from state.
func (tx *transaction) DeletePurchase(id string) error {
	current, ok := tx.state.purchases[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TablePurchases, ID: id}
	}
	delete(tx.state.purchases, id)
	tx.recordChange(domain.Change{Table: domain.TablePurchases, RecordID: id, Action: domain.ActionDelete, Before: clonePurchase(current)})
	return nil
}

// Expenses ---------------------------------------------------------------

// CreateExpense stores an expense record.
func (tx *transaction) CreateExpense(e domain.Expense) (domain.Expense, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.expenses[e.ID]; exists {
		return domain.Expense{}, domain.ErrDuplicateKey{Table: domain.TableExpenses, ID: e.ID}
	}
	tx.stampCreate(&e.Base)
	tx.state.expenses[e.ID] = e
	tx.recordChange(domain.Change{Table: domain.TableExpenses, RecordID: e.ID, Action: domain.ActionCreate, After: e})
	return e, nil
}

// UpdateExpense mutates an expense.
func (tx *transaction) UpdateExpense(id string, mutator func(*domain.Expense) error) (domain.Expense, error) {
	current, ok := tx.state.expenses[id]
	if !ok {
		return domain.Expense{}, domain.ErrNotFound{Table: domain.TableExpenses, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Expense{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.expenses[id] = current
	tx.recordChange(domain.Change{Table: domain.TableExpenses, RecordID: id, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteExpense removes an expense.
func (tx *transaction) DeleteExpense(id string) error {
	current, ok := tx.state.expenses[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableExpenses, ID: id}
	}
	delete(tx.state.expenses, id)
	tx.recordChange(domain.Change{Table: domain.TableExpenses, RecordID: id, Action: domain.ActionDelete, Before: current})
	return nil
}

// Cash entries -----------------------------------------------------------

// CreateCashEntry stores a manual cash movement.
func (tx *transaction) CreateCashEntry(c domain.CashEntry) (domain.CashEntry, error) {
	if c.Type != domain.CashIn && c.Type != domain.CashOut {
		return domain.CashEntry{}, errors.New("cash entry type must be in or out")
	}
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.cashEntries[c.ID]; exists {
		return domain.CashEntry{}, domain.ErrDuplicateKey{Table: domain.TableCashEntries, ID: c.ID}
	}
	tx.stampCreate(&c.Base)
	tx.state.cashEntries[c.ID] = c
	tx.recordChange(domain.Change{Table: domain.TableCashEntries, RecordID: c.ID, Action: domain.ActionCreate, After: c})
	return c, nil
}

// UpdateCashEntry mutates a cash entry.
func (tx *transaction) UpdateCashEntry(id string, mutator func(*domain.CashEntry) error) (domain.CashEntry, error) {
	current, ok := tx.state.cashEntries[id]
	if !ok {
		return domain.CashEntry{}, domain.ErrNotFound{Table: domain.TableCashEntries, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.CashEntry{}, err
	}
	if current.Type != domain.CashIn && current.Type != domain.CashOut {
		return domain.CashEntry{}, errors.New("cash entry type must be in or out")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.cashEntries[id] = current
	tx.recordChange(domain.Change{Table: domain.TableCashEntries, RecordID: id, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteCashEntry removes a cash entry.
func (tx *transaction) DeleteCashEntry(id string) error {
	current, ok := tx.state.cashEntries[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableCashEntries, ID: id}
	}
	delete(tx.state.cashEntries, id)
	tx.recordChange(domain.Change{Table: domain.TableCashEntries, RecordID: id, Action: domain.ActionDelete, Before: current})
	return nil
}

// Staff ------------------------------------------------------------------

// CreateStaff stores a staff record.
func (tx *transaction) CreateStaff(st domain.Staff) (domain.Staff, error) {
	if st.ID == "" {
		st.ID = tx.store.newID()
	}
	if _, exists := tx.state.staff[st.ID]; exists {
		return domain.Staff{}, domain.ErrDuplicateKey{Table: domain.TableStaff, ID: st.ID}
	}
	tx.stampCreate(&st.Base)
	tx.state.staff[st.ID] = st
	tx.recordChange(domain.Change{Table: domain.TableStaff, RecordID: st.ID, Action: domain.ActionCreate, After: st})
	return st, nil
}

// UpdateStaff mutates a staff record.
func (tx *transaction) UpdateStaff(id string, mutator func(*domain.Staff) error) (domain.Staff, error) {
	current, ok := tx.state.staff[id]
	if !ok {
		return domain.Staff{}, domain.ErrNotFound{Table: domain.TableStaff, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Staff{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.staff[id] = current
	tx.recordChange(domain.Change{Table: domain.TableStaff, RecordID: id, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteStaff removes a staff record.
func (tx *transaction) DeleteStaff(id string) error {
	current, ok := tx.state.staff[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableStaff, ID: id}
	}
	delete(tx.state.staff, id)
	tx.recordChange(domain.Change{Table: domain.TableStaff, RecordID: id, Action: domain.ActionDelete, Before: current})
	return nil
}

// Attendance -------------------------------------------------------------

// CreateAttendance stores one staff member's status for one day. The record
// key derives from (staff, date), so a second entry for the same pair fails
// with a duplicate key.
func (tx *transaction) CreateAttendance(a domain.Attendance) (domain.Attendance, error) {
	if a.StaffID == "" || a.Date == "" {
		return domain.Attendance{}, errors.New("attendance requires staffId and date")
	}
	if a.ID == "" {
		a.ID = domain.AttendanceKey(a.StaffID, a.Date)
	}
	if _, exists := tx.state.attendance[a.ID]; exists {
		return domain.Attendance{}, domain.ErrDuplicateKey{Table: domain.TableAttendance, ID: a.ID}
	}
	tx.stampCreate(&a.Base)
	tx.state.attendance[a.ID] = a
	tx.recordChange(domain.Change{Table: domain.TableAttendance, RecordID: a.ID, Action: domain.ActionCreate, After: a})
	return a, nil
}

// UpdateAttendance mutates an attendance record.
func (tx *transaction) UpdateAttendance(id string, mutator func(*domain.Attendance) error) (domain.Attendance, error) {
	current, ok := tx.state.attendance[id]
	if !ok {
		return domain.Attendance{}, domain.ErrNotFound{Table: domain.TableAttendance, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Attendance{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.attendance[id] = current
	tx.recordChange(domain.Change{Table: domain.TableAttendance, RecordID: id, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteAttendance removes an attendance record.
func (tx *transaction) DeleteAttendance(id string) error {
	current, ok := tx.state.attendance[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableAttendance, ID: id}
	}
	delete(tx.state.attendance, id)
	tx.recordChange(domain.Change{Table: domain.TableAttendance, RecordID: id, Action: domain.ActionDelete, Before: current})
	return nil
}

// Stock adjustments ------------------------------------------------------

// CreateStockAdjustment appends an audit entry for a stock delta. The trail
// is append-only; there is no update operation.
func (tx *transaction) CreateStockAdjustment(sa domain.StockAdjustment) (domain.StockAdjustment, error) {
	if sa.ID == "" {
		sa.ID = tx.store.newID()
	}
	if _, exists := tx.state.stockAdjustments[sa.ID]; exists {
		return domain.StockAdjustment{}, domain.ErrDuplicateKey{Table: domain.TableStockAdjustments, ID: sa.ID}
	}
	tx.stampCreate(&sa.Base)
	tx.state.stockAdjustments[sa.ID] = sa
	tx.recordChange(domain.Change{Table: domain.TableStockAdjustments, RecordID: sa.ID, Action: domain.ActionCreate, After: sa})
	return sa, nil
}

// DeleteStockAdjustment removes an audit entry.
func (tx *transaction) DeleteStockAdjustment(id string) error {
	current, ok := tx.state.stockAdjustments[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableStockAdjustments, ID: id}
	}
	delete(tx.state.stockAdjustments, id)
	tx.recordChange(domain.Change{Table: domain.TableStockAdjustments, RecordID: id, Action: domain.ActionDelete, Before: current})
	return nil
}

// Reminders --------------------------------------------------------------

// CreateReminder stores a reminder.
func (tx *transaction) CreateReminder(r domain.Reminder) (domain.Reminder, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.reminders[r.ID]; exists {
		return domain.Reminder{}, domain.ErrDuplicateKey{Table: domain.TableReminders, ID: r.ID}
	}
	tx.stampCreate(&r.Base)
	tx.state.reminders[r.ID] = r
	tx.recordChange(domain.Change{Table: domain.TableReminders, RecordID: r.ID, Action: domain.ActionCreate, After: r})
	return r, nil
}

// UpdateReminder mutates a reminder.
func (tx *transaction) UpdateReminder(id string, mutator func(*domain.Reminder) error) (domain.Reminder, error) {
	current, ok := tx.state.reminders[id]
	if !ok {
		return domain.Reminder{}, domain.ErrNotFound{Table: domain.TableReminders, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Reminder{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.reminders[id] = current
	tx.recordChange(domain.Change{Table: domain.TableReminders, RecordID: id, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteReminder removes a reminder.
func (tx *transaction) DeleteReminder(id string) error {
	current, ok := tx.state.reminders[id]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableReminders, ID: id}
	}
	delete(tx.state.reminders, id)
	tx.recordChange(domain.Change{Table: domain.TableReminders, RecordID: id, Action: domain.ActionDelete, Before: current})
	return nil
}

// Settings ---------------------------------------------------------------

// PutSetting upserts a key/value pair. The queue records a create for new
// keys and an update for overwritten ones.
func (tx *transaction) PutSetting(st domain.Setting) (domain.Setting, error) {
	if st.Key == "" {
		return domain.Setting{}, errors.New("setting key required")
	}
	action := domain.ActionCreate
	var before any
	if prev, exists := tx.state.settings[st.Key]; exists {
		action = domain.ActionUpdate
		before = prev
	}
	st.UpdatedAt = tx.now
	tx.state.settings[st.Key] = st
	tx.recordChange(domain.Change{Table: domain.TableSettings, RecordID: st.Key, Action: action, Before: before, After: st})
	return st, nil
}

// DeleteSetting removes a key.
func (tx *transaction) DeleteSetting(key string) error {
	current, ok := tx.state.settings[key]
	if !ok {
		return domain.ErrNotFound{Table: domain.TableSettings, ID: key}
	}
	delete(tx.state.settings, key)
	tx.recordChange(domain.Change{Table: domain.TableSettings, RecordID: key, Action: domain.ActionDelete, Before: current})
	return nil
}

// Transactional finders --------------------------------------------------

// FindItem retrieves an item from the transactional state.
func (tx *transaction) FindItem(id string) (domain.InventoryItem, bool) {
	i, ok := tx.state.inventory[id]
	if !ok {
		return domain.InventoryItem{}, false
	}
	return cloneItem(i), true
}

// FindCustomer retrieves a customer from the transactional state.
func (tx *transaction) FindCustomer(id string) (domain.Customer, bool) {
	c, ok := tx.state.customers[id]
	return c, ok
}

// FindInvoice retrieves an invoice from the transactional state.
func (tx *transaction) FindInvoice(id string) (domain.Invoice, bool) {
	inv, ok := tx.state.invoices[id]
	if !ok {
		return domain.Invoice{}, false
	}
	return cloneInvoice(inv), true
}
