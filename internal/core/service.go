package core

import (
	"context"
	"log/slog"
	"time"
)

// Service is the CRUD gateway: the sole mutation path into the store. Every
// successful mutating call changes the record collection and the mutation
// queue inside one store commit.
type Service struct {
	store   PersistentStore
	log     *slog.Logger
	metrics MetricsRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics attaches an operation metrics recorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) {
		s.metrics = rec
	}
}

// NewService constructs a gateway backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

func (s *Service) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.RecordOperation(op, time.Since(start), status)
	}
	if err != nil {
		s.log.Warn("gateway operation failed", "op", op, "err", err)
	}
}

// DayWindow returns the inclusive bounds of the calendar day containing t in
// t's location: 00:00:00.000 through 23:59:59.999.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// Inventory --------------------------------------------------------------

// CreateItem persists a new inventory item.
func (s *Service) CreateItem(ctx context.Context, item InventoryItem) (created InventoryItem, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_item", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateItem(item)
		return txErr
	})
	return created, res, err
}

// UpdateItem mutates an inventory item using the provided mutator.
func (s *Service) UpdateItem(ctx context.Context, id string, mutator func(*InventoryItem) error) (updated InventoryItem, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_item", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateItem(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteItem removes an inventory item.
func (s *Service) DeleteItem(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_item", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteItem(id)
	})
	return res, err
}

// GetItem retrieves an inventory item by ID.
func (s *Service) GetItem(id string) (InventoryItem, bool) {
	return s.store.GetItem(id)
}

// ListItems returns all inventory items.
func (s *Service) ListItems() []InventoryItem {
	return s.store.ListItems()
}

// ListLowStockItems returns items at or below their reorder threshold.
func (s *Service) ListLowStockItems() []InventoryItem {
	return s.store.ListLowStockItems()
}

// Customers --------------------------------------------------------------

// CreateCustomer persists a new customer.
func (s *Service) CreateCustomer(ctx context.Context, customer Customer) (created Customer, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_customer", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateCustomer(customer)
		return txErr
	})
	return created, res, err
}

// UpdateCustomer mutates a customer using the provided mutator.
func (s *Service) UpdateCustomer(ctx context.Context, id string, mutator func(*Customer) error) (updated Customer, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("update_customer", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateCustomer(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteCustomer removes a customer.
func (s *Service) DeleteCustomer(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_customer", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteCustomer(id)
	})
	return res, err
}

// GetCustomer retrieves a customer by ID.
func (s *Service) GetCustomer(id string) (Customer, bool) {
	return s.store.GetCustomer(id)
}

// ListCustomers returns all customers.
func (s *Service) ListCustomers() []Customer {
	return s.store.ListCustomers()
}

// FindCustomerByPhone looks a customer up through the phone index.
func (s *Service) FindCustomerByPhone(phone string) (Customer, bool) {
	return s.store.FindCustomerByPhone(phone)
}

// Invoices ---------------------------------------------------------------

// CreateInvoice persists an invoice whose totals the caller has already
// computed. Most callers should prefer RecordSale, which also maintains
// stock and customer running totals.
func (s *Service) CreateInvoice(ctx context.Context, invoice Invoice) (created Invoice, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("create_invoice", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateInvoice(invoice)
		return txErr
	})
	return created, res, err
}

// DeleteInvoice removes an invoice.
func (s *Service) DeleteInvoice(ctx context.Context, id string) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe("delete_invoice", start, err) }()
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteInvoice(id)
	})
	return res, err
}

// GetInvoice retrieves an invoice by ID.
func (s *Service) GetInvoice(id string) (Invoice, bool) {
	return s.store.GetInvoice(id)
}

// ListInvoices returns all invoices.
func (s *Service) ListInvoices() []Invoice {
	return s.store.ListInvoices()
}

// ListInvoicesByCustomer returns one customer's invoices in creation order.
func (s *Service) ListInvoicesByCustomer(customerID string) []Invoice {
	return s.store.ListInvoicesByCustomer(customerID)
}

// ListInvoicesBetween returns invoices created inside [start, end], inclusive.
func (s *Service) ListInvoicesBetween(start, end time.Time) []Invoice {
	return s.store.ListInvoicesBetween(start, end)
}

// ListInvoicesOn returns invoices created on the calendar day containing date.
func (s *Service) ListInvoicesOn(date time.Time) []Invoice {
	start, end := DayWindow(date)
	return s.store.ListInvoicesBetween(start, end)
}

// ListInvoicesToday returns invoices created today, local time.
func (s *Service) ListInvoicesToday() []Invoice {
	return s.ListInvoicesOn(time.Now())
}

// Mutation queue ---------------------------------------------------------

// PendingMutations returns the queue in insertion order without draining it.
func (s *Service) PendingMutations() []MutationRecord {
	return s.store.PendingMutations()
}

// AcknowledgeMutation removes a queue item after successful remote replay.
func (s *Service) AcknowledgeMutation(id string) (err error) {
	start := time.Now()
	defer func() { s.observe("acknowledge_mutation", start, err) }()
	err = s.store.AcknowledgeMutation(id)
	return err
}

// MarkMutationAttempt increments a queue item's attempt counter.
func (s *Service) MarkMutationAttempt(id string) (err error) {
	start := time.Now()
	defer func() { s.observe("mark_mutation_attempt", start, err) }()
	err = s.store.MarkMutationAttempt(id)
	return err
}
