// Package domain defines the persistent retail entities, value types, and
// rule evaluation primitives used by shopcore.
package domain

import "time"

// Base contains common fields for all domain records. IDs are opaque strings
// generated by the creator; the store never assigns keys on its own beyond
// filling a blank ID at creation time.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Variant is a sellable variation of an inventory item (size/color) with its
// own stock count. Stock never goes negative; deductions clamp at zero.
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

// InventoryItem represents a product tracked by the shop.
type InventoryItem struct {
	Base
	OwnerID           string    `json:"ownerId"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	SellingPrice      float64   `json:"sellingPrice"`
	CostPrice         float64   `json:"costPrice"`
	Variants          []Variant `json:"variants"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	SalesCount        int       `json:"salesCount"`
}

// TotalStock sums stock across all variants.
func (i InventoryItem) TotalStock() int {
	total := 0
	for _, v := range i.Variants {
		total += v.Stock
	}
	return total
}

// IsLowStock reports whether the item is at or below its reorder threshold.
// The boundary is inclusive: total stock equal to the threshold is low stock.
func (i InventoryItem) IsLowStock() bool {
	return i.TotalStock() <= i.LowStockThreshold
}

// Customer represents a known buyer. TotalPurchases and OutstandingCredit are
// running totals mutated by invoice creation, never recomputed from history.
type Customer struct {
	Base
	OwnerID           string  `json:"ownerId"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	Email             string  `json:"email"`
	Address           string  `json:"address"`
	TotalPurchases    float64 `json:"totalPurchases"`
	OutstandingCredit float64 `json:"outstandingCredit"`
}

// LineItem is a single invoice line. LineTotal is fixed at creation time.
type LineItem struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Invoice statuses.
const (
	InvoiceStatusPaid    = "paid"
	InvoiceStatusPartial = "partial"
	InvoiceStatusUnpaid  = "unpaid"
)

// Invoice is a completed sale. Totals are computed once at creation and are
// immutable afterwards; only status and payment fields may change.
// A nil CustomerID means a walk-in sale.
type Invoice struct {
	Base
	OwnerID       string     `json:"ownerId"`
	InvoiceNumber string     `json:"invoiceNumber"`
	CustomerID    *string    `json:"customerId"`
	Items         []LineItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	TaxAmount     float64    `json:"taxAmount"`
	Discount      float64    `json:"discount"`
	GrandTotal    float64    `json:"grandTotal"`
	PaymentMode   string     `json:"paymentMode"`
	AmountPaid    float64    `json:"amountPaid"`
	DueAmount     float64    `json:"dueAmount"`
	Status        string     `json:"status"`
}

// TotalQuantity sums line-item quantities.
func (inv Invoice) TotalQuantity() int {
	total := 0
	for _, li := range inv.Items {
		total += li.Quantity
	}
	return total
}

// PurchaseItem is a single procurement line.
type PurchaseItem struct {
	ItemID   string  `json:"itemId"`
	Quantity int     `json:"qty"`
	UnitCost float64 `json:"unitCost"`
}

// Purchase records stock bought from a supplier.
type Purchase struct {
	Base
	SupplierName string         `json:"supplierName"`
	Items        []PurchaseItem `json:"items"`
	TotalCost    float64        `json:"totalCost"`
}

// Expense is a dated outgoing amount, consumed by the aggregation engine.
type Expense struct {
	Base
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
}

// CashEntryType distinguishes manual cash movements.
type CashEntryType string

// Cash entry directions.
const (
	CashIn  CashEntryType = "in"
	CashOut CashEntryType = "out"
)

// CashEntry is a manual cash drawer movement.
type CashEntry struct {
	Base
	Amount float64       `json:"amount"`
	Type   CashEntryType `json:"type"`
	Note   string        `json:"note"`
}

// Staff represents an employee.
type Staff struct {
	Base
	OwnerID string  `json:"ownerId"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Role    string  `json:"role"`
	Salary  float64 `json:"salary"`
}

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLeave   = "leave"
)

// Attendance records one staff member's status for one calendar day.
// Date uses the YYYY-MM-DD form; (StaffID, Date) is unique.
type Attendance struct {
	Base
	StaffID string `json:"staffId"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

// AttendanceKey derives the canonical record key for a staff/day pair.
func AttendanceKey(staffID, date string) string {
	return staffID + "#" + date
}

// StockAdjustment is an append-only audit entry for a stock delta.
type StockAdjustment struct {
	Base
	ItemID string `json:"itemId"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// Reminder is a dated note shown to the shop owner.
type Reminder struct {
	Base
	Title   string    `json:"title"`
	Message string    `json:"message"`
	DueAt   time.Time `json:"dueAt"`
	Done    bool      `json:"done"`
}

// Setting is an arbitrary key/value pair with no further schema.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
