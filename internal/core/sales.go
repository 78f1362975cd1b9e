package core

import (
	"context"
	"fmt"
	"time"

	"shopcore/pkg/domain"
)

// SaleLine identifies one sold variant and quantity.
type SaleLine struct {
	ItemID   string
	Size     string
	Color    string
	Quantity int
}

// SaleInput describes a sale to record. A nil CustomerID is a walk-in sale.
type SaleInput struct {
	OwnerID       string
	InvoiceNumber string
	CustomerID    *string
	Lines         []SaleLine
	Discount      float64
	TaxAmount     float64
	PaymentMode   string
	AmountPaid    float64
}

// InvoiceStatus derives the payment status from totals.
func InvoiceStatus(grandTotal, amountPaid float64) string {
	switch {
	case amountPaid >= grandTotal:
		return domain.InvoiceStatusPaid
	case amountPaid > 0:
		return domain.InvoiceStatusPartial
	default:
		return domain.InvoiceStatusUnpaid
	}
}

// RecordSale records a completed sale in one transaction: each sold variant's
// stock is deducted (clamped at zero) and the item's salesCount raised, the
// invoice is created with totals fixed from current selling prices, and a
// known customer's running totals are advanced. The queue receives one item
// per touched record, so a single-item walk-in sale enqueues exactly an item
// update and an invoice create.
func (s *Service) RecordSale(ctx context.Context, input SaleInput) (invoice Invoice, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("record_sale", start, err) }()
	if len(input.Lines) == 0 {
		err = fmt.Errorf("sale requires at least one line")
		return Invoice{}, Result{}, err
	}
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		lineItems := make([]LineItem, 0, len(input.Lines))
		subtotal := 0.0

		// Group quantities per item so one item sold across several
		// variants still produces a single update.
		perItem := make(map[string][]SaleLine)
		order := make([]string, 0, len(input.Lines))
		for _, line := range input.Lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("sale line for %s has non-positive quantity %d", line.ItemID, line.Quantity)
			}
			if _, seen := perItem[line.ItemID]; !seen {
				order = append(order, line.ItemID)
			}
			perItem[line.ItemID] = append(perItem[line.ItemID], line)
		}

		for _, itemID := range order {
			lines := perItem[itemID]
			item, ok := tx.FindItem(itemID)
			if !ok {
				return domain.ErrNotFound{Table: domain.TableInventory, ID: itemID}
			}
			sold := 0
			for _, line := range lines {
				sold += line.Quantity
				lineTotal := item.SellingPrice * float64(line.Quantity)
				lineItems = append(lineItems, LineItem{
					ItemID:    itemID,
					Name:      item.Name,
					Quantity:  line.Quantity,
					UnitPrice: item.SellingPrice,
					LineTotal: lineTotal,
				})
				subtotal += lineTotal
			}
			if _, txErr := tx.UpdateItem(itemID, func(it *InventoryItem) error {
				for _, line := range lines {
					deductVariantStock(it, line.Size, line.Color, line.Quantity)
				}
				it.SalesCount += sold
				return nil
			}); txErr != nil {
				return txErr
			}
		}

		grandTotal := subtotal + input.TaxAmount - input.Discount
		dueAmount := grandTotal - input.AmountPaid
		invoice = Invoice{
			OwnerID:       input.OwnerID,
			InvoiceNumber: input.InvoiceNumber,
			CustomerID:    input.CustomerID,
			Items:         lineItems,
			Subtotal:      subtotal,
			TaxAmount:     input.TaxAmount,
			Discount:      input.Discount,
			GrandTotal:    grandTotal,
			PaymentMode:   input.PaymentMode,
			AmountPaid:    input.AmountPaid,
			DueAmount:     dueAmount,
			Status:        InvoiceStatus(grandTotal, input.AmountPaid),
		}
		var txErr error
		invoice, txErr = tx.CreateInvoice(invoice)
		if txErr != nil {
			return txErr
		}

		if input.CustomerID != nil {
			if _, txErr := tx.UpdateCustomer(*input.CustomerID, func(c *Customer) error {
				c.TotalPurchases += grandTotal
				if dueAmount > 0 {
					c.OutstandingCredit += dueAmount
				}
				return nil
			}); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, res, err
	}
	return invoice, res, nil
}

func deductVariantStock(item *InventoryItem, size, color string, qty int) {
	for i := range item.Variants {
		v := &item.Variants[i]
		if v.Size != size || v.Color != color {
			continue
		}
		v.Stock -= qty
		if v.Stock < 0 {
			v.Stock = 0
		}
		return
	}
}

// SettleInvoicePayment applies a payment against an invoice. Only payment
// fields and status change; line items and totals stay fixed. A known
// customer's outstanding credit shrinks by the cleared amount.
func (s *Service) SettleInvoicePayment(ctx context.Context, invoiceID string, amount float64) (updated Invoice, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("settle_invoice_payment", start, err) }()
	if amount <= 0 {
		err = fmt.Errorf("payment amount must be positive")
		return Invoice{}, Result{}, err
	}
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var cleared float64
		var customerID *string
		var txErr error
		updated, txErr = tx.UpdateInvoice(invoiceID, func(inv *Invoice) error {
			if inv.DueAmount <= 0 {
				return fmt.Errorf("invoice %s has no due amount", invoiceID)
			}
			cleared = amount
			if cleared > inv.DueAmount {
				cleared = inv.DueAmount
			}
			inv.AmountPaid += cleared
			inv.DueAmount -= cleared
			inv.Status = InvoiceStatus(inv.GrandTotal, inv.AmountPaid)
			customerID = inv.CustomerID
			return nil
		})
		if txErr != nil {
			return txErr
		}
		if customerID != nil && cleared > 0 {
			if _, txErr := tx.UpdateCustomer(*customerID, func(c *Customer) error {
				c.OutstandingCredit -= cleared
				if c.OutstandingCredit < 0 {
					c.OutstandingCredit = 0
				}
				return nil
			}); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, res, err
	}
	return updated, res, nil
}

// AdjustStock applies a manual stock delta to one variant and appends a
// StockAdjustment audit record, both in the same transaction. Negative deltas
// clamp the variant at zero.
func (s *Service) AdjustStock(ctx context.Context, itemID, size, color string, delta int, reason string) (adjusted InventoryItem, res Result, err error) {
	start := time.Now()
	defer func() { s.observe("adjust_stock", start, err) }()
	if delta == 0 {
		err = fmt.Errorf("stock adjustment delta must be non-zero")
		return InventoryItem{}, Result{}, err
	}
	res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		adjusted, txErr = tx.UpdateItem(itemID, func(it *InventoryItem) error {
			if delta < 0 {
				deductVariantStock(it, size, color, -delta)
				return nil
			}
			for i := range it.Variants {
				v := &it.Variants[i]
				if v.Size == size && v.Color == color {
					v.Stock += delta
					return nil
				}
			}
			it.Variants = append(it.Variants, Variant{Size: size, Color: color, Stock: delta})
			return nil
		})
		if txErr != nil {
			return txErr
		}
		_, txErr = tx.CreateStockAdjustment(StockAdjustment{
			ItemID: itemID,
			Delta:  delta,
			Reason: reason,
		})
		return txErr
	})
	if err != nil {
		return InventoryItem{}, res, err
	}
	return adjusted, res, nil
}
