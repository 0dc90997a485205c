// Package services contains stateless domain services for the ordering
// bounded context. They operate purely on domain types.
package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

// TaxScheme selects how GST is presented on a bill.
type TaxScheme string

const (
	// TaxSingle shows one GST line at 5%.
	TaxSingle TaxScheme = "single"
	// TaxSplit shows CGST and SGST at 2.5% each, used on thermal receipts.
	TaxSplit TaxScheme = "split"
)

// GST rate as an integer fraction: 5/100.
const (
	gstNum = 5
	gstDen = 100
	// half of GST, 25/1000 = 2.5%
	halfGSTNum = 25
	halfGSTDen = 1000
)

// ParseTaxScheme reads a scheme name; empty means single.
func ParseTaxScheme(s string) (TaxScheme, error) {
	switch TaxScheme(s) {
	case "", TaxSingle:
		return TaxSingle, nil
	case TaxSplit:
		return TaxSplit, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidTaxScheme, s)
	}
}

// BillLine is one grouped line on a bill.
type BillLine struct {
	Name   string      `json:"name"`
	Price  money.Money `json:"price"`
	Qty    int         `json:"qty"`
	Amount money.Money `json:"amount"`
}

// Tax holds the tax lines. Single-rate bills fill GST; split-rate bills
// fill CGST and SGST. GST always carries the combined tax.
type Tax struct {
	GST  money.Money `json:"gst"`
	CGST money.Money `json:"cgst,omitempty"`
	SGST money.Money `json:"sgst,omitempty"`
}

// Bill is a computed, read-only view of an order.
type Bill struct {
	OrderID      uuid.UUID          `json:"order_id"`
	Restaurant   *models.Restaurant `json:"restaurant,omitempty"`
	TableNo      int                `json:"table_no"`
	CustomerName string             `json:"customer_name,omitempty"`
	Status       models.OrderStatus `json:"status"`
	Scheme       TaxScheme          `json:"scheme"`
	Lines        []BillLine         `json:"lines"`
	Subtotal     money.Money        `json:"subtotal"`
	Tax          Tax                `json:"tax"`
	Total        money.Money        `json:"total"`
}

// GroupLines merges items by exact name in first-seen order. A grouped line
// keeps the price of the first entry with that name; later entries only add
// their quantity even if their captured price differs.
func GroupLines(items []models.LineItem) []BillLine {
	index := make(map[string]int, len(items))
	lines := make([]BillLine, 0, len(items))
	for _, li := range items {
		if i, ok := index[li.Name]; ok {
			lines[i].Qty += li.Qty
			continue
		}
		index[li.Name] = len(lines)
		lines = append(lines, BillLine{Name: li.Name, Price: li.Price, Qty: li.Qty})
	}
	for i := range lines {
		lines[i].Amount = lines[i].Price.Mul(lines[i].Qty)
	}
	return lines
}

// ComputeTax applies GST to subtotal under scheme. SGST is derived from the
// rounded combined tax so that CGST+SGST always equals the single-rate GST.
func ComputeTax(subtotal money.Money, scheme TaxScheme) (Tax, error) {
	gst := subtotal.ApplyRate(gstNum, gstDen)
	switch scheme {
	case TaxSingle:
		return Tax{GST: gst}, nil
	case TaxSplit:
		cgst := subtotal.ApplyRate(halfGSTNum, halfGSTDen)
		// S=1.00 gives cgst 0.03 and sgst 0.02; rounding sgst alone would give 0.03.
		return Tax{GST: gst, CGST: cgst, SGST: gst - cgst}, nil
	default:
		return Tax{}, fmt.Errorf("%w: %q", domain.ErrInvalidTaxScheme, scheme)
	}
}

// ComputeBill builds the bill for o. It never modifies o.
func ComputeBill(o *models.Order, scheme TaxScheme) (*Bill, error) {
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	lines := GroupLines(o.Items)

	var subtotal money.Money
	for _, l := range lines {
		subtotal += l.Amount
	}

	tax, err := ComputeTax(subtotal, scheme)
	if err != nil {
		return nil, err
	}

	return &Bill{
		OrderID:      o.ID,
		TableNo:      o.TableNo,
		CustomerName: o.CustomerName,
		Status:       o.Status,
		Scheme:       scheme,
		Lines:        lines,
		Subtotal:     subtotal,
		Tax:          tax,
		Total:        subtotal + tax.GST,
	}, nil
}
