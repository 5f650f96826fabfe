package pos

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Receipt is the view model returned after a successful checkout.
type Receipt struct {
	Number       string        `json:"number"`
	Date         time.Time     `json:"date"`
	Lines        []ReceiptLine `json:"lines"`
	GrossAmount  float64       `json:"gross_amount"`
	Discount     float64       `json:"discount"`
	NetAmount    float64       `json:"net_amount"`
	GrossDisplay string        `json:"gross_display"`
	NetDisplay   string        `json:"net_display"`
	PaymentState PaymentStatus `json:"payment_status"`
}

// ReceiptLine is one printed line.
type ReceiptLine struct {
	Name            string  `json:"name"`
	SKU             string  `json:"sku"`
	Qty             int64   `json:"qty"`
	Price           float64 `json:"price"`
	Subtotal        float64 `json:"subtotal"`
	SubtotalDisplay string  `json:"subtotal_display"`
}

var receiptPrinter = message.NewPrinter(language.Indonesian)

func formatRupiah(amount float64) string {
	return receiptPrinter.Sprintf("Rp%v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

func buildReceipt(order SalesOrder) Receipt {
	receipt := Receipt{
		Number:       order.Number,
		Date:         order.OrderDate,
		GrossAmount:  order.GrossAmount,
		Discount:     order.Discount,
		NetAmount:    order.NetAmount,
		GrossDisplay: formatRupiah(order.GrossAmount),
		NetDisplay:   formatRupiah(order.NetAmount),
		PaymentState: order.PaymentStatus,
	}
	for _, line := range order.Lines {
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			Name:            line.Name,
			SKU:             line.SKU,
			Qty:             line.Qty,
			Price:           line.Price,
			Subtotal:        line.Subtotal,
			SubtotalDisplay: formatRupiah(line.Subtotal),
		})
	}
	return receipt
}
