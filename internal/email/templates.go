package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/ec-fulfillment/internal/domain/order"
)

// OrderConfirmation is what the confirmation mail renders.
type OrderConfirmation struct {
	OrderID      string
	CustomerName string
	Items        []order.Item
	Subtotal     string
	Tax          string
	Discount     string
	Total        string
	ShipTo       string
}

// ConfirmationFromEvent builds the mail model from an OrderPlaced payload.
func ConfirmationFromEvent(e order.OrderPlaced) OrderConfirmation {
	a := e.ShippingAddress
	shipTo := strings.Join(nonEmpty(a.Line1, a.Line2, a.City, a.Region, a.PostalCode, a.Country), ", ")
	return OrderConfirmation{
		OrderID:      e.OrderID,
		CustomerName: e.CustomerName,
		Items:        e.Items,
		Subtotal:     e.Subtotal.String(),
		Tax:          e.Tax.String(),
		Discount:     e.Discount.String(),
		Total:        e.Total.String(),
		ShipTo:       shipTo,
	}
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// ShortID is the order number shown to customers.
func ShortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(c OrderConfirmation) string {
	var itemsHTML strings.Builder
	for _, item := range c.Items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID
		}
		fmt.Fprintf(&itemsHTML,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #2f4858; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order, %s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
		<p style="margin: 5px 0 20px 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Item</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Unit price</th>
					<th style="padding: 12px; text-align: right;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<table style="width: 100%%; text-align: right;">
			<tr><td>Subtotal</td><td>%s</td></tr>
			<tr><td>Tax</td><td>%s</td></tr>
			<tr><td>Discount</td><td>-%s</td></tr>
			<tr><td style="font-weight: bold;">Total</td><td style="font-weight: bold;">%s</td></tr>
		</table>

		<p style="margin-top: 20px;">Shipping to: %s</p>
	</div>
</body>
</html>`,
		html.EscapeString(c.CustomerName),
		html.EscapeString(ShortID(c.OrderID)),
		itemsHTML.String(),
		c.Subtotal, c.Tax, c.Discount, c.Total,
		html.EscapeString(c.ShipTo),
	)
}
