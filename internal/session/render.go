package session

import (
	"fmt"
	"strings"

	"order-app/internal/model"
	"order-app/internal/service"
)

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (c *Console) products(items []model.Item) {
	c.Frame(" ", Center("Order APP Products", 75))
	c.Frame(".", Spread("Code - Product", "Price (EUR)", 80, " "))

	var b strings.Builder
	for _, it := range items {
		if it.Stock > 0 {
			left := fmt.Sprintf("%-3d - %s ", it.ID, it.Name)
			fmt.Fprintln(&b, Spread(left, fmt.Sprintf(" %8s", money(it.Price)), 76, "."))
		} else {
			fmt.Fprintf(&b, "%-3d - %s - currently not available on stock.\n", it.ID, it.Name)
		}
	}
	if len(items) == 0 {
		b.WriteString("There are no products yet.\n")
	}
	c.Say(strings.TrimRight(b.String(), "\n") + "\n")
}

func (c *Console) inventory(items []model.Item) {
	for _, it := range items {
		c.Printf("ID: %d | Product: %s | price: %s | on stock: %d\n", it.ID, it.Name, money(it.Price), it.Stock)
	}
}

// discountNote describes a discount that is or will be applied.
func discountNote(kind model.DiscountKind, percent int64, total float64) []string {
	switch kind {
	case model.DiscountCoupon:
		return []string{
			fmt.Sprintf("Coupon discount (%d%%) will be applied on total amount.", percent),
			fmt.Sprintf("Total: %s EUR", money(total)),
		}
	case model.DiscountWholesale:
		return []string{
			fmt.Sprintf("Wholesale discount (%d%%) will be applied on total amount.", percent),
			fmt.Sprintf("Total: %s EUR", money(total)),
		}
	default:
		return nil
	}
}

func orderText(lines []service.OrderLine, subtotal, total float64, status model.OrderStatus, kind model.DiscountKind, percent int64) string {
	var b strings.Builder
	b.WriteString("Items: \n")
	for _, l := range lines {
		fmt.Fprintf(&b, "%s x %d pieces\n", l.Name, l.Quantity)
	}
	fmt.Fprintf(&b, "\ntotal: %s EUR | status: %s\n", money(subtotal), status)
	for _, note := range discountNote(kind, percent, total) {
		b.WriteString(note + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Console) receipt(r *service.Receipt) {
	c.Frame(".", Center("Order APP", Width))
	c.Printf("Receipt number: %d\n", r.OrderID)
	c.Printf("Registered Customer: %s\n", r.Customer)
	c.Printf("Date: %s | Time: %s\n", r.IssuedAt.Format("02/01/2006"), r.IssuedAt.Format("15:04:05"))
	c.Printf("%80s\n", "EUR")
	for _, l := range r.Lines {
		c.Frame(".", Spread(fmt.Sprintf("%s x %d", l.Name, l.Quantity), money(l.Amount), 76, " "))
	}

	switch r.Discount {
	case model.DiscountCoupon:
		c.Printf("Total: %73s\n", money(r.Subtotal))
		c.Printf("Coupon discount %d%% used for this order.\n", r.Percent)
		c.Say(fmt.Sprintf("New Total: %69s", money(r.Total)))
	case model.DiscountWholesale:
		c.Printf("Total: %73s\n", money(r.Subtotal))
		c.Printf("Wholesale discount (%d%%) applied on total amount.\n", r.Percent)
		c.Say(fmt.Sprintf("New Total: %69s", money(r.Total)))
	default:
		c.Say(fmt.Sprintf("Total: %73s", money(r.Total)))
	}
}
