package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"order-app/internal/model"
)

// popularCount is how many items the popularity report lists.
const popularCount = 3

// AllOrders lists every saved order.
func (h *Handlers) AllOrders(ctx context.Context, req *Request) error {
	summaries, err := h.reports.AllOrders(ctx, req.Session.Account)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		h.console.Say("There is no saved orders. ☻")
		return nil
	}

	h.console.Frame(" ", "Made orders:")
	for _, s := range summaries {
		h.console.Printf("Order %d (%s) - User '%s' ordered:\n", s.Order.ID, s.Order.Status, s.Username)
		for _, l := range s.Lines {
			h.console.Printf("%s x %d\n", l.Name, l.Quantity)
		}
		h.console.Frame("_", fmt.Sprintf("Total: %s EUR", money(s.Order.Total)))
	}
	return h.console.Pause()
}

// Brutto prints the sum of all order totals.
func (h *Handlers) Brutto(ctx context.Context, req *Request) error {
	total, err := h.reports.Brutto(ctx, req.Session.Account)
	if err != nil {
		return err
	}
	h.console.Say(fmt.Sprintf("Brutto of all orders is %s EUR.", money(total)))
	return nil
}

// Paid prints the sum of paid order totals.
func (h *Handlers) Paid(ctx context.Context, req *Request) error {
	total, err := h.reports.Paid(ctx, req.Session.Account)
	if err != nil {
		return err
	}
	h.console.Say(fmt.Sprintf("Brutto money paid: %s EUR.", money(total)))
	return nil
}

// PopularItems prints the best selling products.
func (h *Handlers) PopularItems(ctx context.Context, req *Request) error {
	popular, err := h.reports.PopularItems(ctx, req.Session.Account, popularCount)
	if err != nil {
		return err
	}
	if len(popular) == 0 {
		h.console.Say("Nothing has been ordered yet. ☻")
		return nil
	}

	h.console.Frame("_", "Three most popular products are:")
	for _, p := range popular {
		h.console.Printf("Product: %s | sold: %d pieces.\n", p.Item.Name, p.Quantity)
	}
	return nil
}

// UsedCoupons lists users who redeemed their coupon.
func (h *Handlers) UsedCoupons(ctx context.Context, req *Request) error {
	owners, err := h.reports.UsedCoupons(ctx, req.Session.Account)
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		h.console.Say("There is no users with used coupons. ♫")
		return nil
	}
	for _, o := range owners {
		h.console.Frame("_", fmt.Sprintf("User %s used coupon: %s", o.Username, o.Coupon))
	}
	return h.console.Pause()
}

// ActiveCoupons lists users who can still redeem their coupon.
func (h *Handlers) ActiveCoupons(ctx context.Context, req *Request) error {
	owners, err := h.reports.ActiveCoupons(ctx, req.Session.Account)
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		h.console.Say("There is no users with active coupons. ♫")
		return nil
	}
	for _, o := range owners {
		h.console.Frame(".", fmt.Sprintf("%s has active coupon %s", o.Username, o.Coupon))
	}
	return h.console.Pause()
}

// AddItem adds a product to the catalog.
func (h *Handlers) AddItem(ctx context.Context, req *Request) error {
	name, err := h.console.Prompt("Enter new product`s name or 'q' to quit >> ")
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "q") {
		return nil
	}

	price, ok, err := h.askFloat(
		"Enter new product`s price or 'q' to quit >> ",
		"Not valid price value. Enter new product`s price or 'q' to quit >> ",
		"q")
	if err != nil || !ok {
		return err
	}

	stock, ok, err := h.askInt(
		"Enter stock count or 'q' to quit >> ",
		"Invalid stock value. Enter stock count or 'q' to quit >> ",
		"q", 0)
	if err != nil || !ok {
		return err
	}

	item, err := h.catalog.Create(ctx, req.Session.Account, name, price, stock)
	if err != nil {
		return err
	}
	h.console.Say(fmt.Sprintf("New Item added! ☻ (ID: %d)", item.ID))
	return nil
}

// UpdateItem sets a product's price and stock.
func (h *Handlers) UpdateItem(ctx context.Context, req *Request) error {
	itemID, ok, err := h.chooseItem(ctx, "Enter products ID or 'q' to quit >> ")
	if err != nil || !ok {
		return err
	}

	price, ok, err := h.askFloat(
		"Enter new price or 'q' to quit >> ",
		"Wrong price value. Enter new price or 'q' to quit >> ",
		"q")
	if err != nil || !ok {
		return err
	}

	stock, ok, err := h.askInt(
		"Enter new count on stock or 'q' to quit >> ",
		"Invalid stock value. Enter new count on stock or 'q' to quit >> ",
		"q", 0)
	if err != nil || !ok {
		return err
	}

	if _, err := h.catalog.Update(ctx, req.Session.Account, itemID, price, stock); err != nil {
		return err
	}
	h.console.Say("Item updated! ☻")
	return nil
}

// DeleteItem removes a product after confirmation.
func (h *Handlers) DeleteItem(ctx context.Context, req *Request) error {
	for {
		itemID, ok, err := h.chooseItem(ctx, "Enter Product`s ID you want to delete or 'q' to quit >> ")
		if err != nil || !ok {
			return err
		}

		item, err := h.catalog.Lookup(ctx, itemID)
		if err != nil {
			return err
		}

		yes, err := h.console.Confirm(
			fmt.Sprintf("Are you sure you want to delete %s? Y/N >> ", item.Name),
			fmt.Sprintf("Enter Y for YES or N for NO. Are you sure you want to delete %s? Y/N >> ", item.Name))
		if err != nil {
			return err
		}
		if !yes {
			h.console.Frame(".", "Going back...")
			continue
		}

		if err := h.catalog.Delete(ctx, req.Session.Account, itemID); err != nil {
			return err
		}
		h.console.Say("Item deleted! ☻")
		return nil
	}
}

// chooseItem prints the inventory and asks for an existing item id.
func (h *Handlers) chooseItem(ctx context.Context, prompt string) (int, bool, error) {
	items, err := h.catalog.List(ctx)
	if err != nil {
		return 0, false, err
	}
	h.console.inventory(items)

	for {
		id, ok, err := h.askInt(prompt, "Invalid ID. "+prompt, "q", 1)
		if err != nil || !ok {
			return 0, false, err
		}
		_, err = h.catalog.Lookup(ctx, id)
		if err == nil {
			return id, true, nil
		}
		if !errors.Is(err, model.ErrItemNotFound) {
			return 0, false, err
		}
		prompt = "Invalid ID. " + prompt
	}
}

// LockUser prevents a user from logging in.
func (h *Handlers) LockUser(ctx context.Context, req *Request) error {
	return h.setLocked(ctx, req, true)
}

// UnlockUser lifts a lock.
func (h *Handlers) UnlockUser(ctx context.Context, req *Request) error {
	return h.setLocked(ctx, req, false)
}

func (h *Handlers) setLocked(ctx context.Context, req *Request, locked bool) error {
	accounts, err := h.accounts.List(ctx, req.Session.Account)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		state := "active"
		if a.Locked {
			state = "locked"
		}
		h.console.Printf("ID: %d | User: %s | email: %s | %s\n", a.ID, a.Username, a.Email, state)
	}

	userID, ok, err := h.askInt(
		"Enter user ID or 'q' to quit >> ",
		"Invalid ID. Enter user ID or 'q' to quit >> ",
		"q", 1)
	if err != nil || !ok {
		return err
	}

	if locked {
		err = h.accounts.Lock(ctx, req.Session.Account, userID)
	} else {
		err = h.accounts.Unlock(ctx, req.Session.Account, userID)
	}
	if err != nil {
		return err
	}

	if locked {
		h.console.Say(fmt.Sprintf("User %d locked.", userID))
	} else {
		h.console.Say(fmt.Sprintf("User %d unlocked.", userID))
	}
	return nil
}
