package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"order-app/internal/export"
	"order-app/internal/model"
	"order-app/internal/service"

	"github.com/rs/zerolog"
)

// errLogout ends the menu loop and returns to the welcome screen.
var errLogout = errors.New("logout")

// Handlers holds the menu commands.
type Handlers struct {
	console  *Console
	catalog  service.CatalogService
	orders   service.OrderService
	accounts service.AccountService
	reports  service.ReportService
	exporter export.Writer
	pricer   *service.Pricer
	logger   zerolog.Logger
}

// NewHandlers creates the menu commands.
func NewHandlers(
	console *Console,
	catalog service.CatalogService,
	orders service.OrderService,
	accounts service.AccountService,
	reports service.ReportService,
	exporter export.Writer,
	pricer *service.Pricer,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		console:  console,
		catalog:  catalog,
		orders:   orders,
		accounts: accounts,
		reports:  reports,
		exporter: exporter,
		pricer:   pricer,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Register adds every menu option to r.
func (h *Handlers) Register(r *Router) {
	r.Handle(Option{Key: "A", Label: "Make Order (or continue current one)"}, h.MakeOrder)
	r.Handle(Option{Key: "B", Label: "My Cart"}, h.ShowCart)
	r.Handle(Option{Key: "C", Label: "Clear my Cart"}, h.ClearCart)
	r.Handle(Option{Key: "D", Label: "Save Order"}, h.SaveOrder)
	r.Handle(Option{Key: "E", Label: "Cancel saved Order"}, h.CancelOrder)
	r.Handle(Option{Key: "F", Label: "My saved Orders"}, h.SavedOrders)
	r.Handle(Option{Key: "G", Label: "Go to Payments"}, h.Pay)
	r.Handle(Option{Key: "H", Label: "Show my coupon status"}, h.CouponStatus)
	r.Handle(Option{Key: "I", Label: "Show all Products"}, h.Products)
	r.Handle(Option{Key: "J", Label: "Get my order in Excel File"}, h.Export)
	r.Handle(Option{Key: "K", Label: "Logout"}, h.Logout)

	r.Handle(Option{Key: "L", Label: "List all orders", Admin: true}, h.AllOrders)
	r.Handle(Option{Key: "M", Label: "Total amount of all orders", Admin: true}, h.Brutto)
	r.Handle(Option{Key: "N", Label: "Money on account", Admin: true}, h.Paid)
	r.Handle(Option{Key: "O", Label: "Most popular Products", Admin: true}, h.PopularItems)
	r.Handle(Option{Key: "P", Label: "Used Coupons", Admin: true}, h.UsedCoupons)
	r.Handle(Option{Key: "Q", Label: "Users with unused Coupons", Admin: true}, h.ActiveCoupons)
	r.Handle(Option{Key: "R", Label: "Add New Product", Admin: true}, h.AddItem)
	r.Handle(Option{Key: "S", Label: "Update Product", Admin: true}, h.UpdateItem)
	r.Handle(Option{Key: "T", Label: "Delete Product", Admin: true}, h.DeleteItem)
	r.Handle(Option{Key: "U", Label: "Lock User", Admin: true}, h.LockUser)
	r.Handle(Option{Key: "V", Label: "Unlock User", Admin: true}, h.UnlockUser)
}

// MakeOrder lets the user pick products into the cart.
func (h *Handlers) MakeOrder(ctx context.Context, req *Request) error {
	items, err := h.catalog.List(ctx)
	if err != nil {
		return err
	}
	h.console.products(items)

	cart := req.Session.Cart
	for {
		h.console.Frame("_", "Pick a Product.")
		itemID, ok, err := h.askInt(
			"Enter item code to add it to cart or 'f' to finish >> ",
			"Invalid item code. Enter item code to add it to cart or 'f' to finish >> ",
			"f", 1)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		qty, ok, err := h.askInt(
			"Enter quantity (integer number) or 'f' to finish >> ",
			"Invalid input. Enter quantity (integer number) or 'f' to finish >> ",
			"f", 1)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		item, err := h.orders.AddToCart(ctx, cart, itemID, qty)
		switch {
		case errors.Is(err, model.ErrItemNotFound):
			h.console.Say("Invalid item code.")
		case errors.Is(err, model.ErrInsufficientStock):
			h.console.Say(fmt.Sprintf("Selected quantity (%d) is not available on stock.", qty))
		case err != nil:
			return err
		default:
			h.console.Frame(" ", fmt.Sprintf("Picked %s, %d pieces", item.Name, qty))
		}
	}

	if !cart.Empty() {
		h.console.Say("Order stored in Cart. Save your order to confirm and make your payment. ☻")
	}
	return nil
}

// ShowCart prints the priced cart.
func (h *Handlers) ShowCart(ctx context.Context, req *Request) error {
	if req.Session.Cart.Empty() {
		h.console.Say(model.ErrEmptyCart.Message)
		return h.console.Pause()
	}

	q, err := h.orders.Quote(ctx, req.Session.Account, req.Session.Cart, false)
	if err != nil {
		return err
	}
	total := q.Total.InexactFloat64()
	h.console.Say(orderText(q.Lines, q.Subtotal.InexactFloat64(), total, model.StatusPending, q.Discount, h.pricer.Percent(q.Discount)))
	return h.console.Pause()
}

// ClearCart drops the cart.
func (h *Handlers) ClearCart(_ context.Context, req *Request) error {
	if req.Session.Cart.Empty() {
		h.console.Say("Your cart is already empty! ☻")
		return nil
	}
	req.Session.Cart.Clear()
	h.console.Say("You have cleared your cart. ♫")
	return nil
}

// SaveOrder persists the cart, optionally redeeming the coupon.
func (h *Handlers) SaveOrder(ctx context.Context, req *Request) error {
	if req.Session.Cart.Empty() {
		h.console.Say("You have no active orders. ♫")
		return nil
	}

	useCoupon, err := h.wantsCoupon(ctx, req.Session.Account)
	if err != nil {
		return err
	}

	order, err := h.orders.Save(ctx, req.Session.Account, req.Session.Cart, useCoupon)
	if err != nil {
		return err
	}
	h.console.Say(fmt.Sprintf("Order %d saved.", order.ID), "Go to payments section ☻")
	return nil
}

// wantsCoupon asks whether the unused coupon should be applied and checks
// the token the user types.
func (h *Handlers) wantsCoupon(ctx context.Context, account *model.Account) (bool, error) {
	coupon, err := h.accounts.CouponStatus(ctx, account.ID)
	if err != nil {
		return false, err
	}
	if coupon.Used {
		h.console.Say("You have no active coupons.")
		return false, nil
	}

	percent := h.pricer.Percent(model.DiscountCoupon)
	for {
		yes, err := h.console.Confirm(
			fmt.Sprintf("Do you want to use your %d%% coupon? Y or N >> ", percent),
			fmt.Sprintf("Please enter Y for 'YES' or N for 'NO'. Do you want to use your %d%% coupon? >> ", percent))
		if err != nil || !yes {
			return false, err
		}

		for {
			token, err := h.console.Prompt("Enter your coupon (press 'c' to see your coupon number or 'q' to go back) >> ")
			if err != nil {
				return false, err
			}
			token = strings.TrimSpace(token)
			if token == coupon.Value {
				return true, nil
			}
			if strings.EqualFold(token, "c") {
				h.console.Say("Your coupon: " + coupon.Value)
				continue
			}
			if strings.EqualFold(token, "q") {
				h.console.Frame(".", "Going back...")
				break
			}
			h.console.Say(model.ErrInvalidCoupon.Message)
		}
	}
}

// CancelOrder reverses one of the saved orders.
func (h *Handlers) CancelOrder(ctx context.Context, req *Request) error {
	orderID, ok, err := h.chooseSavedOrder(ctx, req.Session)
	if err != nil || !ok {
		return err
	}

	if err := h.orders.Cancel(ctx, req.Session.Account, orderID); err != nil {
		return err
	}
	h.console.Say("Your order has been erased.")
	return nil
}

// SavedOrders lists orders waiting for payment.
func (h *Handlers) SavedOrders(ctx context.Context, req *Request) error {
	if _, err := h.showSavedOrders(ctx, req.Session); err != nil {
		return err
	}
	return h.console.Pause()
}

func (h *Handlers) showSavedOrders(ctx context.Context, s *Session) ([]int, error) {
	orders, err := h.accounts.SavedOrders(ctx, s.Account.ID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		h.console.Say("You have no saved orders. ☻")
		return nil, nil
	}

	h.console.Frame(" ", "Your saved orders:")
	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		if err := h.showOrder(ctx, s, o); err != nil {
			return nil, err
		}
		ids = append(ids, o.ID)
	}
	return ids, nil
}

func (h *Handlers) showOrder(ctx context.Context, s *Session, o model.Order) error {
	r, err := h.orders.Receipt(ctx, s.Account, o.ID)
	if err != nil {
		return err
	}
	h.console.Frame("_", fmt.Sprintf("order ID: %d", o.ID), orderText(r.Lines, r.Subtotal, r.Total, o.Status, r.Discount, r.Percent))
	return nil
}

// chooseSavedOrder lists saved orders and asks for one of their ids.
func (h *Handlers) chooseSavedOrder(ctx context.Context, s *Session) (int, bool, error) {
	ids, err := h.showSavedOrders(ctx, s)
	if err != nil || len(ids) == 0 {
		return 0, false, err
	}
	return h.chooseID(ids)
}

func (h *Handlers) chooseID(ids []int) (int, bool, error) {
	prompt := "Enter order ID or 'q' to quit >> "
	for {
		id, ok, err := h.askInt(prompt, "Invalid order ID! Enter order ID or 'q' to quit >> ", "q", 1)
		if err != nil || !ok {
			return 0, false, err
		}
		for _, candidate := range ids {
			if candidate == id {
				return id, true, nil
			}
		}
		prompt = "Invalid order ID! Enter order ID or 'q' to quit >> "
	}
}

// Pay settles a saved order and offers a receipt.
func (h *Handlers) Pay(ctx context.Context, req *Request) error {
	h.console.Frame(".", "Pick Order by ID to make payment.")
	orderID, ok, err := h.chooseSavedOrder(ctx, req.Session)
	if err != nil || !ok {
		return err
	}

	if _, err := h.orders.Pay(ctx, req.Session.Account, orderID); err != nil {
		return err
	}
	h.console.Say(fmt.Sprintf("You have paid your order: %d. ☻", orderID))

	wanted, err := h.console.Confirm("Do you want to print your receipt? Y or N >> ", "Press 'Y' for YES or 'N' for NO. >> ")
	if err != nil || !wanted {
		return err
	}

	receipt, err := h.orders.Receipt(ctx, req.Session.Account, orderID)
	if err != nil {
		return err
	}
	h.console.receipt(receipt)
	return h.console.Pause()
}

// CouponStatus tells whether the coupon can still be used.
func (h *Handlers) CouponStatus(ctx context.Context, req *Request) error {
	coupon, err := h.accounts.CouponStatus(ctx, req.Session.Account.ID)
	if err != nil {
		return err
	}
	if coupon.Used {
		h.console.Say("You have used your coupon.")
	} else {
		h.console.Say("You can still use your coupon: " + coupon.Value)
	}
	return nil
}

// Products prints the catalog.
func (h *Handlers) Products(ctx context.Context, _ *Request) error {
	items, err := h.catalog.List(ctx)
	if err != nil {
		return err
	}
	h.console.products(items)
	return h.console.Pause()
}

// Export writes one of the user's orders to a spreadsheet.
func (h *Handlers) Export(ctx context.Context, req *Request) error {
	h.console.Frame("_", "My orders: ")
	orders, err := h.orders.ListForUser(ctx, req.Session.Account)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		h.console.Say("You have not made any orders yet ☻")
		return nil
	}

	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		if err := h.showOrder(ctx, req.Session, o); err != nil {
			return err
		}
		ids = append(ids, o.ID)
	}

	orderID, ok, err := h.chooseID(ids)
	if err != nil {
		return err
	}
	if !ok {
		h.console.Say("You can try again later ☻")
		return nil
	}

	rows, err := h.orders.ExportRows(ctx, req.Session.Account, orderID)
	if err != nil {
		return err
	}
	path, err := h.exporter.Write(ctx, rows)
	if err != nil {
		return err
	}
	h.console.Say("Look for your file: " + path + " ♫")
	return nil
}

// Logout ends the session when nothing is pending.
func (h *Handlers) Logout(ctx context.Context, req *Request) error {
	err := h.accounts.CanLogout(ctx, req.Session.Account.ID, req.Session.Cart)
	if errors.Is(err, model.ErrPendingOrders) {
		if !req.Session.Cart.Empty() {
			h.console.Say("You have order in pending. Save it or clear your Cart before logging out. ♫")
		} else {
			h.console.Say("You have saved order waiting for payment. Pay it or cancel before logging out. ♫")
		}
		return nil
	}
	if err != nil {
		return err
	}

	h.console.Say(fmt.Sprintf("Logging out... Goodbye %s", req.Session.Account.Username))
	return errLogout
}

// askInt prompts until the answer is an integer of at least min. ok is
// false when the user typed quit instead.
func (h *Handlers) askInt(prompt, retry, quit string, min int) (int, bool, error) {
	for {
		answer, err := h.console.Prompt(prompt)
		if err != nil {
			return 0, false, err
		}
		answer = strings.TrimSpace(answer)
		if strings.EqualFold(answer, quit) {
			return 0, false, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= min {
			return n, true, nil
		}
		prompt = retry
	}
}

// askFloat prompts until the answer is a non-negative number.
func (h *Handlers) askFloat(prompt, retry, quit string) (float64, bool, error) {
	for {
		answer, err := h.console.Prompt(prompt)
		if err != nil {
			return 0, false, err
		}
		answer = strings.TrimSpace(answer)
		if strings.EqualFold(answer, quit) {
			return 0, false, nil
		}
		if v, err := strconv.ParseFloat(answer, 64); err == nil && v >= 0 {
			return v, true, nil
		}
		prompt = retry
	}
}
