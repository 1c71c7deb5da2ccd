package service

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"order-app/internal/config"
	"order-app/internal/model"
	"order-app/internal/repository"

	"github.com/rs/zerolog"
)

// accountService implements AccountService.
type accountService struct {
	accountRepo repository.AccountRepository
	orderRepo   repository.OrderRepository
	coupons     CouponService
	policy      *config.AdminPolicy
	logger      zerolog.Logger
}

// NewAccountService creates a new account service. policy decides which
// registrations receive the admin role and may be nil.
func NewAccountService(
	accountRepo repository.AccountRepository,
	orderRepo repository.OrderRepository,
	coupons CouponService,
	policy *config.AdminPolicy,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		coupons:     coupons,
		policy:      policy,
		logger:      logger.With().Str("service", "account").Logger(),
	}
}

// Register creates an account with a freshly issued coupon.
func (s *accountService) Register(ctx context.Context, username, email, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, fmt.Errorf("username is required: %w", model.ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", model.ErrInvalidInput)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	role := model.RoleCustomer
	if s.policy.IsAdminEmail(email) {
		role = model.RoleAdmin
	}
	return s.create(ctx, username, email, password, role)
}

func (s *accountService) create(ctx context.Context, username, email, password string, role model.Role) (*model.Account, error) {
	existing, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, model.ErrEmailTaken)
	}

	coupon, err := s.coupons.Issue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to issue coupon: %w", err)
	}

	account := &model.Account{
		Username: username,
		Email:    email,
		Password: password,
		Orders:   []int{},
		Coupon:   coupon.Value,
		Role:     role,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to register account")
		return nil, err
	}

	s.logger.Info().
		Int("user_id", account.ID).
		Str("username", account.Username).
		Str("role", string(account.Role)).
		Msg("account registered")
	return account, nil
}

// Login returns the account matching email and password.
func (s *accountService) Login(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if account == nil || account.Password != password {
		s.logger.Debug().Str("email", email).Msg("login rejected")
		return nil, model.ErrInvalidCredentials
	}
	if account.Locked {
		s.logger.Info().Int("user_id", account.ID).Msg("login attempt on locked account")
		return nil, model.ErrAccountLocked
	}

	s.logger.Info().Int("user_id", account.ID).Msg("user logged in")
	return account, nil
}

// Get returns the account or model.ErrUserNotFound.
func (s *accountService) Get(ctx context.Context, id int) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("user %d: %w", id, model.ErrUserNotFound)
	}
	return account, nil
}

// List returns every account.
func (s *accountService) List(ctx context.Context, p model.Principal) ([]model.Account, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.accountRepo.List(ctx)
}

// Lock prevents the account from logging in.
func (s *accountService) Lock(ctx context.Context, p model.Principal, id int) error {
	return s.setLocked(ctx, p, id, true)
}

// Unlock lifts a lock.
func (s *accountService) Unlock(ctx context.Context, p model.Principal, id int) error {
	return s.setLocked(ctx, p, id, false)
}

func (s *accountService) setLocked(ctx context.Context, p model.Principal, id int, locked bool) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if locked && p.PrincipalID() == id {
		return fmt.Errorf("cannot lock your own account: %w", model.ErrInvalidInput)
	}

	_, err := s.accountRepo.Update(ctx, id, func(a *model.Account) error {
		a.Locked = locked
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("user_id", id).Bool("locked", locked).Int("admin_id", p.PrincipalID()).Msg("account lock changed")
	return nil
}

// AttachOrder appends orderID to the saved order list.
func (s *accountService) AttachOrder(ctx context.Context, userID, orderID int) error {
	_, err := s.accountRepo.Update(ctx, userID, func(a *model.Account) error {
		if !a.HasOrder(orderID) {
			a.Orders = append(a.Orders, orderID)
		}
		return nil
	})
	return err
}

// DetachOrder removes orderID from the saved order list.
func (s *accountService) DetachOrder(ctx context.Context, userID, orderID int) error {
	_, err := s.accountRepo.Update(ctx, userID, func(a *model.Account) error {
		a.Orders = slices.DeleteFunc(a.Orders, func(id int) bool { return id == orderID })
		return nil
	})
	return err
}

// SavedOrders returns the saved, unpaid orders of the account in the order
// they were saved.
func (s *accountService) SavedOrders(ctx context.Context, userID int) ([]model.Order, error) {
	account, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(account.Orders))
	for _, id := range account.Orders {
		o, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if o == nil {
			s.logger.Warn().Int("user_id", userID).Int("order_id", id).Msg("saved order missing from store")
			continue
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// CouponStatus returns the account's coupon.
func (s *accountService) CouponStatus(ctx context.Context, userID int) (*model.Coupon, error) {
	account, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.coupons.Status(ctx, account.Coupon)
	if err != nil {
		return nil, err
	}
	return &model.Coupon{Value: account.Coupon, Used: used}, nil
}

// EnsureAdmins creates missing policy admins and promotes existing accounts
// registered with a policy email.
func (s *accountService) EnsureAdmins(ctx context.Context, policy *config.AdminPolicy) (int, error) {
	if policy == nil {
		return 0, nil
	}

	changed := 0
	for _, admin := range policy.Admins {
		existing, err := s.accountRepo.GetByEmail(ctx, admin.Email)
		if err != nil {
			return changed, err
		}

		if existing == nil {
			if _, err := s.create(ctx, admin.Username, admin.Email, admin.Password, model.RoleAdmin); err != nil {
				return changed, fmt.Errorf("failed to create admin %s: %w", admin.Username, err)
			}
			changed++
			continue
		}

		if !existing.IsAdmin() {
			_, err := s.accountRepo.Update(ctx, existing.ID, func(a *model.Account) error {
				a.Role = model.RoleAdmin
				return nil
			})
			if err != nil {
				return changed, fmt.Errorf("failed to promote admin %s: %w", admin.Username, err)
			}
			s.logger.Info().Int("user_id", existing.ID).Msg("account promoted to admin")
			changed++
		}
	}
	return changed, nil
}

// CanLogout fails while work is pending.
func (s *accountService) CanLogout(ctx context.Context, userID int, cart *model.Cart) error {
	if !cart.Empty() {
		return fmt.Errorf("cart holds items: %w", model.ErrPendingOrders)
	}

	account, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if len(account.Orders) > 0 {
		return fmt.Errorf("%d saved orders await payment: %w", len(account.Orders), model.ErrPendingOrders)
	}
	return nil
}

// validateEmail accepts a bare address with a dotted domain.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q: %w", email, model.ErrInvalidEmail)
	}

	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("email %q: %w", email, model.ErrInvalidEmail)
	}
	return nil
}
