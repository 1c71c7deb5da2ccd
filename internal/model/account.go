package model

// Role decides which menu options an account can reach.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Principal is anything that can invoke core operations.
type Principal interface {
	PrincipalID() int
	IsAdmin() bool
}

// Account is a registered user.
type Account struct {
	ID       int    `json:"-"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Orders   []int  `json:"orders"`
	Coupon   string `json:"coupon"`
	Role     Role   `json:"role,omitempty"`
	Locked   bool   `json:"locked,omitempty"`
}

// PrincipalID returns the account id.
func (a *Account) PrincipalID() int {
	return a.ID
}

// IsAdmin reports whether the account carries the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasOrder reports whether orderID is in the saved order list.
func (a *Account) HasOrder(orderID int) bool {
	for _, id := range a.Orders {
		if id == orderID {
			return true
		}
	}
	return false
}
