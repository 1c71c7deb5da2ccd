// Package session implements the interactive order menu.
package session

import (
	"order-app/internal/model"
)

// Session is the state of one logged-in user.
type Session struct {
	Account *model.Account
	Cart    *model.Cart
}

// New starts a session for account with an empty cart.
func New(account *model.Account) *Session {
	return &Session{Account: account, Cart: &model.Cart{}}
}

// IsAdmin reports whether the session user may reach admin options.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Account != nil && s.Account.IsAdmin()
}
