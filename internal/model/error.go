package model

import "errors"

// Error codes attached to domain errors.
const (
	ErrCodeUninitializedStore  = "UNINITIALIZED_STORE"
	ErrCodeItemNotFound        = "ITEM_NOT_FOUND"
	ErrCodeInvalidPrice        = "INVALID_PRICE"
	ErrCodeInvalidStock        = "INVALID_STOCK"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidCoupon       = "INVALID_COUPON"
	ErrCodeInvalidCouponStatus = "INVALID_COUPON_STATUS"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeAdminRequired       = "ADMIN_REQUIRED"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeOrderNotOwned       = "ORDER_NOT_OWNED"
	ErrCodeOrderAlreadyPaid    = "ORDER_ALREADY_PAID"
	ErrCodeDuplicateExport     = "DUPLICATE_EXPORT"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeAccountLocked       = "ACCOUNT_LOCKED"
	ErrCodePendingOrders       = "PENDING_ORDERS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
)

// DomainError is the common kind behind every error the core reports to
// the session layer. Message is safe to show to the user.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// IsDomainError reports whether err wraps a DomainError and returns it.
func IsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrUninitializedStore  = NewDomainError(ErrCodeUninitializedStore, "Store is not initialised. Run 'orderapp init' first.")
	ErrItemNotFound        = NewDomainError(ErrCodeItemNotFound, "Item does not exist.")
	ErrInvalidPrice        = NewDomainError(ErrCodeInvalidPrice, "Invalid item price. Please use only non-negative numbers.")
	ErrInvalidStock        = NewDomainError(ErrCodeInvalidStock, "Invalid stock number. Please use only non-negative integers.")
	ErrInsufficientStock   = NewDomainError(ErrCodeInsufficientStock, "Selected quantity is not available on stock.")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero.")
	ErrInvalidCoupon       = NewDomainError(ErrCodeInvalidCoupon, "Coupon number is invalid.")
	ErrInvalidCouponStatus = NewDomainError(ErrCodeInvalidCouponStatus, "Coupon has already been used.")
	ErrUserNotFound        = NewDomainError(ErrCodeUserNotFound, "User does not exist.")
	ErrAdminRequired       = NewDomainError(ErrCodeAdminRequired, "This option is unavailable for you.")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order with this ID does not exist.")
	ErrOrderNotOwned       = NewDomainError(ErrCodeOrderNotOwned, "Order with this ID does not belong to you.")
	ErrOrderAlreadyPaid    = NewDomainError(ErrCodeOrderAlreadyPaid, "Order has already been paid.")
	ErrDuplicateExport     = NewDomainError(ErrCodeDuplicateExport, "You have already generated this order in Excel file.")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Your cart is empty!")
	ErrEmailTaken          = NewDomainError(ErrCodeEmailTaken, "Email is already registered.")
	ErrInvalidEmail        = NewDomainError(ErrCodeInvalidEmail, "Email address is not valid.")
	ErrInvalidCredentials  = NewDomainError(ErrCodeInvalidCredentials, "Not valid credentials.")
	ErrAccountLocked       = NewDomainError(ErrCodeAccountLocked, "This account is locked. Contact an administrator.")
	ErrPendingOrders       = NewDomainError(ErrCodePendingOrders, "Save or clear your cart and pay or cancel saved orders before logging out.")
	ErrInvalidInput        = NewDomainError(ErrCodeInvalidInput, "Invalid input.")
)
