package model

// Coupon is a single-use discount token issued once per account.
type Coupon struct {
	Value string `json:"-"`
	Used  bool   `json:"used"`
}
