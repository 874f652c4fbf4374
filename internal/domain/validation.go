package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	AccountCodeLength = 4
	MaxNameLength     = 255
	MaxLineAmount     = "1000000000000" // 1 trillion
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"KES": true, "UGX": true, "TZS": true, "NGN": true,
	"GHS": true, "ZAR": true, "INR": true, "PHP": true,
	"IDR": true, "MXN": true, "BRL": true, "XOF": true,
}

var accountCodeRegex = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// ValidateAccountCode validates a fixed-width alphanumeric account code.
func ValidateAccountCode(code string) error {
	if !accountCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: account code must be %d uppercase alphanumeric characters, got %q",
			ErrValidation, AccountCodeLength, code)
	}
	return nil
}

// ValidateName validates an account or item name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLength)
	}
	return nil
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 currency code", ErrValidation, currency)
	}
	return nil
}

// ValidateAmount validates a journal line amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	maxAmount, _ := decimal.NewFromString(MaxLineAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: amount exceeds maximum of %s", ErrValidation, MaxLineAmount)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
