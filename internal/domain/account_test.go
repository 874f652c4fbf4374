package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccountNormalBalance(t *testing.T) {
	tests := []struct {
		accountType AccountType
		want        NormalBalance
	}{
		{AccountTypeAsset, NormalBalanceDebit},
		{AccountTypeExpense, NormalBalanceDebit},
		{AccountTypeLiability, NormalBalanceCredit},
		{AccountTypeEquity, NormalBalanceCredit},
		{AccountTypeRevenue, NormalBalanceCredit},
	}

	for _, tt := range tests {
		a := Account{Type: tt.accountType}
		if got := a.NormalBalance(); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.accountType, tt.want, got)
		}
	}
}

func TestAccountCanReceivePostings(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		want    bool
	}{
		{"active leaf", Account{IsActive: true}, true},
		{"summary account", Account{IsActive: true, IsSummary: true}, false},
		{"inactive account", Account{IsActive: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.CanReceivePostings(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAccountIsDescendantOf(t *testing.T) {
	child := Account{Code: "1110", Path: "1000/1100/1110"}

	if !child.IsDescendantOf("1000") {
		t.Error("expected 1110 to be a descendant of 1000")
	}
	if !child.IsDescendantOf("1100") {
		t.Error("expected 1110 to be a descendant of 1100")
	}
	if child.IsDescendantOf("1110") {
		t.Error("an account is not its own descendant")
	}
	if child.IsDescendantOf("2000") {
		t.Error("expected 1110 not to be a descendant of 2000")
	}
}

func TestChildPath(t *testing.T) {
	if got := ChildPath(nil, "1000"); got != "1000" {
		t.Errorf("root path: expected 1000, got %s", got)
	}
	parent := &Account{Code: "1000", Path: "1000"}
	if got := ChildPath(parent, "1100"); got != "1000/1100" {
		t.Errorf("child path: expected 1000/1100, got %s", got)
	}
}

func TestValidateAccountCode(t *testing.T) {
	valid := []string{"1000", "A100", "99ZZ"}
	for _, code := range valid {
		if err := ValidateAccountCode(code); err != nil {
			t.Errorf("expected %q to be valid: %v", code, err)
		}
	}

	invalid := []string{"", "100", "10000", "10 0", "ab00"}
	for _, code := range invalid {
		err := ValidateAccountCode(code)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected %q to fail validation, got %v", code, err)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.RequireFromString("0.01")); err != nil {
		t.Errorf("smallest unit should be valid: %v", err)
	}
	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrValidation) {
		t.Errorf("zero amount should fail, got %v", err)
	}
	if err := ValidateAmount(decimal.RequireFromString("-1")); !errors.Is(err, ErrValidation) {
		t.Errorf("negative amount should fail, got %v", err)
	}
	huge := decimal.RequireFromString(MaxLineAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrValidation) {
		t.Errorf("amount over maximum should fail, got %v", err)
	}
}
