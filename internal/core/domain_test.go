package core

import (
	"errors"
	"strings"
	"testing"
)

func TestCategoryValidate(t *testing.T) {
	tests := []struct {
		name    string
		cat     Category
		wantErr error
	}{
		{"valid expense", Category{Name: "Groceries", Kind: CategoryExpense}, nil},
		{"valid income", Category{Name: "Salary", Kind: CategoryIncome}, nil},
		{"empty name", Category{Name: "  ", Kind: CategoryExpense}, ErrEmptyName},
		{"name too long", Category{Name: strings.Repeat("x", 81), Kind: CategoryExpense}, ErrNameTooLong},
		{"bad kind", Category{Name: "Misc", Kind: "transfer"}, ErrInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cat.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		acc     Account
		wantErr error
	}{
		{"valid checking", Account{Name: "Main", Type: AccountChecking}, nil},
		{"valid credit card", Account{Name: "Visa", Type: AccountCreditCard}, nil},
		{"empty name", Account{Name: "", Type: AccountCash}, ErrEmptyName},
		{"bad type", Account{Name: "Crypto", Type: "wallet"}, ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acc.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfileValidate(t *testing.T) {
	for _, code := range SupportedCurrencies {
		if err := (Profile{Currency: code}).Validate(); err != nil {
			t.Errorf("Validate() with %s: %v", code, err)
		}
	}
	if err := (Profile{Currency: "XXX"}).Validate(); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("Validate() with XXX = %v, want ErrInvalidCurrency", err)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "user.name@example.co.uk"}
	invalid := []string{"", "nope", "@x.com", "a@", "a@nodot"}

	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", e, err)
		}
	}
	for _, e := range invalid {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", e)
		}
	}
}
