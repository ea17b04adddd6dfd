package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryExpense CategoryKind = "expense"
	CategoryIncome  CategoryKind = "income"
)

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
)

type (
	CategoryKind string

	AccountType string

	// Category is a user-defined spending or income classification.
	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Kind      CategoryKind
		CreatedAt time.Time
	}

	// Account is a financial account owned by a user.
	Account struct {
		ID        int64
		UserID    int64
		Name      string
		Type      AccountType
		CreatedAt time.Time
	}

	// AccountWithBalance pairs an account with its computed balance,
	// the sum of all transaction amounts recorded against it.
	AccountWithBalance struct {
		Account
		Balance Money
	}

	// Profile holds per-user settings. Currency is the ISO 4217 code
	// the UI formats amounts in.
	Profile struct {
		UserID   int64
		Currency string
		Locale   string
	}

	// User is an authenticated account holder.
	User struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long")
	ErrInvalidKind     = errors.New("invalid category kind")
	ErrInvalidType     = errors.New("invalid account type")
	ErrInvalidCurrency = errors.New("unsupported currency")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrNotFound        = errors.New("not found")
)

const maxNameLength = 80

// SupportedCurrencies lists the ISO 4217 codes a profile may select.
var SupportedCurrencies = []string{"EUR", "USD", "GBP", "CHF", "JPY"}

// ValidCurrency reports whether code is one of the supported currencies.
func ValidCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

func (k CategoryKind) Valid() bool {
	return k == CategoryExpense || k == CategoryIncome
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCreditCard, AccountCash, AccountInvestment:
		return true
	}
	return false
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (a Account) Validate() error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if !a.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (p Profile) Validate() error {
	if !ValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// ValidateEmail performs a minimal shape check; real verification is the
// mail provider's problem.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	if !strings.Contains(email[at+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}
