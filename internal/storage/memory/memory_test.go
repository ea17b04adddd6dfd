package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"finch/internal/core"
)

func TestUserAndProfileLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "Ada@Example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Email lookup is case-insensitive
	u, err := s.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.ID != id {
		t.Errorf("user ID = %d, want %d", u.ID, id)
	}

	// A default profile exists immediately after registration
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Currency != "EUR" {
		t.Errorf("default currency = %s, want EUR", p.Currency)
	}

	if _, err := s.CreateUser(ctx, "ada@example.com", "other"); err == nil {
		t.Error("duplicate email should fail")
	}

	if err := s.UpdateCurrency(ctx, id, "USD"); err != nil {
		t.Fatalf("UpdateCurrency: %v", err)
	}
	p, _ = s.GetProfile(ctx, id)
	if p.Currency != "USD" {
		t.Errorf("currency after update = %s, want USD", p.Currency)
	}

	if err := s.UpdateCurrency(ctx, 999, "USD"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateCurrency for missing user = %v, want ErrNotFound", err)
	}
}

func TestCategoryOwnership(t *testing.T) {
	s := New()
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "owner@example.com", "h")
	other, _ := s.CreateUser(ctx, "other@example.com", "h")

	id, err := s.CreateCategory(ctx, core.Category{UserID: owner, Name: "Groceries", Kind: core.CategoryExpense})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	// Another user cannot delete it
	if err := s.DeleteCategory(ctx, other, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user delete = %v, want ErrNotFound", err)
	}

	if err := s.DeleteCategory(ctx, owner, id); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	cats, _ := s.ListCategories(ctx, owner)
	if len(cats) != 0 {
		t.Errorf("categories after delete = %d, want 0", len(cats))
	}
}

func TestAccountBalances(t *testing.T) {
	s := New()
	ctx := context.Background()

	user, _ := s.CreateUser(ctx, "u@example.com", "h")
	acc, err := s.CreateAccount(ctx, core.Account{UserID: user, Name: "Main", Type: core.AccountChecking})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	for _, cents := range []int64{10000, -2500, 150} {
		if _, err := s.AddTransaction(ctx, core.Transaction{
			AccountID: acc,
			UserID:    user,
			Amount:    core.Money{Cents: cents},
		}); err != nil {
			t.Fatalf("AddTransaction(%d): %v", cents, err)
		}
	}

	// Second account with no transactions stays at zero
	if _, err := s.CreateAccount(ctx, core.Account{UserID: user, Name: "Savings", Type: core.AccountSavings}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	accounts, err := s.ListAccountsWithBalances(ctx, user)
	if err != nil {
		t.Fatalf("ListAccountsWithBalances: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(accounts))
	}
	// Sorted by name: Main, Savings
	if accounts[0].Balance.Cents != 7650 {
		t.Errorf("Main balance = %d, want 7650", accounts[0].Balance.Cents)
	}
	if accounts[1].Balance.Cents != 0 {
		t.Errorf("Savings balance = %d, want 0", accounts[1].Balance.Cents)
	}

	if _, err := s.AddTransaction(ctx, core.Transaction{AccountID: 999, UserID: user}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("AddTransaction to missing account = %v, want ErrNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	live := core.Session{Token: "live", UserID: 1, ExpiresAt: now.Add(time.Hour)}
	stale := core.Session{Token: "stale", UserID: 1, ExpiresAt: now.Add(-time.Hour)}
	for _, sess := range []core.Session{live, stale} {
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	got, err := s.GetSession(ctx, "live")
	if err != nil || got.UserID != 1 {
		t.Fatalf("GetSession(live) = %+v, %v", got, err)
	}

	removed, err := s.DeleteExpiredSessions(ctx, now)
	if err != nil || removed != 1 {
		t.Fatalf("DeleteExpiredSessions = %d, %v; want 1, nil", removed, err)
	}
	if _, err := s.GetSession(ctx, "stale"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("stale session should be gone, got %v", err)
	}

	if err := s.DeleteSession(ctx, "live"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession(ctx, "live"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleted session should be gone, got %v", err)
	}
}
