package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"finch/internal/core"
	"finch/internal/storage/memory"
)

// countingStore wraps a memory store and counts read calls, with optional
// injected failures per read.
type countingStore struct {
	*memory.Store

	categoriesCalls atomic.Int64
	accountsCalls   atomic.Int64
	profileCalls    atomic.Int64

	categoriesErr error
	accountsErr   error
	profileErr    error
}

func (c *countingStore) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	c.categoriesCalls.Add(1)
	if c.categoriesErr != nil {
		return nil, c.categoriesErr
	}
	return c.Store.ListCategories(ctx, userID)
}

func (c *countingStore) ListAccountsWithBalances(ctx context.Context, userID int64) ([]core.AccountWithBalance, error) {
	c.accountsCalls.Add(1)
	if c.accountsErr != nil {
		return nil, c.accountsErr
	}
	return c.Store.ListAccountsWithBalances(ctx, userID)
}

func (c *countingStore) GetProfile(ctx context.Context, userID int64) (core.Profile, error) {
	c.profileCalls.Add(1)
	if c.profileErr != nil {
		return core.Profile{}, c.profileErr
	}
	return c.Store.GetProfile(ctx, userID)
}

func seedUser(t *testing.T, store *memory.Store) int64 {
	t.Helper()
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, "user@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := store.CreateCategory(ctx, core.Category{UserID: userID, Name: "Groceries", Kind: core.CategoryExpense}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	accID, err := store.CreateAccount(ctx, core.Account{UserID: userID, Name: "Main", Type: core.AccountChecking})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := store.AddTransaction(ctx, core.Transaction{AccountID: accID, UserID: userID, Amount: core.Money{Cents: 10000}}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if err := store.UpdateCurrency(ctx, userID, "USD"); err != nil {
		t.Fatalf("UpdateCurrency: %v", err)
	}
	return userID
}

func TestAssembleFetchesEachResourceOnce(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	userID := seedUser(t, store.Store)

	svc := NewSettingsService(store, nil)
	view, err := svc.Assemble(context.Background(), userID)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if n := store.categoriesCalls.Load(); n != 1 {
		t.Errorf("categories fetched %d times, want 1", n)
	}
	if n := store.accountsCalls.Load(); n != 1 {
		t.Errorf("accounts fetched %d times, want 1", n)
	}
	if n := store.profileCalls.Load(); n != 1 {
		t.Errorf("profile fetched %d times, want 1", n)
	}

	if len(view.Categories) != 1 || view.Categories[0].Name != "Groceries" {
		t.Errorf("categories = %+v", view.Categories)
	}
	if len(view.Accounts) != 1 || view.Accounts[0].Balance.Cents != 10000 {
		t.Errorf("accounts = %+v", view.Accounts)
	}
	if view.Currency != "USD" {
		t.Errorf("currency = %q, want the profile value USD", view.Currency)
	}
}

func TestAssembleIsAllOrNothing(t *testing.T) {
	boom := errors.New("backend down")

	tests := []struct {
		name   string
		mutate func(*countingStore)
	}{
		{"categories fail", func(s *countingStore) { s.categoriesErr = boom }},
		{"accounts fail", func(s *countingStore) { s.accountsErr = boom }},
		{"profile fails", func(s *countingStore) { s.profileErr = boom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &countingStore{Store: memory.New()}
			userID := seedUser(t, store.Store)
			tt.mutate(store)

			svc := NewSettingsService(store, nil)
			view, err := svc.Assemble(context.Background(), userID)
			if !errors.Is(err, boom) {
				t.Fatalf("Assemble = %v, want wrapped %v", err, boom)
			}
			// No partial view leaks out alongside the error
			if view.Categories != nil || view.Accounts != nil || view.Currency != "" {
				t.Errorf("partial view returned with error: %+v", view)
			}
		})
	}
}

func TestUpdateCurrency(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	userID := seedUser(t, store.Store)
	svc := NewSettingsService(store, nil)
	ctx := context.Background()

	if err := svc.UpdateCurrency(ctx, userID, " gbp "); err != nil {
		t.Fatalf("UpdateCurrency: %v", err)
	}
	profile, _ := store.Store.GetProfile(ctx, userID)
	if profile.Currency != "GBP" {
		t.Errorf("currency = %s, want GBP (normalized)", profile.Currency)
	}

	if err := svc.UpdateCurrency(ctx, userID, "DOGE"); !errors.Is(err, core.ErrInvalidCurrency) {
		t.Errorf("UpdateCurrency(DOGE) = %v, want ErrInvalidCurrency", err)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	userID := seedUser(t, store.Store)
	svc := NewSettingsService(store, nil)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, userID, "  ", core.CategoryExpense); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank name = %v, want ErrEmptyName", err)
	}
	if _, err := svc.CreateCategory(ctx, userID, "Rent", "transfer"); !errors.Is(err, core.ErrInvalidKind) {
		t.Errorf("bad kind = %v, want ErrInvalidKind", err)
	}

	id, err := svc.CreateCategory(ctx, userID, " Rent ", core.CategoryExpense)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if id == 0 {
		t.Error("CreateCategory returned zero id")
	}

	cats, _ := store.Store.ListCategories(ctx, userID)
	for _, c := range cats {
		if c.ID == id && c.Name != "Rent" {
			t.Errorf("name = %q, want trimmed Rent", c.Name)
		}
	}
}

func TestCreateAccountWithOpeningBalance(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	userID := seedUser(t, store.Store)
	svc := NewSettingsService(store, nil)
	ctx := context.Background()

	id, err := svc.CreateAccount(ctx, userID, "Visa", core.AccountCreditCard, -25000)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	accounts, _ := store.Store.ListAccountsWithBalances(ctx, userID)
	var found bool
	for _, a := range accounts {
		if a.ID == id {
			found = true
			if a.Balance.Cents != -25000 {
				t.Errorf("opening balance = %d, want -25000", a.Balance.Cents)
			}
		}
	}
	if !found {
		t.Fatal("created account not listed")
	}

	if _, err := svc.CreateAccount(ctx, userID, "X", "wallet", 0); !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("bad type = %v, want ErrInvalidType", err)
	}
}

func TestDeleteCategoryPropagatesNotFound(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	userID := seedUser(t, store.Store)
	svc := NewSettingsService(store, nil)

	if err := svc.DeleteCategory(context.Background(), userID, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteCategory(999) = %v, want ErrNotFound", err)
	}
}
