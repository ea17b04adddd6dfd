// Package services orchestrates settings reads and writes across the data
// backend and the event queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"finch/internal/core"
	"finch/internal/events"
	"finch/internal/storage"
)

// SettingsView is everything the settings page renders: the user's
// categories, accounts with balances, and display currency. Currency is the
// profile's value verbatim.
type SettingsView struct {
	Categories []core.Category
	Accounts   []core.AccountWithBalance
	Currency   string
	Locale     string
}

// SettingsReader is the read surface Assemble needs.
type SettingsReader interface {
	storage.CategoryReader
	storage.AccountReader
	storage.ProfileReader
}

// SettingsStore is the full surface the service needs.
type SettingsStore interface {
	SettingsReader
	storage.CategoryWriter
	storage.AccountWriter
	storage.ProfileWriter
}

// SettingsService assembles the settings view and applies settings changes.
type SettingsService struct {
	store  SettingsStore
	events *events.Client
}

func NewSettingsService(store SettingsStore, eventsClient *events.Client) *SettingsService {
	return &SettingsService{
		store:  store,
		events: eventsClient,
	}
}

// Assemble fetches the user's categories, accounts, and profile concurrently
// and joins them into one view. The three reads are independent; all must
// succeed. The first failure cancels the group and fails the whole assembly,
// so a partial view is never returned.
func (s *SettingsService) Assemble(ctx context.Context, userID int64) (SettingsView, error) {
	var (
		categories []core.Category
		accounts   []core.AccountWithBalance
		profile    core.Profile
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		accounts, err = s.store.ListAccountsWithBalances(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = s.store.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return SettingsView{}, fmt.Errorf("assemble settings for user %d: %w", userID, err)
	}

	return SettingsView{
		Categories: categories,
		Accounts:   accounts,
		Currency:   profile.Currency,
		Locale:     profile.Locale,
	}, nil
}

// UpdateCurrency changes the profile's display currency.
func (s *SettingsService) UpdateCurrency(ctx context.Context, userID int64, currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !core.ValidCurrency(currency) {
		return core.ErrInvalidCurrency
	}

	if err := s.store.UpdateCurrency(ctx, userID, currency); err != nil {
		return fmt.Errorf("update currency: %w", err)
	}

	s.publish(ctx, events.NewSettingsEvent(userID, events.ActionUpdate, events.EntityCurrency))
	return nil
}

// CreateCategory adds a category for the user.
func (s *SettingsService) CreateCategory(ctx context.Context, userID int64, name string, kind core.CategoryKind) (int64, error) {
	category := core.Category{
		UserID: userID,
		Name:   strings.TrimSpace(name),
		Kind:   kind,
	}
	if err := category.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateCategory(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}

	s.publish(ctx, events.NewSettingsEvent(userID, events.ActionCreate, events.EntityCategory))
	return id, nil
}

// DeleteCategory removes one of the user's categories.
func (s *SettingsService) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	if err := s.store.DeleteCategory(ctx, userID, categoryID); err != nil {
		return err
	}

	s.publish(ctx, events.NewSettingsEvent(userID, events.ActionDelete, events.EntityCategory))
	return nil
}

// CreateAccount adds an account, recording a non-zero opening balance as the
// account's first transaction.
func (s *SettingsService) CreateAccount(ctx context.Context, userID int64, name string, accountType core.AccountType, openingCents int64) (int64, error) {
	account := core.Account{
		UserID: userID,
		Name:   strings.TrimSpace(name),
		Type:   accountType,
	}
	if err := account.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateAccount(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	if openingCents != 0 {
		if _, err := s.store.AddTransaction(ctx, core.Transaction{
			AccountID:   id,
			UserID:      userID,
			Description: "Opening balance",
			Amount:      core.Money{Cents: openingCents},
		}); err != nil {
			return 0, fmt.Errorf("record opening balance: %w", err)
		}
	}

	s.publish(ctx, events.NewSettingsEvent(userID, events.ActionCreate, events.EntityAccount))
	return id, nil
}

// publish sends a settings event without failing the request. The local
// write is authoritative; the audit trail catches up when the broker does.
func (s *SettingsService) publish(ctx context.Context, event *events.SettingsEvent) {
	if err := s.events.PublishSettingsEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish settings event",
			"error", err,
			"user_id", event.UserID,
			"action", event.Action,
			"entity", event.Entity)
	}
}
