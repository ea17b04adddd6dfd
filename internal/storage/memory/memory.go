// Package memory provides an in-memory data backend. It backs tests and
// local development when no SQLite file is wanted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"finch/internal/core"
)

type Store struct {
	mu sync.Mutex

	nextUserID     int64
	nextCategoryID int64
	nextAccountID  int64
	nextTxID       int64

	users        map[int64]core.User
	usersByEmail map[string]int64
	sessions     map[string]core.Session
	profiles     map[int64]core.Profile
	categories   map[int64]core.Category
	accounts     map[int64]core.Account
	transactions []core.Transaction
	audit        []auditEntry
}

type auditEntry struct {
	UserID     int64
	Action     string
	Entity     string
	OccurredAt time.Time
}

func New() *Store {
	return &Store{
		users:        map[int64]core.User{},
		usersByEmail: map[string]int64{},
		sessions:     map[string]core.Session{},
		profiles:     map[int64]core.Profile{},
		categories:   map[int64]core.Category{},
		accounts:     map[int64]core.Account{},
	}
}

// ListCategories returns the user's categories ordered by kind then name.
func (s *Store) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ListAccountsWithBalances returns the user's accounts with summed balances.
func (s *Store) ListAccountsWithBalances(_ context.Context, userID int64) ([]core.AccountWithBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balances := map[int64]int64{}
	for _, t := range s.transactions {
		balances[t.AccountID] += t.Amount.Cents
	}

	var out []core.AccountWithBalance
	for _, a := range s.accounts {
		if a.UserID != userID {
			continue
		}
		out = append(out, core.AccountWithBalance{
			Account: a,
			Balance: core.Money{Cents: balances[a.ID]},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetProfile returns the user's profile.
func (s *Store) GetProfile(_ context.Context, userID int64) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return core.Profile{}, fmt.Errorf("profile for user %d: %w", userID, core.ErrNotFound)
	}
	return p, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCategoryID++
	c.ID = s.nextCategoryID
	c.CreatedAt = time.Now().UTC()
	s.categories[c.ID] = c
	return c.ID, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[categoryID]
	if !ok || c.UserID != userID {
		return fmt.Errorf("category %d for user %d: %w", categoryID, userID, core.ErrNotFound)
	}
	delete(s.categories, categoryID)
	return nil
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID++
	a.ID = s.nextAccountID
	a.CreatedAt = time.Now().UTC()
	s.accounts[a.ID] = a
	return a.ID, nil
}

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[t.AccountID]; !ok {
		return 0, fmt.Errorf("account %d: %w", t.AccountID, core.ErrNotFound)
	}
	s.nextTxID++
	t.ID = s.nextTxID
	if t.OccurredAt.IsZero() {
		t.OccurredAt = time.Now().UTC()
	}
	s.transactions = append(s.transactions, t)
	return t.ID, nil
}

func (s *Store) UpdateCurrency(_ context.Context, userID int64, currency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile for user %d: %w", userID, core.ErrNotFound)
	}
	p.Currency = currency
	s.profiles[userID] = p
	return nil
}

func (s *Store) CreateUser(_ context.Context, email, passwordHash string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return 0, fmt.Errorf("user %s already exists", email)
	}

	s.nextUserID++
	id := s.nextUserID
	s.users[id] = core.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.usersByEmail[email] = id
	// Same default the sqlite backend applies via column defaults.
	s.profiles[id] = core.Profile{UserID: id, Currency: "EUR", Locale: "en-US"}
	return id, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return core.User{}, fmt.Errorf("user %s: %w", email, core.ErrNotFound)
	}
	return s.users[id], nil
}

func (s *Store) CreateSession(_ context.Context, sess core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return core.Session{}, fmt.Errorf("session: %w", core.ErrNotFound)
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) AppendAudit(_ context.Context, userID int64, action, entity string, occurredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, auditEntry{
		UserID:     userID,
		Action:     action,
		Entity:     entity,
		OccurredAt: occurredAt,
	})
	return nil
}

// Ping always succeeds; the backend lives in-process.
func (s *Store) Ping(context.Context) error { return nil }

// AuditSize reports how many audit entries were recorded. Test helper.
func (s *Store) AuditSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audit)
}
