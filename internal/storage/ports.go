package storage

import (
	"context"
	"time"

	"finch/internal/core"
)

// Ports for the data backends. The settings page consumes the three readers;
// everything else serves auth and the settings mutations.
type (
	CategoryReader interface {
		// ListCategories returns all categories owned by the user.
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	}

	AccountReader interface {
		// ListAccountsWithBalances returns the user's accounts, each with the
		// sum of its transaction amounts.
		ListAccountsWithBalances(ctx context.Context, userID int64) ([]core.AccountWithBalance, error)
	}

	ProfileReader interface {
		// GetProfile returns the user's settings record.
		GetProfile(ctx context.Context, userID int64) (core.Profile, error)
	}

	CategoryWriter interface {
		CreateCategory(ctx context.Context, c core.Category) (int64, error)
		// DeleteCategory removes a category the user owns; deleting another
		// user's category is core.ErrNotFound.
		DeleteCategory(ctx context.Context, userID, categoryID int64) error
	}

	AccountWriter interface {
		CreateAccount(ctx context.Context, a core.Account) (int64, error)
		AddTransaction(ctx context.Context, t core.Transaction) (int64, error)
	}

	ProfileWriter interface {
		UpdateCurrency(ctx context.Context, userID int64, currency string) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, email, passwordHash string) (int64, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
	}

	SessionStore interface {
		CreateSession(ctx context.Context, s core.Session) error
		GetSession(ctx context.Context, token string) (core.Session, error)
		DeleteSession(ctx context.Context, token string) error
		DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	}

	AuditWriter interface {
		// AppendAudit records a settings change consumed from the event queue.
		AppendAudit(ctx context.Context, userID int64, action, entity string, occurredAt time.Time) error
	}

	Pinger interface {
		// Ping reports whether the backend is reachable.
		Ping(ctx context.Context) error
	}
)

// Store is the full surface a data backend must implement.
type Store interface {
	CategoryReader
	AccountReader
	ProfileReader
	CategoryWriter
	AccountWriter
	ProfileWriter
	UserStore
	SessionStore
	AuditWriter
	Pinger
}
