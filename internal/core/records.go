package core

import "time"

// Session is a server-side record of an issued access token. Deleting the
// row revokes the token before its JWT expiry.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Transaction is a signed movement on an account. Account balances are the
// sum of transaction amounts, never stored denormalized.
type Transaction struct {
	ID          int64
	AccountID   int64
	UserID      int64
	Description string
	Amount      Money
	OccurredAt  time.Time
}
