// Package auth resolves the authenticated identity of a request.
//
// Passwords are bcrypt-hashed; sessions are HS256 JWTs carried in an
// HTTP-only cookie and mirrored in a sessions table so sign-out revokes
// them before expiry. An absent or invalid identity is never an error,
// only a "no identity" answer: the caller decides whether to redirect.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finch/internal/cache"
	"finch/internal/core"
	"finch/internal/storage"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8

	sessionCacheSize = 1024
	sessionCacheTTL  = 30 * time.Second
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailTaken         = errors.New("email already registered")
)

// Service issues and verifies sessions.
type Service struct {
	secret     []byte
	expiry     time.Duration
	cookieName string
	users      storage.UserStore
	sessions   storage.SessionStore

	// Caches token -> userID so every asset request doesn't hit the
	// sessions table. Short TTL keeps revocation prompt.
	sessionCache *cache.LRUCache[int64]
}

func NewService(secret string, expiry time.Duration, cookieName string, users storage.UserStore, sessions storage.SessionStore) *Service {
	return &Service{
		secret:       []byte(secret),
		expiry:       expiry,
		cookieName:   cookieName,
		users:        users,
		sessions:     sessions,
		sessionCache: cache.NewLRUCache[int64](sessionCacheSize, sessionCacheTTL),
	}
}

// HashPassword returns the bcrypt hash of a password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a user with a hashed password and returns its id.
func (s *Service) Register(ctx context.Context, email, password string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := core.ValidateEmail(email); err != nil {
		return 0, err
	}
	if len(password) < minPasswordLength {
		return 0, ErrWeakPassword
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return 0, ErrEmailTaken
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.CreateUser(ctx, email, hash)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Authenticate verifies email+password and returns the matching user.
// Both unknown email and wrong password come back as ErrInvalidCredentials
// so responses don't leak which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// IssueSession mints a JWT for the user and records it in the session store.
func (s *Service) IssueSession(ctx context.Context, userID int64) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.expiry)

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
		"jti": uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.CreateSession(ctx, core.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}

	return token, expiresAt, nil
}

// Identify resolves the request's authenticated user, if any. Invalid,
// expired, or revoked tokens are all reported as "no identity".
func (s *Service) Identify(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	token := cookie.Value

	userID, err := s.validateToken(token)
	if err != nil {
		return 0, false
	}

	if cached, ok := s.sessionCache.Get(token); ok {
		return cached, true
	}

	sess, err := s.sessions.GetSession(r.Context(), token)
	if err != nil || sess.Expired(time.Now()) || sess.UserID != userID {
		return 0, false
	}

	s.sessionCache.Set(token, userID)
	return userID, true
}

// RevokeSession deletes the request's session, if it carries one.
func (s *Service) RevokeSession(ctx context.Context, r *http.Request) error {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	s.sessionCache.Delete(cookie.Value)
	if err := s.sessions.DeleteSession(ctx, cookie.Value); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// SessionCookie builds the cookie carrying a freshly issued token.
func (s *Service) SessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie builds the cookie that removes the session cookie.
func (s *Service) ClearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Service) validateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("invalid token: 'sub' claim missing or not a string")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}
