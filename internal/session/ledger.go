// Package session implements the bearer credential ledger kept in the
// key-value store: opaque session tokens with a short TTL and single-use
// refresh tokens with a long one.
package session

import (
	"context"
	"fmt"
	"time"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/kv"
	"firemail/mail-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	sessionPrefix = "sessions:"
	refreshPrefix = "refresh:"
)

// UserSnapshot is the user view embedded in a session entry. It is frozen
// at issue time and may be staler than the relational row; callers that
// need fresh authorization facts must re-query the database.
type UserSnapshot struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

type Session struct {
	User      UserSnapshot `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type Pair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type Ledger struct {
	KV         kv.Store
	SessionTTL time.Duration
	RefreshTTL time.Duration

	// Overridable in tests
	Now func() time.Time
}

func NewLedger(store kv.Store, sessionTTL, refreshTTL time.Duration) *Ledger {
	return &Ledger{
		KV:         store,
		SessionTTL: sessionTTL,
		RefreshTTL: refreshTTL,
		Now:        time.Now,
	}
}

func Snapshot(u *model.User) UserSnapshot {
	s := UserSnapshot{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
	if u.Email != nil {
		s.Email = *u.Email
	}

	return s
}

// Issue writes a fresh session entry and its refresh mapping. Both tokens
// are random nanoids, collisions are not a practical concern at these
// lengths.
func (l *Ledger) Issue(ctx context.Context, user UserSnapshot) (Pair, error) {
	token, err := gonanoid.New(32)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate session token, %w", err)
	}

	refresh, err := gonanoid.New(48)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate refresh token, %w", err)
	}

	now := l.Now()
	sess := Session{
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(l.SessionTTL),
	}

	if err := l.KV.PutJSON(ctx, sessionPrefix+token, sess, l.SessionTTL); err != nil {
		return Pair{}, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	if err := l.KV.Put(ctx, refreshPrefix+refresh, token, l.RefreshTTL); err != nil {
		return Pair{}, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	return Pair{Token: token, RefreshToken: refresh}, nil
}

// Validate resolves a session token to its user snapshot. The embedded
// expiry is re-checked client-side even though the store TTL should have
// purged the entry already; a stale entry is deleted on sight.
func (l *Ledger) Validate(ctx context.Context, token string) (UserSnapshot, error) {
	var sess Session

	ok, err := l.KV.GetJSON(ctx, sessionPrefix+token, &sess)
	if err != nil {
		return UserSnapshot{}, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}
	if !ok {
		return UserSnapshot{}, fail.ErrUnauthorized
	}

	if !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(l.Now()) {
		if err := l.KV.Delete(ctx, sessionPrefix+token); err != nil {
			zap.L().Warn("Failed to purge expired session", zap.Error(err))
		}

		return UserSnapshot{}, fail.ErrUnauthorized
	}

	return sess.User, nil
}

// Rotate exchanges a refresh token for a new session/refresh pair. Refresh
// tokens are single-use: both old entries are deleted on success, and a
// refresh token whose session is gone is purged and rejected.
func (l *Ledger) Rotate(ctx context.Context, refreshToken string) (Pair, error) {
	token, ok, err := l.KV.Get(ctx, refreshPrefix+refreshToken)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}
	if !ok {
		return Pair{}, fail.ErrUnauthorized
	}

	var sess Session

	ok, err = l.KV.GetJSON(ctx, sessionPrefix+token, &sess)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}
	if !ok {
		// The session this refresh token points to is gone, so the
		// refresh token is dead too
		if err := l.KV.Delete(ctx, refreshPrefix+refreshToken); err != nil {
			zap.L().Warn("Failed to purge orphaned refresh token", zap.Error(err))
		}

		return Pair{}, fail.ErrUnauthorized
	}

	pair, err := l.Issue(ctx, sess.User)
	if err != nil {
		return Pair{}, err
	}

	if err := l.KV.Delete(ctx, sessionPrefix+token); err != nil {
		zap.L().Warn("Failed to delete rotated session", zap.Error(err))
	}
	if err := l.KV.Delete(ctx, refreshPrefix+refreshToken); err != nil {
		zap.L().Warn("Failed to delete used refresh token", zap.Error(err))
	}

	return pair, nil
}

// Revoke drops the session entry. Revoking an unknown token is a no-op.
func (l *Ledger) Revoke(ctx context.Context, token string) error {
	if err := l.KV.Delete(ctx, sessionPrefix+token); err != nil {
		return fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	return nil
}
