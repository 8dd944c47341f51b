package storage

import (
	"context"
	"errors"
	"fmt"
)

// Keys under which the credential pair is persisted. Only one valid pair
// exists at a time; writing a new pair always fully replaces the old one.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// ErrNotFound is returned by Store implementations when a key has no value.
var ErrNotFound = errors.New("not found")

// Store is a generic keyed value store used for durable credential
// persistence. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Pair is the persisted access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// LoadPair reads the stored credential pair. Absent keys come back as empty
// strings rather than errors.
func LoadPair(ctx context.Context, s Store) (Pair, error) {
	var pair Pair

	access, err := s.Get(ctx, AccessTokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Pair{}, fmt.Errorf("reading %q: %w", AccessTokenKey, err)
	}
	pair.AccessToken = access

	refresh, err := s.Get(ctx, RefreshTokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Pair{}, fmt.Errorf("reading %q: %w", RefreshTokenKey, err)
	}
	pair.RefreshToken = refresh

	return pair, nil
}

// SavePair stores a new credential pair, replacing whatever was there before.
func SavePair(ctx context.Context, s Store, pair Pair) error {
	if err := s.Set(ctx, AccessTokenKey, pair.AccessToken); err != nil {
		return fmt.Errorf("writing %q: %w", AccessTokenKey, err)
	}
	if err := s.Set(ctx, RefreshTokenKey, pair.RefreshToken); err != nil {
		return fmt.Errorf("writing %q: %w", RefreshTokenKey, err)
	}
	return nil
}

// SetAccessToken overwrites only the stored access token. Used after a
// successful refresh exchange, which never rotates the refresh token.
func SetAccessToken(ctx context.Context, s Store, token string) error {
	if err := s.Set(ctx, AccessTokenKey, token); err != nil {
		return fmt.Errorf("writing %q: %w", AccessTokenKey, err)
	}
	return nil
}

// ClearPair removes both tokens. Keys that are already absent are not an
// error: clearing must always succeed locally.
func ClearPair(ctx context.Context, s Store) error {
	if err := s.Delete(ctx, AccessTokenKey); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting %q: %w", AccessTokenKey, err)
	}
	if err := s.Delete(ctx, RefreshTokenKey); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting %q: %w", RefreshTokenKey, err)
	}
	return nil
}
