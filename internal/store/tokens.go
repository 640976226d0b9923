package store

import (
	"errors"
	"fmt"
	"time"
)

// PutToken stores an API access token with its expiry.
func (s *Store) PutToken(token string, expiresAt time.Time) error {
	if err := s.Put(BucketTokens, token, expiresAt.Unix()); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// ValidToken reports whether token exists and has not expired.
// Expired tokens are removed.
func (s *Store) ValidToken(token string, now time.Time) (bool, error) {
	var expiresAt int64
	if err := s.Get(BucketTokens, token, &expiresAt); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get token: %w", err)
	}

	if now.Unix() > expiresAt {
		_ = s.Delete(BucketTokens, token)
		return false, nil
	}
	return true, nil
}

// RevokeToken removes a token.
func (s *Store) RevokeToken(token string) error {
	return s.Delete(BucketTokens, token)
}
