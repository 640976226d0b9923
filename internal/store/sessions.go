package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pigeonworks-llc/billed/internal/models"
)

// CreateSession persists a session for the given user and returns it with its ID.
func (s *Store) CreateSession(userType models.UserType, email string) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.NewString(),
		Type:      userType,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Put(BucketSessions, session.ID, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// GetSession looks up a session by ID.
func (s *Store) GetSession(id string) (*models.Session, error) {
	var session models.Session
	if err := s.Get(BucketSessions, id, &session); err != nil {
		return nil, err
	}
	session.ID = id
	return &session, nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(id string) error {
	return s.Delete(BucketSessions, id)
}
