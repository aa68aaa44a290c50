package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facegate/facegate/internal/storage"
)

// Sessions manages the access session lifecycle. A session is either
// active (present in storage) or absent; there is no automatic expiry.
type Sessions struct {
	store storage.SessionStore
	audit *Audit
	now   func() time.Time
}

// NewSessions creates the session manager.
func NewSessions(store storage.SessionStore, audit *Audit) *Sessions {
	return &Sessions{store: store, audit: audit, now: time.Now}
}

// Issue creates a new access session for the matched identity, superseding
// any prior session held under the same name. Identity fields are copied by
// value so the session survives later identity edits or deletion.
func (s *Sessions) Issue(ctx context.Context, identity storage.Identity, confidence float64) (*storage.AccessSession, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	session := storage.AccessSession{
		ID:         id,
		Name:       identity.Name,
		Class:      identity.Class,
		Roll:       identity.Roll,
		Code:       identity.Code,
		StartedAt:  s.now(),
		Confidence: confidence,
	}
	if err := s.store.ReplaceSession(ctx, session); err != nil {
		return nil, storageErr(err)
	}

	s.audit.Record(ctx, "APPROVAL SUCCESS: %s | Class: %s | Roll: %s | Confidence: %.2f%%",
		identity.Name, identity.Class, identity.Roll, confidence)
	return &session, nil
}

// Get retrieves an active session by ID.
func (s *Sessions) Get(ctx context.Context, id string) (*storage.AccessSession, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session", ErrNotFound)
	}
	return session, nil
}

// End terminates an active session.
func (s *Sessions) End(ctx context.Context, id string) error {
	err := s.store.DeleteSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: session", ErrNotFound)
	}
	if err != nil {
		return storageErr(err)
	}

	s.audit.Record(ctx, "SESSION ENDED: %s...", shortToken(id))
	return nil
}
