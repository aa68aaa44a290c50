package storage

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateName is returned when an identity name (or its normalized
	// key) already exists.
	ErrDuplicateName = errors.New("identity name already exists")
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// IdentityStore provides access to enrolled identities.
type IdentityStore interface {
	// InsertIdentity stores a new identity. Returns ErrDuplicateName if an
	// identity with the same name or name key already exists.
	InsertIdentity(ctx context.Context, id Identity) error
	// GetIdentity retrieves an identity by exact name, nil if not found.
	GetIdentity(ctx context.Context, name string) (*Identity, error)
	// ListIdentities returns all identities in enrollment order.
	ListIdentities(ctx context.Context) ([]Identity, error)
	// UpdateIdentity renames an identity and updates its metadata. The
	// embedding is never touched. Returns ErrNotFound if oldName is absent
	// and ErrDuplicateName if the new name collides with another identity.
	UpdateIdentity(ctx context.Context, oldName, name, nameKey, class, roll string) error
	// DeleteIdentity removes an identity by name, ErrNotFound if absent.
	DeleteIdentity(ctx context.Context, name string) error
}

// TicketStore provides access to ephemeral capture tickets.
type TicketStore interface {
	// UpsertTicket replaces any existing ticket for the same token.
	UpsertTicket(ctx context.Context, t CaptureTicket) error
	// GetTicket retrieves a ticket by token, nil if absent or expired.
	GetTicket(ctx context.Context, token string) (*CaptureTicket, error)
	// DeleteTicket removes a ticket. Succeeds even if none exists.
	DeleteTicket(ctx context.Context, token string) error
	// PruneExpiredTickets removes all tickets past their TTL and returns
	// how many were deleted.
	PruneExpiredTickets(ctx context.Context) (int64, error)
}

// SessionStore provides access to active access sessions.
type SessionStore interface {
	// ReplaceSession deletes every session held by the same identity name
	// and inserts the new one as a single logical operation.
	ReplaceSession(ctx context.Context, s AccessSession) error
	// GetSession retrieves a session by ID, nil if not found.
	GetSession(ctx context.Context, id string) (*AccessSession, error)
	// DeleteSession removes a session by ID, ErrNotFound if absent.
	DeleteSession(ctx context.Context, id string) error
}

// LogStore provides access to the bounded audit log.
type LogStore interface {
	// AppendLog stores an entry and evicts the oldest entries beyond the
	// configured retention.
	AppendLog(ctx context.Context, e LogEntry) error
	// RecentLogs returns up to limit formatted entries, most recent first.
	RecentLogs(ctx context.Context, limit int) ([]string, error)
}

// Store is the uniform contract both backends implement. Components are
// written against this interface only and must behave identically whether
// the backend is PostgreSQL or process memory.
type Store interface {
	IdentityStore
	TicketStore
	SessionStore
	LogStore

	// Mode identifies the active backend ("postgres" or "memory").
	Mode() string
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
