package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/facegate/facegate/internal/storage"
)

// Enroller turns a valid capture ticket plus identity metadata into a
// permanent identity record.
type Enroller struct {
	identities storage.IdentityStore
	tickets    storage.TicketStore
	audit      *Audit
	now        func() time.Time
}

// NewEnroller creates the enrollment manager.
func NewEnroller(identities storage.IdentityStore, tickets storage.TicketStore, audit *Audit) *Enroller {
	return &Enroller{identities: identities, tickets: tickets, audit: audit, now: time.Now}
}

// EnrollResult is returned on successful enrollment.
type EnrollResult struct {
	Name string
	Code string
}

// Enroll creates an identity from the capture ticket held under token.
// The ticket is consumed on success. Name uniqueness rides the storage
// layer's constraint, so concurrent enrollments of the same name cannot
// both succeed.
func (e *Enroller) Enroll(ctx context.Context, token, name, class, roll string) (*EnrollResult, error) {
	name = strings.TrimSpace(name)
	class = strings.TrimSpace(class)
	roll = strings.TrimSpace(roll)
	if name == "" || class == "" || roll == "" {
		return nil, fmt.Errorf("%w: all fields are required (name, class, roll)", ErrInvalidInput)
	}

	ticket, err := e.tickets.GetTicket(ctx, token)
	if err != nil {
		return nil, storageErr(err)
	}
	if ticket == nil || ticket.Preview == "" || len(ticket.Embedding) == 0 {
		return nil, ErrMissingCapture
	}

	code, err := newAccessCode()
	if err != nil {
		return nil, fmt.Errorf("generating access code: %w", err)
	}

	identity := storage.Identity{
		Name:      name,
		NameKey:   NameKey(name),
		Embedding: ticket.Embedding,
		Preview:   ticket.Preview,
		Class:     class,
		Roll:      roll,
		Code:      code,
		CreatedAt: e.now(),
	}
	if err := e.identities.InsertIdentity(ctx, identity); err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIdentity, name)
		}
		return nil, storageErr(err)
	}

	// Ticket cleanup is best-effort: the identity exists either way, and a
	// leftover ticket expires on its own TTL.
	if err := e.tickets.DeleteTicket(ctx, token); err != nil {
		e.audit.Record(ctx, "WARNING: Failed to clear capture ticket after enrollment: %v", err)
	}

	e.audit.Record(ctx, "NEW REGISTRATION: %s | Class: %s | Roll: %s | Code: %s", name, class, roll, code)
	return &EnrollResult{Name: name, Code: code}, nil
}
