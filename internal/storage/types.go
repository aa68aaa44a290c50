package storage

import (
	"time"
)

// Identity represents a permanently enrolled subject.
type Identity struct {
	Name      string    // unique display name, primary key
	NameKey   string    // normalized form of Name, unique, used for collision checks
	Embedding []float32 // face embedding, immutable after enrollment
	Preview   string    // bounded snippet of the captured image, audit/UI only
	Class     string
	Roll      string
	Code      string // access code issued at enrollment
	CreatedAt time.Time
}

// CaptureTicket is the ephemeral holder of a not-yet-enrolled face,
// keyed by an opaque capture session token.
type CaptureTicket struct {
	Token     string
	Preview   string
	Embedding []float32
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AccessSession is a live access grant resulting from a successful match.
// Identity fields are copied by value so deleting the identity does not
// invalidate a session already in progress.
type AccessSession struct {
	ID         string
	Name       string
	Class      string
	Roll       string
	Code       string
	StartedAt  time.Time
	Confidence float64 // match confidence, 0-100
}

// LogEntry is one audit record.
type LogEntry struct {
	Timestamp time.Time
	Action    string
	Formatted string // pre-rendered display string
}
