// Package memory provides the volatile in-process storage fallback. It is
// selected when PostgreSQL is not configured or unreachable at startup.
// All maps are guarded by a single mutex; uniqueness and ticket TTL are
// enforced here in application logic rather than by a storage engine.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/facegate/facegate/internal/storage"
)

// Store is the in-memory implementation of storage.Store.
type Store struct {
	mu         sync.RWMutex
	identities map[string]storage.Identity // keyed by exact name
	nameKeys   map[string]string           // normalized key -> exact name
	tickets    map[string]storage.CaptureTicket
	sessions   map[string]storage.AccessSession
	logs       []storage.LogEntry

	logRetention int
	now          func() time.Time
}

// NewStore creates an empty in-memory store retaining at most logRetention
// audit entries.
func NewStore(logRetention int) *Store {
	return &Store{
		identities:   make(map[string]storage.Identity),
		nameKeys:     make(map[string]string),
		tickets:      make(map[string]storage.CaptureTicket),
		sessions:     make(map[string]storage.AccessSession),
		logRetention: logRetention,
		now:          time.Now,
	}
}

func (s *Store) Mode() string { return "memory" }

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// ---- identities ----

func (s *Store) InsertIdentity(ctx context.Context, id storage.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[id.Name]; ok {
		return storage.ErrDuplicateName
	}
	if _, ok := s.nameKeys[id.NameKey]; ok {
		return storage.ErrDuplicateName
	}
	s.identities[id.Name] = id
	s.nameKeys[id.NameKey] = id.Name
	return nil
}

func (s *Store) GetIdentity(ctx context.Context, name string) (*storage.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.identities[name]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (s *Store) ListIdentities(ctx context.Context) ([]storage.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Identity, 0, len(s.identities))
	for _, id := range s.identities {
		out = append(out, id)
	}
	// Map iteration order is random; the matcher's tie-breaking and the
	// admin listing both rely on enrollment order.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateIdentity(ctx context.Context, oldName, name, nameKey, class, roll string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.identities[oldName]
	if !ok {
		return storage.ErrNotFound
	}
	if owner, ok := s.nameKeys[nameKey]; ok && owner != oldName {
		return storage.ErrDuplicateName
	}

	delete(s.identities, oldName)
	delete(s.nameKeys, id.NameKey)

	id.Name = name
	id.NameKey = nameKey
	id.Class = class
	id.Roll = roll
	s.identities[name] = id
	s.nameKeys[nameKey] = name
	return nil
}

func (s *Store) DeleteIdentity(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.identities[name]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.identities, name)
	delete(s.nameKeys, id.NameKey)
	return nil
}

// ---- capture tickets ----

func (s *Store) UpsertTicket(ctx context.Context, t storage.CaptureTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets[t.Token] = t
	return nil
}

func (s *Store) GetTicket(ctx context.Context, token string) (*storage.CaptureTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[token]
	if !ok || s.now().After(t.ExpiresAt) {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) DeleteTicket(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tickets, token)
	return nil
}

func (s *Store) PruneExpiredTickets(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var pruned int64
	for token, t := range s.tickets {
		if now.After(t.ExpiresAt) {
			delete(s.tickets, token)
			pruned++
		}
	}
	return pruned, nil
}

// ---- access sessions ----

func (s *Store) ReplaceSession(ctx context.Context, sess storage.AccessSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.sessions {
		if existing.Name == sess.Name {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*storage.AccessSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// ---- audit log ----

func (s *Store) AppendLog(ctx context.Context, e storage.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, e)
	if s.logRetention > 0 && len(s.logs) > s.logRetention {
		s.logs = s.logs[len(s.logs)-s.logRetention:]
	}
	return nil
}

func (s *Store) RecentLogs(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.logs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, 0, n)
	for i := len(s.logs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.logs[i].Formatted)
	}
	return out, nil
}
