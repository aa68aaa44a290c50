package storage

import (
	"context"
	"log"

	"github.com/facegate/facegate/internal/config"
)

// PostgresOpener is implemented by the postgres package and injected by the
// caller so this package does not depend on the driver.
type PostgresOpener func(ctx context.Context, cfg *config.Config) (Store, error)

// MemoryOpener constructs the in-process fallback store.
type MemoryOpener func(cfg *config.Config) Store

// Connect selects the backend once at process start: when a database URL is
// configured it probes PostgreSQL and uses it; on a missing URL or a failed
// probe it falls back to the volatile in-memory store. The decision is
// process-wide and never changes at runtime.
func Connect(ctx context.Context, cfg *config.Config, openPostgres PostgresOpener, openMemory MemoryOpener) Store {
	if cfg.Database.URL != "" {
		store, err := openPostgres(ctx, cfg)
		if err == nil {
			log.Printf("storage: using PostgreSQL backend")
			return store
		}
		log.Printf("storage: PostgreSQL unavailable (%v), falling back to in-memory storage", err)
	} else {
		log.Printf("storage: DATABASE_URL not set, using in-memory storage")
	}
	log.Printf("storage: data will be lost on restart")
	return openMemory(cfg)
}
