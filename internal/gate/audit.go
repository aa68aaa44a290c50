package gate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/facegate/facegate/internal/storage"
)

// RecentLogLimit bounds how many audit entries a read returns; it matches
// the storage retention so a read never misses retained entries.
const RecentLogLimit = 100

// Audit appends system events to the bounded audit log. Append failures are
// logged locally and otherwise ignored so that a broken audit trail never
// blocks the primary operation.
type Audit struct {
	logs storage.LogStore
	now  func() time.Time
}

// NewAudit creates an audit logger over the given log store.
func NewAudit(logs storage.LogStore) *Audit {
	return &Audit{logs: logs, now: time.Now}
}

// Record stores one formatted audit entry.
func (a *Audit) Record(ctx context.Context, format string, args ...any) {
	ts := a.now()
	action := fmt.Sprintf(format, args...)
	entry := storage.LogEntry{
		Timestamp: ts,
		Action:    action,
		Formatted: fmt.Sprintf("[%s] %s", ts.Format("2006-01-02 15:04:05"), action),
	}
	if err := a.logs.AppendLog(ctx, entry); err != nil {
		log.Printf("audit: failed to append log entry: %v", err)
	}
}

// Recent returns up to RecentLogLimit entries, most recent first.
func (a *Audit) Recent(ctx context.Context) ([]string, error) {
	logs, err := a.logs.RecentLogs(ctx, RecentLogLimit)
	if err != nil {
		return nil, storageErr(err)
	}
	return logs, nil
}
