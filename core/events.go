package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultEventLogMaxEntries = 8192

// MemoryEventLog is the default append-only event stream. It keeps the most
// recent maxEntries events; the sequence counter never resets, so observers
// can detect trimmed history by a gap at the head of a listing.
type MemoryEventLog struct {
	mu         sync.Mutex
	maxEntries int
	nextSeq    uint64
	entries    []LedgerEvent
	Now        func() time.Time
}

func NewMemoryEventLog(maxEntries int) *MemoryEventLog {
	if maxEntries <= 0 {
		maxEntries = defaultEventLogMaxEntries
	}
	return &MemoryEventLog{
		maxEntries: maxEntries,
		nextSeq:    1,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (l *MemoryEventLog) Append(_ context.Context, in AppendLedgerEventInput) (LedgerEvent, error) {
	if l == nil {
		return LedgerEvent{}, fmt.Errorf("core: event log is not configured")
	}
	if err := in.Validate(); err != nil {
		return LedgerEvent{}, err
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	event := LedgerEvent{
		ID:             uuid.NewString(),
		Sequence:       l.nextSeq,
		Kind:           in.Kind,
		Account:        NormalizeAccountID(in.Account),
		CounterAccount: NormalizeAccountID(in.CounterAccount),
		Amount:         in.Amount,
		Metadata:       cloneFields(in.Metadata),
		OccurredAt:     occurredAt,
	}
	l.nextSeq++
	l.entries = append(l.entries, event)
	if overflow := len(l.entries) - l.maxEntries; overflow > 0 {
		l.entries = append([]LedgerEvent(nil), l.entries[overflow:]...)
	}
	return event, nil
}

func (l *MemoryEventLog) List(_ context.Context, filter LedgerEventFilter) ([]LedgerEvent, error) {
	if l == nil {
		return nil, fmt.Errorf("core: event log is not configured")
	}
	account := NormalizeAccountID(filter.Account)

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LedgerEvent, 0, len(l.entries))
	for _, event := range l.entries {
		if account != "" && event.Account != account {
			continue
		}
		if filter.Kind != "" && event.Kind != filter.Kind {
			continue
		}
		if event.Sequence <= filter.AfterSequence {
			continue
		}
		copied := event
		copied.Metadata = cloneFields(event.Metadata)
		out = append(out, copied)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (l *MemoryEventLog) now() time.Time {
	if l != nil && l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

var _ EventStore = (*MemoryEventLog)(nil)
