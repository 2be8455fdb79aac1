package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-vault/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LedgerEventStore persists the append-only ledger event stream. Sequence
// numbers are assigned by the store: the counter is seeded once from the
// table's max sequence and then incremented under a lock, which assumes a
// single writer instance per database (the vault is a single-instance
// component by contract).
type LedgerEventStore struct {
	db   *bun.DB
	repo repository.Repository[*ledgerEventRecord]

	mu      sync.Mutex
	seeded  bool
	lastSeq uint64
}

func NewLedgerEventStore(db *bun.DB) (*LedgerEventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*ledgerEventRecord](db, ledgerEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid ledger event repository wiring: %w", err)
		}
	}
	return &LedgerEventStore{db: db, repo: repo}, nil
}

func (s *LedgerEventStore) Append(ctx context.Context, in core.AppendLedgerEventInput) (core.LedgerEvent, error) {
	if s == nil || s.repo == nil {
		return core.LedgerEvent{}, fmt.Errorf("sqlstore: ledger event store is not configured")
	}
	if err := in.Validate(); err != nil {
		return core.LedgerEvent{}, err
	}

	sequence, err := s.nextSequence(ctx)
	if err != nil {
		return core.LedgerEvent{}, err
	}

	occurredAt := in.OccurredAt.UTC()
	if in.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	record := &ledgerEventRecord{
		ID:             uuid.NewString(),
		Sequence:       sequence,
		Kind:           string(in.Kind),
		Account:        strings.TrimSpace(string(in.Account)),
		CounterAccount: strings.TrimSpace(string(in.CounterAccount)),
		Amount:         in.Amount,
		Metadata:       copyAnyMap(in.Metadata),
		OccurredAt:     occurredAt,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return core.LedgerEvent{}, err
	}
	return ledgerEventRecordToDomain(record), nil
}

func (s *LedgerEventStore) List(ctx context.Context, filter core.LedgerEventFilter) ([]core.LedgerEvent, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: ledger event store is not configured")
	}

	selectors := []repository.SelectCriteria{
		repository.OrderBy("sequence ASC"),
	}
	if account := strings.TrimSpace(string(filter.Account)); account != "" {
		selectors = append(selectors, repository.SelectBy("account", "=", account))
	}
	if kind := strings.TrimSpace(string(filter.Kind)); kind != "" {
		selectors = append(selectors, repository.SelectBy("kind", "=", kind))
	}
	// The sequence predicate has to land in the query itself: trimming
	// already-seen rows after pagination would let them consume the window.
	if filter.AfterSequence > 0 {
		selectors = append(selectors, repository.SelectBy("sequence", ">", fmt.Sprint(filter.AfterSequence)))
	}
	if filter.Limit > 0 {
		selectors = append(selectors, repository.SelectPaginate(filter.Limit, 0))
	}

	records, _, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	events := make([]core.LedgerEvent, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		events = append(events, ledgerEventRecordToDomain(record))
	}
	return events, nil
}

func (s *LedgerEventStore) nextSequence(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seeded {
		var max uint64
		err := s.db.NewSelect().
			Model((*ledgerEventRecord)(nil)).
			ColumnExpr("COALESCE(MAX(sequence), 0)").
			Scan(ctx, &max)
		if err != nil {
			return 0, fmt.Errorf("sqlstore: seed ledger event sequence: %w", err)
		}
		s.lastSeq = max
		s.seeded = true
	}
	s.lastSeq++
	return s.lastSeq, nil
}

func ledgerEventRecordToDomain(record *ledgerEventRecord) core.LedgerEvent {
	if record == nil {
		return core.LedgerEvent{}
	}
	return core.LedgerEvent{
		ID:             record.ID,
		Sequence:       record.Sequence,
		Kind:           core.EventKind(record.Kind),
		Account:        core.AccountID(record.Account),
		CounterAccount: core.AccountID(record.CounterAccount),
		Amount:         record.Amount,
		Metadata:       copyAnyMap(record.Metadata),
		OccurredAt:     record.OccurredAt,
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
