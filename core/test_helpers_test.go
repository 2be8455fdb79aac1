package core

import (
	"context"
	"fmt"
	"sync"
)

func newTestService(t interface {
	Helper()
	Fatalf(string, ...any)
}, options ...Option) *Service {
	t.Helper()
	base := []Option{WithLogger(stubLogger{})}
	service, err := NewService(DefaultConfig(), append(base, options...)...)
	if err != nil {
		t.Fatalf("expected service to build, got %v", err)
	}
	return service
}

func fundAccount(t interface {
	Helper()
	Fatalf(string, ...any)
}, service *Service, account AccountID, amount Amount) {
	t.Helper()
	if _, err := service.Deposit(context.Background(), account, amount); err != nil {
		t.Fatalf("expected funding deposit to succeed, got %v", err)
	}
}

type recordingSettler struct {
	mu          sync.Mutex
	settlements []Settlement
	err         error
}

func (s *recordingSettler) Settle(_ context.Context, settlement Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settlements = append(s.settlements, settlement)
	return s.err
}

func (s *recordingSettler) calls() []Settlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Settlement(nil), s.settlements...)
}

// reenteringSettler re-enters the vault from inside a settlement, the way a
// malicious payout rail would. The nested call result is captured so tests
// can assert it was rejected.
type reenteringSettler struct {
	service *Service
	attack  func(ctx context.Context, service *Service) error

	mu         sync.Mutex
	calls      int
	nestedErrs []error
}

func (s *reenteringSettler) Settle(ctx context.Context, _ Settlement) error {
	s.mu.Lock()
	s.calls++
	depth := s.calls
	s.mu.Unlock()

	if depth > 1 || s.attack == nil || s.service == nil {
		return nil
	}
	err := s.attack(ctx, s.service)

	s.mu.Lock()
	s.nestedErrs = append(s.nestedErrs, err)
	s.mu.Unlock()
	return nil
}

func (s *reenteringSettler) nestedErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.nestedErrs...)
}

type failingEventStore struct {
	appendErr error
	listErr   error
}

func (s failingEventStore) Append(context.Context, AppendLedgerEventInput) (LedgerEvent, error) {
	return LedgerEvent{}, s.appendErr
}

func (s failingEventStore) List(context.Context, LedgerEventFilter) ([]LedgerEvent, error) {
	return nil, s.listErr
}

type recordingBalanceWriter struct {
	mu        sync.Mutex
	snapshots map[AccountID]Amount
	err       error
}

func newRecordingBalanceWriter() *recordingBalanceWriter {
	return &recordingBalanceWriter{snapshots: map[AccountID]Amount{}}
}

func (w *recordingBalanceWriter) Save(_ context.Context, account AccountID, balance Amount) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshots[account] = balance
	return nil
}

func (w *recordingBalanceWriter) snapshot(account AccountID) (Amount, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	balance, ok := w.snapshots[account]
	return balance, ok
}

type metricsCall struct {
	name  string
	value float64
	tags  map[string]string
}

type capturingMetrics struct {
	mu         sync.Mutex
	counters   []metricsCall
	histograms []metricsCall
}

func (m *capturingMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, metricsCall{name: name, value: float64(value), tags: tags})
}

func (m *capturingMetrics) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, metricsCall{name: name, value: value, tags: tags})
}

func (m *capturingMetrics) counterNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.counters))
	for _, call := range m.counters {
		names = append(names, call.name)
	}
	return names
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type staticStoreProvider struct {
	eventStore   EventStore
	balanceStore BalanceSnapshotWriter
}

func (p staticStoreProvider) EventStore() EventStore {
	return p.eventStore
}

func (p staticStoreProvider) BalanceStore() BalanceSnapshotWriter {
	return p.balanceStore
}

type staticStoreFactory struct {
	provider StoreProvider
	err      error
	built    bool
	client   any
}

func (f *staticStoreFactory) BuildStores(client any) (StoreProvider, error) {
	f.built = true
	f.client = client
	if f.err != nil {
		return nil, f.err
	}
	if f.provider == nil {
		return nil, fmt.Errorf("no stores configured")
	}
	return f.provider, nil
}
