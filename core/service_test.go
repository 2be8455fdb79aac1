package core

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestDepositCreditsAndRecordsEvent(t *testing.T) {
	ctx := context.Background()
	snapshots := newRecordingBalanceWriter()
	service := newTestService(t, WithBalanceStore(snapshots))

	result, err := service.Deposit(ctx, "alice", 100)
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if result.Balance != 100 || result.Account != "alice" || result.Amount != 100 {
		t.Fatalf("unexpected deposit result %+v", result)
	}

	balance, err := service.BalanceOf(ctx, "alice")
	if err != nil || balance != 100 {
		t.Fatalf("expected balance 100, got %d (%v)", balance, err)
	}

	events, err := service.ListLedgerEvents(ctx, LedgerEventFilter{Account: "alice"})
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventDeposited || events[0].Amount != 100 {
		t.Fatalf("expected single deposited event, got %+v", events)
	}
	if events[0].Sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", events[0].Sequence)
	}

	if saved, ok := snapshots.snapshot("alice"); !ok || saved != 100 {
		t.Fatalf("expected snapshot 100, got %d (%v)", saved, ok)
	}
}

func TestDepositValidation(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	var richErr *goerrors.Error
	if _, err := service.Deposit(ctx, "  ", 10); !goerrors.As(err, &richErr) || richErr.TextCode != VaultErrorBadInput {
		t.Fatalf("expected bad input for blank account, got %v", err)
	}
	if _, err := service.Deposit(ctx, "alice", 0); !goerrors.As(err, &richErr) || richErr.TextCode != VaultErrorInvalidAmount {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	if events, err := service.ListLedgerEvents(ctx, LedgerEventFilter{}); err != nil || len(events) != 0 {
		t.Fatalf("expected no events after rejected deposits, got %v (%v)", events, err)
	}
}

func TestDepositNormalizesAccountID(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.Deposit(ctx, "  alice  ", 25); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	balance, err := service.BalanceOf(ctx, "alice")
	if err != nil || balance != 25 {
		t.Fatalf("expected normalized account credit, got %d (%v)", balance, err)
	}
}

func TestWithdrawDeliversThroughSettler(t *testing.T) {
	ctx := context.Background()
	settler := &recordingSettler{}
	snapshots := newRecordingBalanceWriter()
	service := newTestService(t, WithSettler(settler), WithBalanceStore(snapshots))
	fundAccount(t, service, "alice", 100)

	result, err := service.Withdraw(ctx, "alice", 40)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if result.Balance != 60 {
		t.Fatalf("expected balance 60, got %d", result.Balance)
	}

	calls := settler.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one settlement, got %d", len(calls))
	}
	if calls[0].Account != "alice" || calls[0].Amount != 40 || calls[0].Channel != "noop" {
		t.Fatalf("unexpected settlement %+v", calls[0])
	}

	if got := service.GuardState(); got != GuardIdle {
		t.Fatalf("expected idle guard after withdraw, got %q", got)
	}

	events, err := service.ListLedgerEvents(ctx, LedgerEventFilter{Kind: EventWithdrawn})
	if err != nil || len(events) != 1 {
		t.Fatalf("expected single withdrawn event, got %v (%v)", events, err)
	}
	if saved, ok := snapshots.snapshot("alice"); !ok || saved != 60 {
		t.Fatalf("expected snapshot 60, got %d (%v)", saved, ok)
	}
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	settler := &recordingSettler{}
	service := newTestService(t, WithSettler(settler))
	fundAccount(t, service, "alice", 30)

	var richErr *goerrors.Error
	_, err := service.Withdraw(ctx, "alice", 31)
	if !goerrors.As(err, &richErr) || richErr.TextCode != VaultErrorInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if len(settler.calls()) != 0 {
		t.Fatalf("expected settler untouched on failed check")
	}
	if got := service.GuardState(); got != GuardIdle {
		t.Fatalf("expected idle guard after failed check, got %q", got)
	}
	balance, err := service.BalanceOf(ctx, "alice")
	if err != nil || balance != 30 {
		t.Fatalf("expected balance intact, got %d (%v)", balance, err)
	}
	if events, err := service.ListLedgerEvents(ctx, LedgerEventFilter{Kind: EventWithdrawn}); err != nil || len(events) != 0 {
		t.Fatalf("expected no withdrawn events, got %v (%v)", events, err)
	}
}

func TestWithdrawSettlementFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	settler := &recordingSettler{err: stderrors.New("rail unavailable")}
	service := newTestService(t, WithSettler(settler))
	fundAccount(t, service, "alice", 100)

	var richErr *goerrors.Error
	_, err := service.Withdraw(ctx, "alice", 40)
	if !goerrors.As(err, &richErr) || richErr.TextCode != VaultErrorTransferFailed {
		t.Fatalf("expected transfer failed, got %v", err)
	}

	balance, err := service.BalanceOf(ctx, "alice")
	if err != nil || balance != 100 {
		t.Fatalf("expected compensating credit back to 100, got %d (%v)", balance, err)
	}
	if got := service.GuardState(); got != GuardIdle {
		t.Fatalf("expected idle guard after failure, got %q", got)
	}
	if events, listErr := service.ListLedgerEvents(ctx, LedgerEventFilter{Kind: EventWithdrawn}); listErr != nil || len(events) != 0 {
		t.Fatalf("expected no withdrawn event after rollback, got %v (%v)", events, listErr)
	}
}

func TestWithdrawReentrantAttackIsRejected(t *testing.T) {
	ctx := context.Background()
	settler := &reenteringSettler{}
	service := newTestService(t, WithSettler(settler))
	settler.service = service
	settler.attack = func(ctx context.Context, service *Service) error {
		_, err := service.Withdraw(ctx, "alice", 40)
		return err
	}
	fundAccount(t, service, "alice", 100)

	result, err := service.Withdraw(ctx, "alice", 40)
	if err != nil {
		t.Fatalf("outer withdraw failed: %v", err)
	}
	if result.Balance != 60 {
		t.Fatalf("expected single debit to 60, got %d", result.Balance)
	}

	nested := settler.nestedErrors()
	if len(nested) != 1 {
		t.Fatalf("expected one nested attempt, got %d", len(nested))
	}
	var richErr *goerrors.Error
	if !goerrors.As(nested[0], &richErr) || richErr.TextCode != VaultErrorReentrant {
		t.Fatalf("expected reentrant rejection, got %v", nested[0])
	}

	balance, err := service.BalanceOf(ctx, "alice")
	if err != nil || balance != 60 {
		t.Fatalf("expected exactly one withdrawal applied, got %d (%v)", balance, err)
	}
	events, err := service.ListLedgerEvents(ctx, LedgerEventFilter{Kind: EventWithdrawn})
	if err != nil || len(events) != 1 {
		t.Fatalf("expected exactly one withdrawn event, got %v (%v)", events, err)
	}
	if got := service.GuardState(); got != GuardIdle {
		t.Fatalf("expected idle guard after attack, got %q", got)
	}
}

func TestWithdrawGuardIsVaultWide(t *testing.T) {
	ctx := context.Background()
	settler := &reenteringSettler{}
	service := newTestService(t, WithSettler(settler))
	settler.service = service
	settler.attack = func(ctx context.Context, service *Service) error {
		// Different account, same vault: still rejected.
		_, err := service.Withdraw(ctx, "bob", 10)
		return err
	}
	fundAccount(t, service, "alice", 100)
	fundAccount(t, service, "bob", 100)

	if _, err := service.Withdraw(ctx, "alice", 40); err != nil {
		t.Fatalf("outer withdraw failed: %v", err)
	}

	nested := settler.nestedErrors()
	if len(nested) != 1 {
		t.Fatalf("expected one nested attempt, got %d", len(nested))
	}
	var richErr *goerrors.Error
	if !goerrors.As(nested[0], &richErr) || richErr.TextCode != VaultErrorReentrant {
		t.Fatalf("expected reentrant rejection for sibling account, got %v", nested[0])
	}
	balance, err := service.BalanceOf(ctx, "bob")
	if err != nil || balance != 100 {
		t.Fatalf("expected bob untouched, got %d (%v)", balance, err)
	}
}

func TestWithdrawCommitsDebitBeforeSettlement(t *testing.T) {
	ctx := context.Background()
	var observed Amount
	settler := &reenteringSettler{}
	service := newTestService(t, WithSettler(settler))
	settler.service = service
	settler.attack = func(ctx context.Context, service *Service) error {
		balance, err := service.BalanceOf(ctx, "alice")
		observed = balance
		return err
	}
	fundAccount(t, service, "alice", 100)

	if _, err := service.Withdraw(ctx, "alice", 40); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if observed != 60 {
		t.Fatalf("expected settler to observe committed debit of 60, got %d", observed)
	}
}

func TestDepositAllowedDuringSettlement(t *testing.T) {
	ctx := context.Background()
	settler := &reenteringSettler{}
	service := newTestService(t, WithSettler(settler))
	settler.service = service
	settler.attack = func(ctx context.Context, service *Service) error {
		// Deposits take no external action, so the guard does not apply.
		_, err := service.Deposit(ctx, "alice", 5)
		return err
	}
	fundAccount(t, service, "alice", 100)

	if _, err := service.Withdraw(ctx, "alice", 40); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	nested := settler.nestedErrors()
	if len(nested) != 1 || nested[0] != nil {
		t.Fatalf("expected nested deposit to succeed, got %v", nested)
	}
	balance, err := service.BalanceOf(ctx, "alice")
	if err != nil || balance != 65 {
		t.Fatalf("expected 100-40+5=65, got %d (%v)", balance, err)
	}
}

func TestWithdrawAppliesSettlementTimeout(t *testing.T) {
	ctx := context.Background()
	deadlineSeen := false
	settler := SettlerFunc(func(ctx context.Context, _ Settlement) error {
		_, deadlineSeen = ctx.Deadline()
		return nil
	})
	service := newTestService(t, WithSettler(settler))
	fundAccount(t, service, "alice", 100)
	if _, err := service.Withdraw(ctx, "alice", 10); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if deadlineSeen {
		t.Fatalf("expected no deadline without configured timeout")
	}

	timed, err := NewService(
		Config{Settlement: SettlementConfig{Timeout: time.Second}},
		WithLogger(stubLogger{}),
		WithSettler(settler),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	fundAccount(t, timed, "alice", 100)
	if _, err := timed.Withdraw(ctx, "alice", 10); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !deadlineSeen {
		t.Fatalf("expected settlement context deadline from configured timeout")
	}
}

func TestWithdrawSurfacesSettlementDeadline(t *testing.T) {
	ctx := context.Background()
	settler := SettlerFunc(func(ctx context.Context, _ Settlement) error {
		<-ctx.Done()
		return ctx.Err()
	})
	service, err := NewService(
		Config{Settlement: SettlementConfig{Timeout: 5 * time.Millisecond}},
		WithLogger(stubLogger{}),
		WithSettler(settler),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	fundAccount(t, service, "alice", 100)

	var richErr *goerrors.Error
	_, err = service.Withdraw(ctx, "alice", 10)
	if !goerrors.As(err, &richErr) || richErr.TextCode != VaultErrorTransferFailed {
		t.Fatalf("expected transfer failed on deadline, got %v", err)
	}
	balance, balErr := service.BalanceOf(ctx, "alice")
	if balErr != nil || balance != 100 {
		t.Fatalf("expected rollback after deadline, got %d (%v)", balance, balErr)
	}
}

func TestTransferMovesBalancesAtomically(t *testing.T) {
	ctx := context.Background()
	snapshots := newRecordingBalanceWriter()
	service := newTestService(t, WithBalanceStore(snapshots))
	fundAccount(t, service, "alice", 100)

	result, err := service.Transfer(ctx, "alice", "bob", 30)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if result.FromBalance != 70 || result.ToBalance != 30 {
		t.Fatalf("unexpected transfer result %+v", result)
	}

	events, err := service.ListLedgerEvents(ctx, LedgerEventFilter{Kind: EventTransferred})
	if err != nil || len(events) != 1 {
		t.Fatalf("expected single transferred event, got %v (%v)", events, err)
	}
	if events[0].Account != "alice" || events[0].CounterAccount != "bob" || events[0].Amount != 30 {
		t.Fatalf("unexpected transferred event %+v", events[0])
	}

	if saved, ok := snapshots.snapshot("alice"); !ok || saved != 70 {
		t.Fatalf("expected alice snapshot 70, got %d (%v)", saved, ok)
	}
	if saved, ok := snapshots.snapshot("bob"); !ok || saved != 30 {
		t.Fatalf("expected bob snapshot 30, got %d (%v)", saved, ok)
	}
}

func TestTransferInsufficientBalanceChangesNothing(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	fundAccount(t, service, "alice", 20)

	var richErr *goerrors.Error
	_, err := service.Transfer(ctx, "alice", "bob", 21)
	if !goerrors.As(err, &richErr) || richErr.TextCode != VaultErrorInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	aliceBalance, _ := service.BalanceOf(ctx, "alice")
	bobBalance, _ := service.BalanceOf(ctx, "bob")
	if aliceBalance != 20 || bobBalance != 0 {
		t.Fatalf("expected balances untouched, got %d/%d", aliceBalance, bobBalance)
	}
	if events, listErr := service.ListLedgerEvents(ctx, LedgerEventFilter{Kind: EventTransferred}); listErr != nil || len(events) != 0 {
		t.Fatalf("expected no transferred events, got %v (%v)", events, listErr)
	}
}

func TestEventAppendFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, WithEventStore(failingEventStore{appendErr: stderrors.New("event store down")}))

	result, err := service.Deposit(ctx, "alice", 50)
	if err != nil {
		t.Fatalf("expected deposit to survive event store failure, got %v", err)
	}
	if result.Balance != 50 {
		t.Fatalf("expected balance 50, got %d", result.Balance)
	}
}

func TestSnapshotFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	snapshots := newRecordingBalanceWriter()
	snapshots.err = stderrors.New("snapshot store down")
	service := newTestService(t, WithBalanceStore(snapshots))

	if _, err := service.Deposit(ctx, "alice", 50); err != nil {
		t.Fatalf("expected deposit to survive snapshot failure, got %v", err)
	}
}

func TestServiceBuildsStoresFromRepositoryFactory(t *testing.T) {
	ctx := context.Background()
	eventLog := NewMemoryEventLog(0)
	snapshots := newRecordingBalanceWriter()
	factory := &staticStoreFactory{provider: staticStoreProvider{
		eventStore:   eventLog,
		balanceStore: snapshots,
	}}

	service := newTestService(t,
		WithRepositoryFactory(factory),
		WithPersistenceClient("client-handle"),
	)
	if !factory.built {
		t.Fatalf("expected factory to build stores")
	}
	if factory.client != "client-handle" {
		t.Fatalf("expected persistence client forwarded, got %v", factory.client)
	}

	if _, err := service.Deposit(ctx, "alice", 10); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	events, err := eventLog.List(ctx, LedgerEventFilter{})
	if err != nil || len(events) != 1 {
		t.Fatalf("expected event in factory store, got %v (%v)", events, err)
	}
	if saved, ok := snapshots.snapshot("alice"); !ok || saved != 10 {
		t.Fatalf("expected snapshot in factory store, got %d (%v)", saved, ok)
	}
}

func TestServiceEmitsOperationMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &capturingMetrics{}
	service := newTestService(t, WithMetricsRecorder(metrics))

	if _, err := service.Deposit(ctx, "alice", 10); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := service.Withdraw(ctx, "alice", 5); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	names := metrics.counterNames()
	seen := map[string]bool{}
	for _, name := range names {
		seen[name] = true
	}
	if !seen["vault.deposit.total"] || !seen["vault.withdraw.total"] {
		t.Fatalf("expected deposit and withdraw counters, got %v", names)
	}
}

func TestServiceConfigResolution(t *testing.T) {
	service, err := NewService(
		Config{Settlement: SettlementConfig{Channel: "wire"}},
		WithLogger(stubLogger{}),
		WithConfigProvider(NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
			"service_name": "treasury",
		}})),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := service.Config()
	if cfg.ServiceName != "treasury" {
		t.Fatalf("expected loaded service name, got %q", cfg.ServiceName)
	}
	if cfg.Settlement.Channel != "wire" {
		t.Fatalf("expected runtime channel override, got %q", cfg.Settlement.Channel)
	}
	if cfg.Events.BufferSize != defaultEventLogMaxEntries {
		t.Fatalf("expected default buffer size, got %d", cfg.Events.BufferSize)
	}

	settler := &recordingSettler{}
	routed := newTestService(t, WithSettler(settler))
	fundAccount(t, routed, "alice", 10)
	if _, err := routed.Withdraw(context.Background(), "alice", 1); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if calls := settler.calls(); len(calls) != 1 || calls[0].Channel != "noop" {
		t.Fatalf("expected default channel on settlement, got %+v", calls)
	}
}
