package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// BalanceKeeper is the accounting surface the vault drives. The vault never
// mutates balances directly; every decrement goes through the checked Debit
// so the balance test and the mutation are one atomic step.
type BalanceKeeper interface {
	Deposit(account AccountID, amount Amount) (Amount, error)
	Credit(account AccountID, amount Amount) (Amount, error)
	Debit(account AccountID, amount Amount) (Amount, error)
	Transfer(from, to AccountID, amount Amount) (fromBalance, toBalance Amount, err error)
	BalanceOf(account AccountID) Amount
}

// Settlement describes one outbound value delivery.
type Settlement struct {
	Account  AccountID
	Amount   Amount
	Channel  string
	Metadata map[string]any
}

// Settler executes the external value transfer for a withdrawal. It runs
// synchronously and must be assumed capable of invoking arbitrary reentrant
// logic against the vault before it returns.
type Settler interface {
	Settle(ctx context.Context, settlement Settlement) error
}

// SettlerFunc adapts a function to the Settler contract.
type SettlerFunc func(ctx context.Context, settlement Settlement) error

func (f SettlerFunc) Settle(ctx context.Context, settlement Settlement) error {
	return f(ctx, settlement)
}

// NopSettler accepts every settlement without delivering anything. It is the
// default rail for deployments that record withdrawals only.
type NopSettler struct{}

func (NopSettler) Settle(context.Context, Settlement) error { return nil }

var _ Settler = NopSettler{}

var _ Settler = (SettlerFunc)(nil)

// EventRecorder appends to the externally observable ledger event stream.
// Append assigns the event id and sequence.
type EventRecorder interface {
	Append(ctx context.Context, in AppendLedgerEventInput) (LedgerEvent, error)
}

type EventReader interface {
	List(ctx context.Context, filter LedgerEventFilter) ([]LedgerEvent, error)
}

type EventStore interface {
	EventRecorder
	EventReader
}

// BalanceSnapshotWriter persists a point-in-time balance after a committed
// mutation. Snapshot writes are best-effort; the in-memory ledger remains
// authoritative within one vault instance.
type BalanceSnapshotWriter interface {
	Save(ctx context.Context, account AccountID, balance Amount) error
}

type StoreProvider interface {
	EventStore() EventStore
	BalanceStore() BalanceSnapshotWriter
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// VaultService is the surface the command/query packages consume.
type VaultService interface {
	Deposit(ctx context.Context, account AccountID, amount Amount) (DepositResult, error)
	Withdraw(ctx context.Context, account AccountID, amount Amount) (WithdrawResult, error)
	Transfer(ctx context.Context, from, to AccountID, amount Amount) (TransferResult, error)
	BalanceOf(ctx context.Context, account AccountID) (Amount, error)
}
