package vault

import "github.com/goliatone/go-vault/core"

type Config = core.Config
type SettlementConfig = core.SettlementConfig
type EventsConfig = core.EventsConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type AccountID = core.AccountID
type Amount = core.Amount

type Ledger = core.Ledger
type ReentrancyGuard = core.ReentrancyGuard
type GuardState = core.GuardState

type Settlement = core.Settlement
type Settler = core.Settler
type SettlerFunc = core.SettlerFunc

type LedgerEvent = core.LedgerEvent
type LedgerEventFilter = core.LedgerEventFilter
type EventKind = core.EventKind
type EventStore = core.EventStore
type BalanceSnapshotWriter = core.BalanceSnapshotWriter

type DepositResult = core.DepositResult
type WithdrawResult = core.WithdrawResult
type TransferResult = core.TransferResult

const (
	GuardIdle = core.GuardIdle
	GuardBusy = core.GuardBusy
)

const (
	EventDeposited   = core.EventDeposited
	EventWithdrawn   = core.EventWithdrawn
	EventTransferred = core.EventTransferred
)

var (
	ErrInvalidAccount      = core.ErrInvalidAccount
	ErrInvalidAmount       = core.ErrInvalidAmount
	ErrInsufficientBalance = core.ErrInsufficientBalance
	ErrReentrant           = core.ErrReentrant
	ErrTransferFailed      = core.ErrTransferFailed
	ErrOverflow            = core.ErrOverflow
)

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithLedger            = core.WithLedger
	WithGuard             = core.WithGuard
	WithSettler           = core.WithSettler
	WithEventStore        = core.WithEventStore
	WithBalanceStore      = core.WithBalanceStore
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

func NewLedger() *Ledger {
	return core.NewLedger()
}
