package core

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service is the guarded vault: deposits, withdrawals, and direct transfers
// over a BalanceKeeper, with the withdrawal path wrapped in a reentrancy
// guard and ordered checks-effects-interactions around the settler call.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	ledger            BalanceKeeper
	guard             *ReentrancyGuard
	settler           Settler
	eventStore        EventStore
	balanceStore      BalanceSnapshotWriter
	persistenceClient any
	repositoryFactory any
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	Ledger            BalanceKeeper
	Settler           Settler
	EventStore        EventStore
	BalanceStore      BalanceSnapshotWriter
	PersistenceClient any
	RepositoryFactory any
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("vault", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("vault"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.settler == nil {
		builder.settler = NopSettler{}
	}
	if builder.guard == nil {
		builder.guard = NewReentrancyGuard()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.eventStore == nil || builder.balanceStore == nil) && builder.repositoryFactory != nil {
		var stores StoreProvider
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			built, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			stores = built
		} else if provider, ok := builder.repositoryFactory.(StoreProvider); ok {
			stores = provider
		}
		if stores != nil {
			if builder.eventStore == nil {
				builder.eventStore = stores.EventStore()
			}
			if builder.balanceStore == nil {
				builder.balanceStore = stores.BalanceStore()
			}
		}
	}
	if builder.eventStore == nil {
		builder.eventStore = NewMemoryEventLog(finalConfig.Events.BufferSize)
	}
	if builder.ledger == nil {
		builder.ledger = NewLedger()
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		ledger:            builder.ledger,
		guard:             builder.guard,
		settler:           builder.settler,
		eventStore:        builder.eventStore,
		balanceStore:      builder.balanceStore,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

// Deposit credits the account and appends a Deposited event. No external
// call is involved, so the guard does not apply.
func (s *Service) Deposit(ctx context.Context, account AccountID, amount Amount) (DepositResult, error) {
	startedAt := time.Now()
	result, err := s.deposit(ctx, account, amount)
	s.observeOperation(ctx, startedAt, "deposit", err, map[string]any{
		"account": string(account),
		"amount":  amount,
	})
	return result, s.mapError(err)
}

func (s *Service) deposit(ctx context.Context, account AccountID, amount Amount) (DepositResult, error) {
	if s == nil || s.ledger == nil {
		return DepositResult{}, fmt.Errorf("core: vault ledger is not configured")
	}
	account = NormalizeAccountID(account)
	if err := account.Validate(); err != nil {
		return DepositResult{}, err
	}
	if amount == 0 {
		return DepositResult{}, ErrInvalidAmount
	}

	balance, err := s.ledger.Deposit(account, amount)
	if err != nil {
		return DepositResult{}, err
	}
	s.saveSnapshot(ctx, account, balance)
	s.recordEvent(ctx, AppendLedgerEventInput{
		Kind:    EventDeposited,
		Account: account,
		Amount:  amount,
	})
	return DepositResult{Account: account, Amount: amount, Balance: balance}, nil
}

// Withdraw debits the account and delivers the value through the settler.
// The sequence is fixed: guard and balance checks, guard acquisition, debit,
// external call, release. The debit commits before control reaches the
// settler, so reentrant calls observe the reduced balance; a settler failure
// triggers a compensating re-credit before the error returns.
func (s *Service) Withdraw(ctx context.Context, account AccountID, amount Amount) (WithdrawResult, error) {
	startedAt := time.Now()
	result, err := s.withdraw(ctx, account, amount)
	s.observeOperation(ctx, startedAt, "withdraw", err, map[string]any{
		"account": string(account),
		"amount":  amount,
	})
	return result, s.mapError(err)
}

func (s *Service) withdraw(ctx context.Context, account AccountID, amount Amount) (WithdrawResult, error) {
	if s == nil || s.ledger == nil {
		return WithdrawResult{}, fmt.Errorf("core: vault ledger is not configured")
	}
	account = NormalizeAccountID(account)
	if err := account.Validate(); err != nil {
		return WithdrawResult{}, err
	}
	if amount == 0 {
		return WithdrawResult{}, ErrInvalidAmount
	}
	// Reentrant attempts fail here, before any state change.
	if s.guard.State() == GuardBusy {
		return WithdrawResult{}, ErrReentrant
	}
	if s.ledger.BalanceOf(account) < amount {
		return WithdrawResult{}, ErrInsufficientBalance
	}

	balance, err := s.withdrawGuarded(ctx, account, amount)
	if err != nil {
		return WithdrawResult{}, err
	}

	// The event is appended only after the guard is back to Idle.
	s.saveSnapshot(ctx, account, balance)
	s.recordEvent(ctx, AppendLedgerEventInput{
		Kind:    EventWithdrawn,
		Account: account,
		Amount:  amount,
	})
	return WithdrawResult{Account: account, Amount: amount, Balance: balance}, nil
}

func (s *Service) withdrawGuarded(ctx context.Context, account AccountID, amount Amount) (Amount, error) {
	release, err := s.guard.Acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	// Effect before interaction: the ledger reflects the withdrawal by the
	// time untrusted code runs.
	balance, err := s.ledger.Debit(account, amount)
	if err != nil {
		return 0, err
	}

	if err := s.settle(ctx, account, amount); err != nil {
		if _, creditErr := s.ledger.Credit(account, amount); creditErr != nil {
			return 0, fmt.Errorf(
				"core: rollback credit after failed settlement: %w (settlement error: %v)",
				creditErr, err,
			)
		}
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return balance, nil
}

// settle runs the external call synchronously. A configured timeout is
// imposed through the context deadline only; the settler must honor it, and
// a deadline error surfaces as ErrTransferFailed like any other failure.
func (s *Service) settle(ctx context.Context, account AccountID, amount Amount) error {
	settler := s.settler
	if settler == nil {
		settler = NopSettler{}
	}
	if timeout := s.config.Settlement.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return settler.Settle(ctx, Settlement{
		Account: account,
		Amount:  amount,
		Channel: s.config.Settlement.Channel,
	})
}

// Transfer performs an atomic two-account balance move with no external
// call, hence no guard.
func (s *Service) Transfer(ctx context.Context, from, to AccountID, amount Amount) (TransferResult, error) {
	startedAt := time.Now()
	result, err := s.transfer(ctx, from, to, amount)
	s.observeOperation(ctx, startedAt, "transfer", err, map[string]any{
		"from":   string(from),
		"to":     string(to),
		"amount": amount,
	})
	return result, s.mapError(err)
}

func (s *Service) transfer(ctx context.Context, from, to AccountID, amount Amount) (TransferResult, error) {
	if s == nil || s.ledger == nil {
		return TransferResult{}, fmt.Errorf("core: vault ledger is not configured")
	}
	from = NormalizeAccountID(from)
	to = NormalizeAccountID(to)
	if err := from.Validate(); err != nil {
		return TransferResult{}, err
	}
	if err := to.Validate(); err != nil {
		return TransferResult{}, err
	}
	if amount == 0 {
		return TransferResult{}, ErrInvalidAmount
	}

	fromBalance, toBalance, err := s.ledger.Transfer(from, to, amount)
	if err != nil {
		return TransferResult{}, err
	}
	s.saveSnapshot(ctx, from, fromBalance)
	s.saveSnapshot(ctx, to, toBalance)
	s.recordEvent(ctx, AppendLedgerEventInput{
		Kind:           EventTransferred,
		Account:        from,
		CounterAccount: to,
		Amount:         amount,
	})
	return TransferResult{
		From:        from,
		To:          to,
		Amount:      amount,
		FromBalance: fromBalance,
		ToBalance:   toBalance,
	}, nil
}

// BalanceOf is a pure read: zero for unknown accounts, never an error for
// missing entries.
func (s *Service) BalanceOf(_ context.Context, account AccountID) (Amount, error) {
	if s == nil || s.ledger == nil {
		return 0, s.mapError(fmt.Errorf("core: vault ledger is not configured"))
	}
	account = NormalizeAccountID(account)
	if err := account.Validate(); err != nil {
		return 0, s.mapError(err)
	}
	return s.ledger.BalanceOf(account), nil
}

// ListLedgerEvents exposes the append-only event stream when the configured
// event store supports reads.
func (s *Service) ListLedgerEvents(ctx context.Context, filter LedgerEventFilter) ([]LedgerEvent, error) {
	if s == nil || s.eventStore == nil {
		return nil, s.mapError(fmt.Errorf("core: vault event store is not configured"))
	}
	events, err := s.eventStore.List(ctx, filter)
	if err != nil {
		return nil, s.mapError(err)
	}
	return events, nil
}

func (s *Service) GuardState() GuardState {
	if s == nil || s.guard == nil {
		return GuardIdle
	}
	return s.guard.State()
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		Ledger:            s.ledger,
		Settler:           s.settler,
		EventStore:        s.eventStore,
		BalanceStore:      s.balanceStore,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
	}
}

// recordEvent appends to the event stream after the state mutation has
// committed. A recorder failure is logged rather than surfaced: the balance
// change (and any external delivery) already happened, so failing the call
// would misreport the outcome.
func (s *Service) recordEvent(ctx context.Context, in AppendLedgerEventInput) {
	if s == nil || s.eventStore == nil {
		return
	}
	if _, err := s.eventStore.Append(ctx, in); err != nil {
		s.logError(ctx, "ledger event append failed", map[string]any{
			"kind":    string(in.Kind),
			"account": string(in.Account),
			"amount":  in.Amount,
			"error":   err.Error(),
		})
	}
}

func (s *Service) saveSnapshot(ctx context.Context, account AccountID, balance Amount) {
	if s == nil || s.balanceStore == nil {
		return
	}
	if err := s.balanceStore.Save(ctx, account, balance); err != nil {
		s.logError(ctx, "balance snapshot save failed", map[string]any{
			"account": string(account),
			"balance": balance,
			"error":   err.Error(),
		})
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

var _ VaultService = (*Service)(nil)
