package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidAccount      = errors.New("core: invalid account id")
	ErrInvalidAmount       = errors.New("core: invalid amount")
	ErrInsufficientBalance = errors.New("core: insufficient balance")
	ErrReentrant           = errors.New("core: guarded operation already in progress")
	ErrTransferFailed      = errors.New("core: external transfer failed")
	ErrOverflow            = errors.New("core: balance arithmetic overflow")
)

// AccountID is an opaque participant key. The vault places no structure on it
// beyond equality; ids are trimmed and must be non-empty.
type AccountID string

func (a AccountID) Validate() error {
	if strings.TrimSpace(string(a)) == "" {
		return ErrInvalidAccount
	}
	return nil
}

func NormalizeAccountID(a AccountID) AccountID {
	return AccountID(strings.TrimSpace(string(a)))
}

// Amount is a non-negative quantity of value. All arithmetic on balances goes
// through checkedAdd/checkedSub so overflow fails instead of wrapping.
type Amount = uint64

func checkedAdd(balance, amount Amount) (Amount, error) {
	if balance > math.MaxUint64-amount {
		return 0, ErrOverflow
	}
	return balance + amount, nil
}

func checkedSub(balance, amount Amount) (Amount, error) {
	if balance < amount {
		return 0, ErrInsufficientBalance
	}
	return balance - amount, nil
}

type EventKind string

const (
	EventDeposited   EventKind = "deposited"
	EventWithdrawn   EventKind = "withdrawn"
	EventTransferred EventKind = "transferred"
)

// LedgerEvent is one record of the append-only observable stream. Sequence is
// assigned by the recorder and is monotonically increasing per recorder.
type LedgerEvent struct {
	ID             string
	Sequence       uint64
	Kind           EventKind
	Account        AccountID
	CounterAccount AccountID
	Amount         Amount
	Metadata       map[string]any
	OccurredAt     time.Time
}

type AppendLedgerEventInput struct {
	Kind           EventKind
	Account        AccountID
	CounterAccount AccountID
	Amount         Amount
	Metadata       map[string]any
	OccurredAt     time.Time
}

func (in AppendLedgerEventInput) Validate() error {
	switch in.Kind {
	case EventDeposited, EventWithdrawn, EventTransferred:
	default:
		return errors.New("core: unknown ledger event kind")
	}
	if err := in.Account.Validate(); err != nil {
		return err
	}
	if in.Kind == EventTransferred {
		if err := in.CounterAccount.Validate(); err != nil {
			return err
		}
	}
	if in.Amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

type LedgerEventFilter struct {
	Account       AccountID
	Kind          EventKind
	AfterSequence uint64
	Limit         int
}

type DepositResult struct {
	Account AccountID
	Amount  Amount
	Balance Amount
}

type WithdrawResult struct {
	Account AccountID
	Amount  Amount
	Balance Amount
}

type TransferResult struct {
	From        AccountID
	To          AccountID
	Amount      Amount
	FromBalance Amount
	ToBalance   Amount
}
