package core

import "sync"

// Ledger tracks per-account balances. Entries are created lazily on first
// credit and never removed; a balance may return to zero and remains
// addressable. The check-and-decrement in debit happens under a single lock
// hold so no reader can observe a torn intermediate state.
type Ledger struct {
	mu       sync.RWMutex
	balances map[AccountID]Amount
}

func NewLedger() *Ledger {
	return &Ledger{balances: map[AccountID]Amount{}}
}

// Deposit credits account by amount. Zero amounts are rejected.
func (l *Ledger) Deposit(account AccountID, amount Amount) (Amount, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	return l.Credit(account, amount)
}

// Credit increments the account balance, failing on overflow rather than
// wrapping.
func (l *Ledger) Credit(account AccountID, amount Amount) (Amount, error) {
	account = NormalizeAccountID(account)
	if err := account.Validate(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	next, err := checkedAdd(l.balances[account], amount)
	if err != nil {
		return 0, err
	}
	l.balances[account] = next
	return next, nil
}

// Debit decrements the account balance. The balance check and the decrement
// are one atomic step; on ErrInsufficientBalance nothing changes.
func (l *Ledger) Debit(account AccountID, amount Amount) (Amount, error) {
	account = NormalizeAccountID(account)
	if err := account.Validate(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	next, err := checkedSub(l.balances[account], amount)
	if err != nil {
		return 0, err
	}
	l.balances[account] = next
	return next, nil
}

// Transfer moves amount from one account to another under a single lock
// hold. If the debit fails the credit never runs and no state changes. No
// external code runs inside a transfer, so no reentrancy guard applies.
func (l *Ledger) Transfer(from, to AccountID, amount Amount) (fromBalance, toBalance Amount, err error) {
	from = NormalizeAccountID(from)
	to = NormalizeAccountID(to)
	if err := from.Validate(); err != nil {
		return 0, 0, err
	}
	if err := to.Validate(); err != nil {
		return 0, 0, err
	}
	if amount == 0 {
		return 0, 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if from == to {
		balance := l.balances[from]
		if balance < amount {
			return 0, 0, ErrInsufficientBalance
		}
		return balance, balance, nil
	}
	debited, err := checkedSub(l.balances[from], amount)
	if err != nil {
		return 0, 0, err
	}
	credited, err := checkedAdd(l.balances[to], amount)
	if err != nil {
		return 0, 0, err
	}
	l.balances[from] = debited
	l.balances[to] = credited
	return debited, credited, nil
}

// BalanceOf returns the recorded balance, zero for unknown accounts. Reads
// take the shared lock so a concurrent withdrawal is observed either fully
// pre-debit or fully post-debit.
func (l *Ledger) BalanceOf(account AccountID) Amount {
	account = NormalizeAccountID(account)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// Accounts returns the ids of every account the ledger has ever credited,
// including those whose balance is back to zero.
func (l *Ledger) Accounts() []AccountID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]AccountID, 0, len(l.balances))
	for account := range l.balances {
		out = append(out, account)
	}
	return out
}
