package query

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-vault/core"
)

const (
	TypeGetBalance       = "vault.query.balance.get"
	TypeListLedgerEvents = "vault.query.ledger_events.list"
)

type GetBalanceMessage struct {
	Account core.AccountID
}

func (GetBalanceMessage) Type() string { return TypeGetBalance }

func (m GetBalanceMessage) Validate() error {
	if strings.TrimSpace(string(m.Account)) == "" {
		return fmt.Errorf("query: account id is required")
	}
	return nil
}

type ListLedgerEventsMessage struct {
	Filter core.LedgerEventFilter
}

func (ListLedgerEventsMessage) Type() string { return TypeListLedgerEvents }

func (m ListLedgerEventsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	switch m.Filter.Kind {
	case "", core.EventDeposited, core.EventWithdrawn, core.EventTransferred:
	default:
		return fmt.Errorf("query: unknown event kind %q", m.Filter.Kind)
	}
	return nil
}
