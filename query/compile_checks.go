package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-vault/core"
)

var (
	_ gocmd.Querier[GetBalanceMessage, core.Amount]              = (*GetBalanceQuery)(nil)
	_ gocmd.Querier[ListLedgerEventsMessage, []core.LedgerEvent] = (*ListLedgerEventsQuery)(nil)
)
