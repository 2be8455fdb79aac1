package query

import (
	"context"

	"github.com/goliatone/go-vault/core"
)

type BalanceReader interface {
	BalanceOf(ctx context.Context, account core.AccountID) (core.Amount, error)
}

type LedgerEventReader interface {
	ListLedgerEvents(ctx context.Context, filter core.LedgerEventFilter) ([]core.LedgerEvent, error)
}

type GetBalanceQuery struct {
	reader BalanceReader
}

func NewGetBalanceQuery(reader BalanceReader) *GetBalanceQuery {
	return &GetBalanceQuery{reader: reader}
}

func (q *GetBalanceQuery) Query(ctx context.Context, msg GetBalanceMessage) (core.Amount, error) {
	if q == nil || q.reader == nil {
		return 0, queryDependencyError("query: balance reader is required")
	}
	return q.reader.BalanceOf(ctx, msg.Account)
}

type ListLedgerEventsQuery struct {
	reader LedgerEventReader
}

func NewListLedgerEventsQuery(reader LedgerEventReader) *ListLedgerEventsQuery {
	return &ListLedgerEventsQuery{reader: reader}
}

func (q *ListLedgerEventsQuery) Query(
	ctx context.Context,
	msg ListLedgerEventsMessage,
) ([]core.LedgerEvent, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: ledger event reader is required")
	}
	return q.reader.ListLedgerEvents(ctx, msg.Filter)
}
