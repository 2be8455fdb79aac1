package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type ledgerEventRecord struct {
	bun.BaseModel `bun:"table:ledger_events,alias:le"`

	ID             string         `bun:"id,pk"`
	Sequence       uint64         `bun:"sequence,notnull"`
	Kind           string         `bun:"kind,notnull"`
	Account        string         `bun:"account,notnull"`
	CounterAccount string         `bun:"counter_account"`
	Amount         uint64         `bun:"amount,notnull"`
	Metadata       map[string]any `bun:"metadata,type:jsonb,notnull"`
	OccurredAt     time.Time      `bun:"occurred_at,nullzero,notnull"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type accountBalanceRecord struct {
	bun.BaseModel `bun:"table:account_balances,alias:ab"`

	ID        string    `bun:"id,pk"`
	Account   string    `bun:"account,notnull,unique"`
	Balance   uint64    `bun:"balance,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
