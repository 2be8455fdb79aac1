package sqlstore

import "github.com/goliatone/go-vault/core"

var (
	_ core.EventStore             = (*LedgerEventStore)(nil)
	_ core.BalanceSnapshotWriter  = (*BalanceSnapshotStore)(nil)
	_ core.BalanceSnapshotWriter  = (*CachedBalanceStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
