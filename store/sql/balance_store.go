package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-vault/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BalanceSnapshotStore keeps the latest persisted balance per account. The
// in-memory ledger stays authoritative within one vault instance; snapshots
// exist so balances survive restarts and can be read out-of-process.
type BalanceSnapshotStore struct {
	db   *bun.DB
	repo repository.Repository[*accountBalanceRecord]
}

func NewBalanceSnapshotStore(db *bun.DB) (*BalanceSnapshotStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*accountBalanceRecord](db, accountBalanceHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account balance repository wiring: %w", err)
		}
	}
	return &BalanceSnapshotStore{db: db, repo: repo}, nil
}

func (s *BalanceSnapshotStore) Save(ctx context.Context, account core.AccountID, balance core.Amount) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: balance snapshot store is not configured")
	}
	trimmed := strings.TrimSpace(string(account))
	if trimmed == "" {
		return core.ErrInvalidAccount
	}
	now := time.Now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &accountBalanceRecord{}
		err := tx.NewSelect().
			Model(existing).
			Where("account = ?", trimmed).
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			existing.Balance = balance
			existing.UpdatedAt = now
			_, err = tx.NewUpdate().
				Model(existing).
				Column("balance", "updated_at").
				WherePK().
				Exec(ctx)
			return err
		case errors.Is(err, sql.ErrNoRows):
			record := &accountBalanceRecord{
				ID:        uuid.NewString(),
				Account:   trimmed,
				Balance:   balance,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err = tx.NewInsert().Model(record).Exec(ctx)
			return err
		default:
			return err
		}
	})
}

func (s *BalanceSnapshotStore) Get(ctx context.Context, account core.AccountID) (core.Amount, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: balance snapshot store is not configured")
	}
	trimmed := strings.TrimSpace(string(account))
	if trimmed == "" {
		return 0, core.ErrInvalidAccount
	}

	record := &accountBalanceRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("account = ?", trimmed).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Balance, nil
}
