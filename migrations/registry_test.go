package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	vault "github.com/goliatone/go-vault"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
}

func TestRegister_HonorsSourceLabelAndCustomFilesystems(t *testing.T) {
	custom := fstest.MapFS{
		"00001_host_ledger.up.sql":   {Data: []byte("CREATE TABLE ledger_events (id TEXT);")},
		"00001_host_ledger.down.sql": {Data: []byte("DROP TABLE ledger_events;")},
	}

	var gotLabel string
	var gotDialect string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		gotDialect = dialect
		gotLabel = label
		return nil
	},
		WithSourceLabel("host-app"),
		WithValidationTargets(DialectSQLite),
		WithFilesystems(FilesystemSpec{Dialect: " SQLite ", Path: "custom", FS: custom}),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if gotLabel != "host-app" {
		t.Fatalf("expected custom source label, got %q", gotLabel)
	}
	if gotDialect != DialectSQLite {
		t.Fatalf("expected normalized sqlite dialect, got %q", gotDialect)
	}
}

func TestRegister_RequiresRegisterFunc(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected register func requirement")
	}
}

func TestRegister_PropagatesRegistrationError(t *testing.T) {
	boom := fmt.Errorf("register failed")
	_, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		return boom
	}, WithValidationTargets(DialectPostgres))
	if err == nil || !strings.Contains(err.Error(), "register failed") {
		t.Fatalf("expected registration error propagation, got %v", err)
	}
}

func TestCoreLedgerMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := vault.GetCoreMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_vault_core_ledger.up.sql",
		"data/sql/migrations/00001_vault_core_ledger.down.sql",
		"data/sql/migrations/sqlite/00001_vault_core_ledger.up.sql",
		"data/sql/migrations/sqlite/00001_vault_core_ledger.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestCoreLedgerMigration_CoversLedgerTables(t *testing.T) {
	root := vault.GetCoreMigrationsFS()
	for _, migrationPath := range []string{
		"data/sql/migrations/00001_vault_core_ledger.up.sql",
		"data/sql/migrations/sqlite/00001_vault_core_ledger.up.sql",
	} {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		sql := strings.ToLower(string(content))
		if !strings.Contains(sql, "ledger_events") || !strings.Contains(sql, "account_balances") {
			t.Fatalf("expected %s to create ledger tables", migrationPath)
		}
	}
}
