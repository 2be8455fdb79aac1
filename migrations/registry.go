// Package migrations exposes the vault schema shipped with the module so host
// applications can register it with their go-persistence-bun client.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	vault "github.com/goliatone/go-vault"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// defaultSourceLabel tags vault migrations in the host's migration table.
const defaultSourceLabel = "go-vault"

const migrationsPath = "data/sql/migrations"

// FilesystemSpec pairs a dialect with the filesystem holding its migration
// files.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc binds one dialect's migration filesystem to the host client,
// typically persistence.Client.RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithValidationTargets restricts registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		next := make([]string, 0, len(targets))
		for _, target := range targets {
			if dialect := normalizeDialect(target); dialect != "" {
				next = append(next, dialect)
			}
		}
		if len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// WithFilesystems replaces the embedded filesystems, for hosts that ship the
// vault DDL alongside their own migration tree.
func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		next := make([]FilesystemSpec, 0, len(filesystems))
		for _, spec := range filesystems {
			dialect := normalizeDialect(spec.Dialect)
			if dialect == "" || spec.FS == nil {
				continue
			}
			next = append(next, FilesystemSpec{Dialect: dialect, Path: spec.Path, FS: spec.FS})
		}
		if len(next) > 0 {
			r.Filesystems = next
		}
	}
}

// Filesystems returns one spec per supported dialect, rooted at the embedded
// migration tree. Every spec is guaranteed to hold at least one *.up.sql file.
func Filesystems() ([]FilesystemSpec, error) {
	root := vault.GetCoreMigrationsFS()
	specs := make([]FilesystemSpec, 0, 2)
	for _, entry := range []struct {
		dialect string
		path    string
	}{
		{DialectPostgres, migrationsPath},
		{DialectSQLite, migrationsPath + "/sqlite"},
	} {
		fsys, err := fs.Sub(root, entry.path)
		if err != nil {
			return nil, fmt.Errorf("migrations: resolve %s filesystem: %w", entry.dialect, err)
		}
		matches, err := fs.Glob(fsys, "*.up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", entry.dialect, entry.path, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", entry.dialect, entry.path)
		}
		specs = append(specs, FilesystemSpec{Dialect: entry.dialect, Path: entry.path, FS: fsys})
	}
	return specs, nil
}

// Register wires the vault migrations into the host through registerFn, once
// per dialect named in the validation targets.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}
	if strings.TrimSpace(reg.SourceLabel) == "" {
		return reg, fmt.Errorf("migrations: source label is required")
	}
	if len(reg.ValidationTargets) == 0 {
		return reg, fmt.Errorf("migrations: validation targets are required")
	}
	if len(reg.Filesystems) == 0 {
		return reg, fmt.Errorf("migrations: filesystems are required")
	}

	wanted := make(map[string]struct{}, len(reg.ValidationTargets))
	for _, target := range reg.ValidationTargets {
		wanted[normalizeDialect(target)] = struct{}{}
	}

	for _, spec := range reg.Filesystems {
		if _, ok := wanted[spec.Dialect]; !ok {
			continue
		}
		if spec.FS == nil {
			return reg, fmt.Errorf("migrations: filesystem for %s is nil", spec.Dialect)
		}
		if err := registerFn(ctx, spec.Dialect, reg.SourceLabel, spec.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", spec.Dialect, spec.Path, err)
		}
	}

	return reg, nil
}

func normalizeDialect(dialect string) string {
	return strings.TrimSpace(strings.ToLower(dialect))
}
