package manager_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"

	"github.com/goliatone/go-autocompleter/pkg/manager"
	"github.com/goliatone/go-autocompleter/pkg/testsupport"
)

func TestStaticRegistry_ResolvesByNameAndDefault(t *testing.T) {
	primary := testsupport.OpenSQLite(t)
	reporting := testsupport.OpenSQLite(t)

	reg := manager.NewRegistry(
		manager.WithManager("", primary),
		manager.WithManager("reporting", reporting),
	)

	got, err := reg.Manager("")
	if err != nil || got != primary {
		t.Fatalf("expected default manager, got %v (err=%v)", got, err)
	}
	got, err = reg.Manager(" reporting ")
	if err != nil || got != reporting {
		t.Fatalf("expected reporting manager, got %v (err=%v)", got, err)
	}
	if diff := cmp.Diff([]string{manager.DefaultName, "reporting"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestStaticRegistry_UnknownManager(t *testing.T) {
	reg := manager.NewRegistry()

	_, err := reg.Manager("missing")
	if !errors.Is(err, manager.ErrManagerNotFound) {
		t.Fatalf("expected ErrManagerNotFound, got %v", err)
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatalf("expected error registering nil handle")
	}
}

func TestStaticRegistry_CustomDefaultName(t *testing.T) {
	db := testsupport.OpenSQLite(t)
	reg := manager.NewRegistry(
		manager.WithDefaultName("main"),
		manager.WithManager("main", db),
	)

	got, err := reg.Manager("")
	if err != nil || got != db {
		t.Fatalf("expected main manager for empty id, got %v (err=%v)", got, err)
	}
}

func TestRegistryFunc(t *testing.T) {
	db := testsupport.OpenSQLite(t)
	reg := manager.RegistryFunc(func(id string) (*gorm.DB, error) {
		if id == "only" {
			return db, nil
		}
		return nil, manager.ErrManagerNotFound
	})

	if got, err := reg.Manager("only"); err != nil || got != db {
		t.Fatalf("expected db, got %v (err=%v)", got, err)
	}

	var empty manager.RegistryFunc
	if _, err := empty.Manager("x"); !errors.Is(err, manager.ErrManagerNotFound) {
		t.Fatalf("expected ErrManagerNotFound for nil func, got %v", err)
	}
}

func TestOpenRegistry_SQLite(t *testing.T) {
	dir := t.TempDir()
	configs := []manager.Config{
		{Name: "default", Driver: "sqlite", DSN: filepath.Join(dir, "default.db")},
		{Name: "archive", DSN: filepath.Join(dir, "archive.db"), MaxOpenConns: 1},
	}

	reg, err := manager.OpenRegistry(t.Context(), configs)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })

	if diff := cmp.Diff([]string{"archive", "default"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	db, err := reg.Manager("archive")
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if err := db.Exec("CREATE TABLE probe (id INTEGER PRIMARY KEY)").Error; err != nil {
		t.Fatalf("exec: %v", err)
	}
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	if _, err := manager.Open(t.Context(), manager.Config{Name: "x"}); err == nil {
		t.Fatalf("expected error for missing dsn")
	}
	if _, err := manager.Open(t.Context(), manager.Config{Name: "x", Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestStaticRegistry_CloseEmptiesRegistry(t *testing.T) {
	db, err := manager.Open(t.Context(), manager.Config{Name: "tmp", DSN: filepath.Join(t.TempDir(), "tmp.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	reg := manager.NewRegistry(manager.WithManager("tmp", db))

	if err := reg.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if names := reg.Names(); len(names) != 0 {
		t.Fatalf("expected empty registry after close, got %v", names)
	}
}
