package testsupport

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goliatone/go-autocompleter/pkg/manager"
)

// Color is the entity fixture used by entity-mode tests.
type Color struct {
	ID     int    `gorm:"primaryKey"`
	Name   string `gorm:"not null"`
	Family string
	Active bool
}

// ColorFixtures is the seeded content of the colors table, in id order.
var ColorFixtures = []Color{
	{ID: 1, Name: "Red", Family: "warm", Active: true},
	{ID: 2, Name: "Blue", Family: "cool", Active: true},
	{ID: 3, Name: "Green", Family: "cool", Active: true},
	{ID: 4, Name: "Orange", Family: "warm", Active: true},
	{ID: 5, Name: "Grey", Family: "neutral", Active: false},
}

// OpenSQLite opens a shared-cache in-memory database private to the test.
// The connection is closed during cleanup.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = manager.Close(db)
	})
	return db
}

// SeedColors migrates and fills the colors table.
func SeedColors(t *testing.T, db *gorm.DB) {
	t.Helper()

	if err := db.AutoMigrate(&Color{}); err != nil {
		t.Fatalf("migrate colors: %v", err)
	}
	rows := append([]Color(nil), ColorFixtures...)
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed colors: %v", err)
	}
}

// ColorRegistry returns a registry whose default manager holds seeded colors.
func ColorRegistry(t *testing.T) (*manager.StaticRegistry, *gorm.DB) {
	t.Helper()

	db := OpenSQLite(t)
	SeedColors(t, db)
	reg := manager.NewRegistry(manager.WithManager(manager.DefaultName, db))
	return reg, db
}

// GoldenUpdateEnv names the variable that rewrites golden files instead of
// comparing against them.
const GoldenUpdateEnv = "UPDATE_GOLDENS"

// AssertGolden compares got with the file at path. With UPDATE_GOLDENS set the
// file is rewritten from got and the comparison is skipped.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()

	if os.Getenv(GoldenUpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden dir %s: %v", path, err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("update golden %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v (run with %s=1 to create it)", path, err, GoldenUpdateEnv)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("output mismatch for %s (-want +got):\n%s", path, diff)
	}
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
