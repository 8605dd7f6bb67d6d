package database

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/krishkalaria12/linegrade/logging"
	"github.com/krishkalaria12/linegrade/models"
	"gorm.io/gorm"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "linegrade_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// running twice must be harmless
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, m := range models.All() {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}
	if !db.Migrator().HasIndex(&models.Image{}, "idx_images_item_camera") {
		t.Fatalf("missing unique index on images(item, camera)")
	}
}

func TestWaitForDBReturnsWhenReachable(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "wait.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := WaitForDB(ctx, db, 10*time.Millisecond); err != nil {
		t.Fatalf("wait for db: %v", err)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect("mysql", "dsn", false); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestCloseNil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("close nil: %v", err)
	}
}

func TestGormLogsGoThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "log.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	buf.Reset()

	err = db.First(&models.Camera{}, 42).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("missing record was logged: %s", buf.String())
	}

	var n int
	if err := db.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error; err == nil {
		t.Fatalf("expected error for unknown table")
	}
	out := buf.String()
	if !strings.Contains(out, `"component":"gorm"`) || !strings.Contains(out, "no_such_table") {
		t.Fatalf("query error not logged through zerolog: %q", out)
	}
}
