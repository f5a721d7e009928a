package cameras

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 user=console dbname=console sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return gdb
}

func TestInsertFirstROI_IgnoresExistingRow(t *testing.T) {
	gdb := dryRunDB(t)
	rec := &ROIRecord{CameraID: "6f1c2a9e-1d2b-4c3d-8e9f-0a1b2c3d4e5f", Version: 1, Status: "draft", CanvasWidth: 960, CanvasHeight: 540}

	sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Clauses(firstROIConflict).Create(rec)
	})
	if !strings.Contains(sql, `ON CONFLICT ("camera_id") DO NOTHING`) {
		t.Fatalf("sql = %s", sql)
	}
}

func TestInsertFirstROI_NothingInsertedIsConflict(t *testing.T) {
	gdb := dryRunDB(t)
	rec := &ROIRecord{CameraID: "6f1c2a9e-1d2b-4c3d-8e9f-0a1b2c3d4e5f", Version: 1, Status: "draft", CanvasWidth: 960, CanvasHeight: 540}

	// A dry run affects no rows, the same outcome as losing the insert race.
	if err := insertFirstROI(gdb, rec); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
}
