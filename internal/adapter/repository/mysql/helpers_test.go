package mysql

import (
	"context"
	"testing"
	"time"

	"srp-backend/internal/domain/request"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB with the full schema.
// A single connection keeps every query on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func day(d, hour int) time.Time {
	return time.Date(2024, time.January, d, hour, 0, 0, 0, time.UTC)
}

func makeKillmail(id, pilotID uint64, pilot, ship string, value int64, ts time.Time) *request.Killmail {
	return &request.Killmail{
		ID:              id,
		PilotID:         pilotID,
		PilotName:       pilot,
		CorporationID:   1000,
		SystemID:        30000142,
		ConstellationID: 20000020,
		RegionID:        10000002,
		TypeID:          587,
		TypeName:        ship,
		Value:           decimal.NewFromInt(value),
		URL:             "https://zkillboard.com/kill/1/",
		Timestamp:       ts,
	}
}

func makeRequest(killmailID, divisionID, submitterID uint64, status request.ActionType, payout int64, details string, created time.Time) *request.Request {
	return &request.Request{
		KillmailID:      killmailID,
		DivisionID:      divisionID,
		SubmitterID:     submitterID,
		Details:         details,
		Status:          status,
		Payout:          decimal.NewFromInt(payout),
		StatusUpdatedAt: created,
		CreatedAt:       created,
	}
}
