package database

import (
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var memoryDBSeq atomic.Int64

// OpenMemory opens a private, migrated in-memory SQLite database.
// Used by tests and by the sqlite driver's local development mode.
func OpenMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:posmem%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
	db, err := Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		return nil, err
	}

	// A shared-cache memory database lives as long as one connection stays open
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
