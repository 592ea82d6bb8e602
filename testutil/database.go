// Package testutil builds the SQLite databases and HTTP requests the
// package tests share.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KOMKZ/yogan-property/database"
	"github.com/KOMKZ/yogan-property/logger"
)

// DBName is the instance name NewSQLiteManager registers
const DBName = "main"

// NewSQLiteManager opens a private in-memory SQLite instance and migrates
// models into it. It is closed when the test ends.
func NewSQLiteManager(t *testing.T, models ...interface{}) *database.Manager {
	t.Helper()
	m, err := database.NewManager(map[string]database.Config{
		DBName: {
			Driver: database.DriverSQLite,
			DSN:    ":memory:",
			// one connection, otherwise each would see its own empty database
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
	}, nil, logger.NewTestCtxLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	if len(models) > 0 {
		require.NoError(t, m.DB(DBName).AutoMigrate(models...))
	}
	return m
}

// DBHelper wraps raw table checks
type DBHelper struct {
	DB *gorm.DB
}

func NewDBHelper(db *gorm.DB) *DBHelper {
	return &DBHelper{DB: db}
}

func (h *DBHelper) Count(tableName string) (int64, error) {
	var count int64
	err := h.DB.Table(tableName).Count(&count).Error
	return count, err
}

func (h *DBHelper) DeleteAll(tableName string) error {
	return h.DB.Exec("DELETE FROM " + tableName).Error
}

// Seed inserts data, a pointer to a model or a slice of models
func (h *DBHelper) Seed(data interface{}) error {
	return h.DB.Create(data).Error
}
