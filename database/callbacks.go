package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// registerAround hooks before/after around every GORM statement kind
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(prefix+":before_create", before),
		cb.Create().After("gorm:create").Register(prefix+":after_create", after),
		cb.Query().Before("gorm:query").Register(prefix+":before_query", before),
		cb.Query().After("gorm:query").Register(prefix+":after_query", after),
		cb.Update().Before("gorm:update").Register(prefix+":before_update", before),
		cb.Update().After("gorm:update").Register(prefix+":after_update", after),
		cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before),
		cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after),
		cb.Row().Before("gorm:row").Register(prefix+":before_row", before),
		cb.Row().After("gorm:row").Register(prefix+":after_row", after),
		cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before),
		cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after),
	)
}

// operationName is the lower-cased leading SQL keyword, once the
// statement has been built
func operationName(db *gorm.DB) string {
	sql := strings.TrimSpace(db.Statement.SQL.String())
	if sql == "" {
		return "unknown"
	}
	if i := strings.IndexAny(sql, " \t\n"); i > 0 {
		sql = sql[:i]
	}
	return strings.ToLower(sql)
}

func tableName(db *gorm.DB) string {
	if db.Statement.Table == "" {
		return "unknown"
	}
	return db.Statement.Table
}
