package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Scope narrows or orders a query, e.g. OrderBy("id")
type Scope = func(*gorm.DB) *gorm.DB

// OrderBy sorts ascending on one column
func OrderBy(column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

// BaseRepository carries the generic CRUD a model repository embeds
type BaseRepository[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

func (r *BaseRepository[T]) DB() *gorm.DB {
	return r.db
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create record failed: %w", err)
	}
	return nil
}

// CreateInBatches inserts entities batchSize rows per statement
func (r *BaseRepository[T]) CreateInBatches(ctx context.Context, entities []T, batchSize int) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(entities, batchSize).Error; err != nil {
		return fmt.Errorf("create %d records failed: %w", len(entities), err)
	}
	return nil
}

// FindAll returns every row; never nil on success
func (r *BaseRepository[T]) FindAll(ctx context.Context, scopes ...Scope) ([]T, error) {
	entities := make([]T, 0)
	if err := r.db.WithContext(ctx).Scopes(scopes...).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("query all records failed: %w", err)
	}
	return entities, nil
}

func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	if err := r.db.WithContext(ctx).Model(&entity).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count records failed: %w", err)
	}
	return count, nil
}

// Transaction runs fn with a repository bound to the transaction
func (r *BaseRepository[T]) Transaction(ctx context.Context, fn func(tx *BaseRepository[T]) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewBaseRepository[T](tx))
	})
}
