package property

import (
	"context"

	"gorm.io/gorm"

	"github.com/KOMKZ/yogan-property/database"
)

// Lister is the record store as seen by the cache accessor
type Lister interface {
	ListAll(ctx context.Context) ([]Property, error)
}

// Repository reads and seeds the properties table
type Repository struct {
	*database.BaseRepository[Property]
}

var _ Lister = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{BaseRepository: database.NewBaseRepository[Property](db)}
}

// ListAll returns every property ordered by id
func (r *Repository) ListAll(ctx context.Context) ([]Property, error) {
	items, err := r.FindAll(ctx, database.OrderBy("id"))
	if err != nil {
		return nil, ErrListProperties.Wrap(err)
	}
	return items, nil
}

// Migrate creates or updates the properties table
func (r *Repository) Migrate(ctx context.Context) error {
	return r.DB().WithContext(ctx).AutoMigrate(&Property{})
}

// Seed inserts items in one transaction, batchSize rows per statement
func (r *Repository) Seed(ctx context.Context, items []Property, batchSize int) error {
	err := r.Transaction(ctx, func(tx *database.BaseRepository[Property]) error {
		return tx.CreateInBatches(ctx, items, batchSize)
	})
	if err != nil {
		return ErrSeedProperties.Wrap(err)
	}
	return nil
}
