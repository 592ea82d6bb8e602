package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBaseRepository[widget](newTestManager(t, nil).DB("main"))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	require.NoError(t, repo.CreateInBatches(ctx, []widget{{Name: "b"}, {Name: "c"}}, 10))
	require.NoError(t, repo.Create(ctx, &widget{Name: "a"}))
	require.NoError(t, repo.CreateInBatches(ctx, nil, 10))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	all, err = repo.FindAll(ctx, OrderBy("id"))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestBaseRepository_Transaction(t *testing.T) {
	ctx := context.Background()
	repo := NewBaseRepository[widget](newTestManager(t, nil).DB("main"))

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *BaseRepository[widget]) error {
		if err := tx.Create(ctx, &widget{Name: "rolled back"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBaseRepository_FindAllError(t *testing.T) {
	m := newTestManager(t, nil)
	repo := NewBaseRepository[widget](m.DB("main"))
	require.NoError(t, m.Close())

	_, err := repo.FindAll(context.Background())
	assert.Error(t, err)
}
