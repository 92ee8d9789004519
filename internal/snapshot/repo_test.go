package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaker/internal/loremaker"
	"loremaker/pkg/database"
)

var day = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "snap.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func TestSaveAndReadBack(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	batch := &loremaker.Batch{
		Characters: loremaker.SampleCharacters(day),
		Error:      `gviz "Characters": status 500`,
		Source:     loremaker.SourceSample,
		LoadedAt:   day,
	}
	snap, err := repo.Save(ctx, batch)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 4, snap.CharacterCount)

	got, err := repo.Get(ctx, snap.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, batch.Error, got.SourceError)
	assert.True(t, got.LoadedAt.Equal(day))

	chars, err := repo.Characters(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.Characters, chars)
}

func TestListNewestFirst(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	clock := day
	repo.Now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first, err := repo.Save(ctx, &loremaker.Batch{Source: "csv:Sheet1", LoadedAt: day})
	require.NoError(t, err)
	second, err := repo.Save(ctx, &loremaker.Batch{Source: "gviz:Characters", LoadedAt: day})
	require.NoError(t, err)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Empty(t, list[0].SourceError)
}

func TestGetMissing(t *testing.T) {
	repo := newRepo(t)
	got, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = repo.Save(context.Background(), nil)
	assert.Error(t, err)
}
