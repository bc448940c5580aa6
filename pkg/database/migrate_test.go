package database

import (
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"hirematrix-backend/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := newSource(migrations.FS)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, ident, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "init", ident)
	script, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(script), "CREATE TABLE")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	defer down.Close()
	script, err = io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, string(script), "DROP TABLE")
}

func TestNewSource(t *testing.T) {
	t.Run("Should reject a directory without migrations", func(t *testing.T) {
		_, err := newSource(fstest.MapFS{"README.md": {Data: []byte("notes")}})
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("Should order versions", func(t *testing.T) {
		src, err := newSource(fstest.MapFS{
			"000002_scores.up.sql": {Data: []byte("SELECT 2")},
			"000001_init.up.sql":   {Data: []byte("SELECT 1")},
		})
		require.NoError(t, err)
		defer src.Close()

		first, err := src.First()
		require.NoError(t, err)
		assert.Equal(t, uint(1), first)
		next, err := src.Next(first)
		require.NoError(t, err)
		assert.Equal(t, uint(2), next)
	})
}
