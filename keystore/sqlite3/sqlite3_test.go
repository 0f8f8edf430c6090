package sqlite3

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ keystore.Keystore = (*Sqlite3)(nil)

func TestSqlite3(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "backups.db")

	k, err := New(path, "backups")
	require.NoError(t, err)
	defer k.Close()

	id := uuid.New()
	_, err = k.Get(ctx, id)
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	require.NoError(t, k.Set(ctx, id, []byte("first")))
	require.NoError(t, k.Set(ctx, id, []byte("second")))

	stored, err := k.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), stored)

	require.NoError(t, k.Delete(ctx, id))
	_, err = k.Get(ctx, id)
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	// reopening keeps the table and its rows
	other := uuid.New()
	require.NoError(t, k.Set(ctx, other, []byte("kept")))
	require.NoError(t, k.Close())

	reopened, err := New(path, "backups")
	require.NoError(t, err)
	defer reopened.Close()
	stored, err = reopened.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), stored)
}
