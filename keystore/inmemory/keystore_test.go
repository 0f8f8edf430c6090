package inmemory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ keystore.Keystore = (*InMemory)(nil)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	k := New()
	id := uuid.New()

	_, err := k.Get(ctx, id)
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	contents := []byte(`{"web":{}}`)
	require.NoError(t, k.Set(ctx, id, contents))
	contents[0] = 'x'

	stored, err := k.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"web":{}}`), stored, "stored value is a copy")

	require.NoError(t, k.Delete(ctx, id))
	_, err = k.Get(ctx, id)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}
