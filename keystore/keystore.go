package keystore

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when no object is stored under the id.
var ErrNotFound = errors.New("key does not exist")

// Keystore holds opaque blobs by id. Profile backups are stored through it.
type Keystore interface {
	Get(ctx context.Context, id uuid.UUID) ([]byte, error)
	Set(ctx context.Context, id uuid.UUID, contents []byte) error
	Delete(ctx context.Context, id uuid.UUID) error
}
