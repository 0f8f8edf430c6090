package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/keystore"
	"github.com/pkg/errors"
)

// GCS is a Keystore for Google Cloud Storage
type GCS struct {
	Client     *storage.Client
	BucketName string
	KeyPrefix  string
}

func (k GCS) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	object := k.Client.Bucket(k.BucketName).Object(k.KeyPrefix + id.String())
	reader, err := object.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return []byte{}, keystore.ErrNotFound
	} else if err != nil {
		return []byte{}, errors.Wrap(err, "could not get object reader")
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return []byte{}, errors.Wrap(err, "could not read contents")
	}

	return contents, nil
}

// Set uploads contents. The object only exists once the writer is closed, so
// the close error is the one that matters.
func (k GCS) Set(ctx context.Context, id uuid.UUID, contents []byte) error {
	writer := k.Client.Bucket(k.BucketName).Object(k.KeyPrefix + id.String()).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(contents); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "could not write contents")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "could not finish upload")
	}
	return nil
}

func (k GCS) Delete(ctx context.Context, id uuid.UUID) error {
	err := k.Client.Bucket(k.BucketName).Object(k.KeyPrefix + id.String()).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Wrap(err, "could not delete object")
	}
	return nil
}
