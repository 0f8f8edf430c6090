package backup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/keystore"
	"github.com/hightouchio/portmanager/log"
	"github.com/hightouchio/portmanager/profile"
	"github.com/hightouchio/portmanager/stats"
	"github.com/hightouchio/portmanager/store"
	"github.com/pkg/errors"
)

const maxRetryElapsed = 30 * time.Second

// Snapshot is the full profile map as of Created.
type Snapshot struct {
	ID       uuid.UUID                  `json:"id"`
	Created  profile.Timestamp          `json:"created"`
	Profiles map[string]profile.Profile `json:"profiles"`
}

// Service copies the profile store to and from a Keystore.
type Service struct {
	Keystore keystore.Keystore
	Profiles *store.ProfileStore
	Stats    stats.Stats
	Now      func() time.Time
}

// Push uploads the current profiles under a new id.
func (s Service) Push(ctx context.Context) (Snapshot, error) {
	snapshot := Snapshot{
		ID:       uuid.New(),
		Created:  profile.NewTimestamp(s.now()),
		Profiles: s.Profiles.Load(),
	}

	contents, err := json.Marshal(snapshot)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "could not encode snapshot")
	}

	if err := retry(ctx, func() error {
		return s.Keystore.Set(ctx, snapshot.ID, contents)
	}); err != nil {
		return Snapshot{}, errors.Wrap(err, "could not upload snapshot")
	}

	s.Stats.Incr("backups.pushed", nil, 1)
	s.Stats.Gauge("backups.profiles", float64(len(snapshot.Profiles)), nil, 1)
	s.Stats.WithEventTags(stats.Tags{"backup_id": snapshot.ID}).SimpleEvent("backup pushed")
	return snapshot, nil
}

// Pull downloads a snapshot and writes it to the profile store. With merge,
// snapshot profiles replace local ones of the same name and the rest are kept;
// otherwise the local store is replaced. It returns how many profiles were
// written from the snapshot.
func (s Service) Pull(ctx context.Context, id uuid.UUID, merge bool) (int, error) {
	var contents []byte
	if err := retry(ctx, func() error {
		var err error
		contents, err = s.Keystore.Get(ctx, id)
		if errors.Is(err, keystore.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}); err != nil {
		return 0, errors.Wrapf(err, "could not fetch snapshot %s", id)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(contents, &snapshot); err != nil {
		return 0, errors.Wrap(err, "could not decode snapshot")
	}

	profiles := snapshot.Profiles
	if profiles == nil {
		profiles = map[string]profile.Profile{}
	}
	if merge {
		profiles = s.Profiles.Load()
		for name, record := range snapshot.Profiles {
			profiles[name] = record
		}
	}

	if err := s.Profiles.Save(profiles); err != nil {
		return 0, err
	}

	s.Stats.Incr("backups.pulled", stats.Tags{"merge": merge}, 1)
	s.Stats.WithEventTags(stats.Tags{"backup_id": id}).SimpleEvent("backup pulled")
	return len(snapshot.Profiles), nil
}

func (s Service) Delete(ctx context.Context, id uuid.UUID) error {
	return retry(ctx, func() error {
		return s.Keystore.Delete(ctx, id)
	})
}

func (s Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// retry runs op with exponential backoff until it succeeds, returns a
// permanent error, or ctx ends.
func retry(ctx context.Context, op backoff.Operation) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxRetryElapsed

	logger := log.GetLogger(ctx)
	return backoff.RetryNotify(op, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		logger.WithError(err).WithField("retry_in", next).Warn("keystore call failed")
	})
}
