package store

import (
	"sort"
	"time"

	"github.com/hightouchio/portmanager/profile"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ProfileStore persists profiles as a single JSON object keyed by name. Every
// mutation is a full read-modify-write of the file with no locking.
type ProfileStore struct {
	path   string
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewProfileStore(path string, logger logrus.FieldLogger) *ProfileStore {
	return &ProfileStore{
		path:   path,
		logger: logger.WithField("store", "profiles"),
		now:    time.Now,
	}
}

func (s *ProfileStore) Path() string {
	return s.path
}

// Load returns the stored profiles, or an empty map if the file is missing or
// unreadable.
func (s *ProfileStore) Load() map[string]profile.Profile {
	profiles, _ := s.LoadState()
	return profiles
}

// LoadState is Load plus whether the file was absent or corrupt.
func (s *ProfileStore) LoadState() (map[string]profile.Profile, LoadResult) {
	return readJSONFile[profile.Profile](s.path, s.logger)
}

func (s *ProfileStore) Save(profiles map[string]profile.Profile) error {
	return writeJSONFile(s.path, profiles)
}

// Upsert stores a fresh record under name, replacing any existing one. The
// creation time is reset on replace.
func (s *ProfileStore) Upsert(name, host, user string, port int, key string, forwards []profile.Forward) (profile.Profile, error) {
	if port == 0 {
		port = profile.DefaultPort
	}
	if forwards == nil {
		forwards = []profile.Forward{}
	}

	record := profile.Profile{
		Host:     host,
		User:     user,
		Port:     port,
		Key:      key,
		Forwards: forwards,
		Created:  profile.NewTimestamp(s.now()),
	}

	profiles := s.Load()
	profiles[name] = record
	if err := s.Save(profiles); err != nil {
		return profile.Profile{}, err
	}

	s.logger.WithField("profile", name).Debug("saved profile")
	return record, nil
}

// Remove deletes name and reports whether it was present. Nothing is written
// when it was not.
func (s *ProfileStore) Remove(name string) (bool, error) {
	profiles := s.Load()
	if _, ok := profiles[name]; !ok {
		return false, nil
	}

	delete(profiles, name)
	if err := s.Save(profiles); err != nil {
		return false, err
	}
	return true, nil
}

// AppendForward adds fwd to the end of the profile's forwards. It returns
// false without writing when the profile does not exist.
func (s *ProfileStore) AppendForward(name string, fwd profile.Forward) (bool, error) {
	if err := fwd.Validate(); err != nil {
		return false, err
	}

	profiles := s.Load()
	record, ok := profiles[name]
	if !ok {
		return false, nil
	}

	record.Forwards = append(record.Forwards, fwd)
	profiles[name] = record
	if err := s.Save(profiles); err != nil {
		return false, errors.Wrap(err, "could not save forward")
	}
	return true, nil
}

// Touch stamps last_used on the named profile and persists it.
func (s *ProfileStore) Touch(name string, at time.Time) (profile.Profile, bool, error) {
	profiles := s.Load()
	record, ok := profiles[name]
	if !ok {
		return profile.Profile{}, false, nil
	}

	lastUsed := profile.NewTimestamp(at)
	record.LastUsed = &lastUsed
	profiles[name] = record
	if err := s.Save(profiles); err != nil {
		return profile.Profile{}, false, err
	}
	return record, true, nil
}

func (s *ProfileStore) Get(name string) (profile.Profile, bool) {
	record, ok := s.Load()[name]
	return record, ok
}

// Names returns the stored profile names in sorted order.
func (s *ProfileStore) Names() []string {
	return sortedNames(s.Load())
}

func sortedNames[T any](records map[string]T) []string {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
