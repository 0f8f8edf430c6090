package store

import (
	"time"

	"github.com/hightouchio/portmanager/profile"
	"github.com/sirupsen/logrus"
)

// ActiveStore records detached launches. It is advisory state: entries are
// never checked against running processes and never removed on exit.
type ActiveStore struct {
	path   string
	logger logrus.FieldLogger
}

func NewActiveStore(path string, logger logrus.FieldLogger) *ActiveStore {
	return &ActiveStore{
		path:   path,
		logger: logger.WithField("store", "active"),
	}
}

func (s *ActiveStore) Path() string {
	return s.path
}

func (s *ActiveStore) Load() map[string]profile.ActiveConnection {
	active, _ := s.LoadState()
	return active
}

func (s *ActiveStore) LoadState() (map[string]profile.ActiveConnection, LoadResult) {
	active, result := readJSONFile[profile.ActiveConnection](s.path, s.logger)
	for name, conn := range active {
		conn.Name = name
		active[name] = conn
	}
	return active, result
}

func (s *ActiveStore) Save(active map[string]profile.ActiveConnection) error {
	return writeJSONFile(s.path, active)
}

// Record stores a copy of snapshot under name, replacing any previous record
// for the same name.
func (s *ActiveStore) Record(name string, snapshot profile.Profile, started time.Time) error {
	active := s.Load()
	active[name] = profile.ActiveConnection{
		Name:    name,
		Started: profile.NewTimestamp(started),
		Profile: snapshot.Clone(),
	}
	if err := s.Save(active); err != nil {
		return err
	}

	s.logger.WithField("profile", name).Debug("recorded active connection")
	return nil
}

// List returns the records sorted by profile name.
func (s *ActiveStore) List() []profile.ActiveConnection {
	active := s.Load()
	list := make([]profile.ActiveConnection, 0, len(active))
	for _, name := range sortedNames(active) {
		list = append(list, active[name])
	}
	return list
}
