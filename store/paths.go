package store

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	DefaultConfigDir    = "~/.portmanager"
	DefaultProfilesFile = "profiles.json"
	DefaultActiveFile   = "active_connections.json"
)

// Paths holds the locations of both stores. It is passed to each store
// explicitly so that tests can point them anywhere.
type Paths struct {
	Profiles string
	Active   string
}

// PathsIn returns the default file names inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Profiles: filepath.Join(dir, DefaultProfilesFile),
		Active:   filepath.Join(dir, DefaultActiveFile),
	}
}

// Expand resolves a leading ~ in both paths.
func (p Paths) Expand() (Paths, error) {
	profiles, err := homedir.Expand(p.Profiles)
	if err != nil {
		return Paths{}, errors.Wrap(err, "could not expand profiles path")
	}
	active, err := homedir.Expand(p.Active)
	if err != nil {
		return Paths{}, errors.Wrap(err, "could not expand active connections path")
	}
	return Paths{Profiles: profiles, Active: active}, nil
}
