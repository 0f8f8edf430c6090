package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LoadResult tells an absent store apart from a corrupt one. Callers that only
// want the data can ignore it: both yield an empty map.
type LoadResult int

const (
	Loaded LoadResult = iota
	Absent
	Corrupt
)

func (r LoadResult) String() string {
	switch r {
	case Loaded:
		return "loaded"
	case Absent:
		return "absent"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// readJSONFile decodes a name-keyed JSON object. Any failure to read or parse
// the file is swallowed into an empty map.
func readJSONFile[T any](path string, logger logrus.FieldLogger) (map[string]T, LoadResult) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]T{}, Absent
	} else if err != nil {
		logger.WithError(err).WithField("path", path).Warn("could not read store, treating as empty")
		return map[string]T{}, Corrupt
	}

	var records map[string]T
	if err := json.Unmarshal(data, &records); err != nil || records == nil {
		if err == nil {
			err = errors.New("store is not a JSON object")
		}
		logger.WithError(err).WithField("path", path).Warn("could not parse store, treating as empty")
		return map[string]T{}, Corrupt
	}

	return records, Loaded
}

// writeJSONFile overwrites the file in place. A crash mid-write can leave a
// truncated file behind, which the read path then treats as corrupt.
func writeJSONFile[T any](path string, records map[string]T) error {
	if records == nil {
		records = map[string]T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode store")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "could not create store directory")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return nil
}
