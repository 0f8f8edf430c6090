package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hightouchio/portmanager/profile"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestStores(t *testing.T) (*ProfileStore, *ActiveStore) {
	paths := PathsIn(filepath.Join(t.TempDir(), ".portmanager"))
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	profiles := NewProfileStore(paths.Profiles, logger)
	profiles.now = func() time.Time { return fixedTime }
	return profiles, NewActiveStore(paths.Active, logger)
}

func TestProfileStore_LoadAbsent(t *testing.T) {
	profiles, _ := newTestStores(t)

	records, result := profiles.LoadState()
	assert.Equal(t, Absent, result)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestProfileStore_RoundTrip(t *testing.T) {
	profiles, _ := newTestStores(t)
	used := profile.NewTimestamp(fixedTime.Add(time.Hour))

	original := map[string]profile.Profile{
		"web": {
			Host: "example.com", User: "bob", Port: 22,
			Forwards: []profile.Forward{},
			Created:  profile.NewTimestamp(fixedTime),
		},
		"db": {
			Host: "db.internal", User: "alice", Port: 2222, Key: "~/.ssh/id_ed25519",
			Forwards: []profile.Forward{
				profile.NewForward(profile.Local, 5432, 5432, "localhost"),
				profile.NewForward(profile.Remote, 3000, 3000, "10.0.0.1"),
			},
			Created:  profile.NewTimestamp(fixedTime),
			LastUsed: &used,
		},
	}

	require.NoError(t, profiles.Save(original))
	loaded, result := profiles.LoadState()
	assert.Equal(t, Loaded, result)
	assert.Equal(t, original, loaded)
}

func TestProfileStore_CorruptIsEmpty(t *testing.T) {
	inputs := map[string][]byte{
		"binary":    {0x00, 0xff, 0x13, 0x37},
		"truncated": []byte(`{"web": {"host": "exa`),
		"array":     []byte(`[1, 2, 3]`),
		"null":      []byte(`null`),
		"bad field": []byte(`{"web": {"host": "h", "user": "u", "port": "twenty-two"}}`),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			profiles, _ := newTestStores(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(profiles.Path()), 0755))
			require.NoError(t, os.WriteFile(profiles.Path(), data, 0644))

			records, result := profiles.LoadState()
			assert.Equal(t, Corrupt, result)
			assert.Empty(t, records)

			// loading again gives the same answer
			assert.Empty(t, profiles.Load())
		})
	}
}

func TestProfileStore_Upsert(t *testing.T) {
	profiles, _ := newTestStores(t)

	record, err := profiles.Upsert("s1", "example.com", "bob", 0, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 22, record.Port)
	assert.Equal(t, []profile.Forward{}, record.Forwards)
	assert.Nil(t, record.LastUsed)
	assert.True(t, record.Created.Equal(fixedTime))

	assert.Equal(t, []string{"ssh", "bob@example.com"}, profile.BuildCommand(mustGet(t, profiles, "s1")))

	// replacing resets everything, including forwards and creation time
	_, err = profiles.AppendForward("s1", profile.NewForward(profile.Local, 8080, 80, ""))
	require.NoError(t, err)
	later := fixedTime.Add(24 * time.Hour)
	profiles.now = func() time.Time { return later }

	record, err = profiles.Upsert("s1", "example.com", "bob", 2222, "", nil)
	require.NoError(t, err)
	assert.Empty(t, record.Forwards)
	assert.True(t, mustGet(t, profiles, "s1").Created.Equal(later))
	assert.Equal(t, []string{"ssh", "-p", "2222", "bob@example.com"}, profile.BuildCommand(mustGet(t, profiles, "s1")))
}

func TestProfileStore_Remove(t *testing.T) {
	profiles, _ := newTestStores(t)
	_, err := profiles.Upsert("keep", "a", "b", 22, "", nil)
	require.NoError(t, err)

	before, err := os.ReadFile(profiles.Path())
	require.NoError(t, err)

	removed, err := profiles.Remove("missing")
	require.NoError(t, err)
	assert.False(t, removed)

	after, err := os.ReadFile(profiles.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, profiles.Load(), 1)

	removed, err = profiles.Remove("keep")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, profiles.Load())
}

func TestProfileStore_AppendForward(t *testing.T) {
	profiles, _ := newTestStores(t)

	ok, err := profiles.AppendForward("nope", profile.NewForward(profile.Local, 1, 2, ""))
	require.NoError(t, err)
	assert.False(t, ok)
	_, result := profiles.LoadState()
	assert.Equal(t, Absent, result, "nothing written for a missing profile")

	_, err = profiles.Upsert("s1", "example.com", "bob", 22, "", nil)
	require.NoError(t, err)

	ok, err = profiles.AppendForward("s1", profile.NewForward(profile.Local, 0, 80, ""))
	assert.ErrorIs(t, err, profile.ErrInvalidPort)
	assert.False(t, ok)

	expected := []profile.Forward{
		profile.NewForward(profile.Local, 8080, 80, ""),
		profile.NewForward(profile.Remote, 3000, 3000, ""),
		profile.NewForward(profile.Local, 8080, 80, ""),
	}
	for _, fwd := range expected {
		ok, err := profiles.AppendForward("s1", fwd)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, expected, mustGet(t, profiles, "s1").Forwards)
	assert.Equal(t,
		[]string{"ssh", "-L", "8080:localhost:80", "-R", "3000:localhost:3000", "-L", "8080:localhost:80", "bob@example.com"},
		profile.BuildCommand(mustGet(t, profiles, "s1")),
	)
}

func TestProfileStore_TouchAndNames(t *testing.T) {
	profiles, _ := newTestStores(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := profiles.Upsert(name, "h", "u", 22, "", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, profiles.Names())

	record, ok, err := profiles.Touch("mid", fixedTime.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, record.LastUsed)
	assert.True(t, mustGet(t, profiles, "mid").LastUsed.Equal(fixedTime.Add(time.Minute)))

	_, ok, err = profiles.Touch("missing", fixedTime)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileStore_LegacyFile(t *testing.T) {
	profiles, _ := newTestStores(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(profiles.Path()), 0755))
	require.NoError(t, os.WriteFile(profiles.Path(), []byte(`{
  "prod": {
    "host": "prod.example.com",
    "user": "deploy",
    "port": 22,
    "created": "2024-01-15T09:30:00.000001",
    "last_used": null,
    "key": "~/.ssh/prod",
    "forwards": [
      {"type": "remote", "local_port": 3000, "remote_port": 3000, "remote_host": "localhost"}
    ]
  }
}`), 0644))

	records, result := profiles.LoadState()
	require.Equal(t, Loaded, result)
	prod := records["prod"]
	assert.Equal(t, "deploy@prod.example.com:22", prod.Address())
	assert.Equal(t, profile.Remote, prod.Forwards[0].Direction)
}

func TestActiveStore(t *testing.T) {
	profiles, active := newTestStores(t)
	_, err := profiles.Upsert("web", "example.com", "bob", 22, "", nil)
	require.NoError(t, err)

	snapshot := mustGet(t, profiles, "web")
	require.NoError(t, active.Record("web", snapshot, fixedTime))

	// later edits to the stored profile do not reach the snapshot
	_, err = profiles.AppendForward("web", profile.NewForward(profile.Local, 8080, 80, ""))
	require.NoError(t, err)

	list := active.List()
	require.Len(t, list, 1)
	assert.Equal(t, "web", list[0].Name)
	assert.Empty(t, list[0].Profile.Forwards)
	assert.True(t, list[0].Started.Equal(fixedTime))

	// relaunching overwrites the previous record
	require.NoError(t, active.Record("web", mustGet(t, profiles, "web"), fixedTime.Add(time.Hour)))
	list = active.List()
	require.Len(t, list, 1)
	assert.Len(t, list[0].Profile.Forwards, 1)
	assert.True(t, list[0].Started.Equal(fixedTime.Add(time.Hour)))
}

func TestActiveStore_Corrupt(t *testing.T) {
	_, active := newTestStores(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(active.Path()), 0755))
	require.NoError(t, os.WriteFile(active.Path(), []byte("not json"), 0644))

	records, result := active.LoadState()
	assert.Equal(t, Corrupt, result)
	assert.Empty(t, records)
	assert.Empty(t, active.List())
}

func TestPaths_Expand(t *testing.T) {
	paths, err := Paths{Profiles: "/abs/profiles.json", Active: "rel/active.json"}.Expand()
	require.NoError(t, err)
	assert.Equal(t, "/abs/profiles.json", paths.Profiles)
	assert.Equal(t, "rel/active.json", paths.Active)
}

func mustGet(t *testing.T, s *ProfileStore, name string) profile.Profile {
	t.Helper()
	record, ok := s.Get(name)
	require.Truef(t, ok, "profile %s", name)
	return record
}

func TestStores_LogField(t *testing.T) {
	paths := PathsIn(filepath.Join(t.TempDir(), ".portmanager"))
	logger, hook := logrustest.NewNullLogger()
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.Profiles), 0755))
	require.NoError(t, os.WriteFile(paths.Profiles, []byte("{"), 0644))
	require.NoError(t, os.WriteFile(paths.Active, []byte("{"), 0644))

	NewProfileStore(paths.Profiles, logger).Load()
	NewActiveStore(paths.Active, logger).List()

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "profiles", entries[0].Data["store"])
	assert.Equal(t, "active", entries[1].Data["store"])
}
