package profile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDestination(t *testing.T) {
	user, host, err := ParseDestination("bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "example.com", host)

	// only the first separator splits
	user, host, err = ParseDestination("bob@jump@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "jump@example.com", host)

	for _, input := range []string{"example.com", "@example.com", "bob@", ""} {
		_, _, err := ParseDestination(input)
		assert.Truef(t, errors.Is(err, ErrMalformedDestination), "input %q", input)
	}
}

func TestProfile_DecodeDefaults(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{
		"host": "example.com",
		"user": "bob",
		"created": "2024-03-01T10:15:30.123456",
		"last_used": null,
		"forwards": [{"local_port": 8080, "remote_port": 80}]
	}`), &p))

	assert.Equal(t, DefaultPort, p.Port)
	assert.Nil(t, p.LastUsed)
	assert.Equal(t, []Forward{{Direction: Local, LocalPort: 8080, RemotePort: 80, RemoteHost: "localhost"}}, p.Forwards)
	assert.Equal(t, 2024, p.Created.Year())
	assert.Equal(t, 123456000, p.Created.Nanosecond())
}

func TestProfile_EncodeShape(t *testing.T) {
	p := Profile{Host: "example.com", User: "bob", Port: 22, Created: NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []interface{}{}, raw["forwards"])
	assert.Contains(t, raw, "last_used")
	assert.Nil(t, raw["last_used"])
	assert.NotContains(t, raw, "key")
	assert.Equal(t, "2024-01-02T03:04:05Z", raw["created"])
}

func TestProfile_Clone(t *testing.T) {
	used := NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	original := Profile{Host: "h", User: "u", Port: 22, LastUsed: &used, Forwards: []Forward{NewForward(Local, 1, 2, "")}}

	clone := original.Clone()
	clone.Forwards[0].LocalPort = 99
	clone.LastUsed.Time = time.Time{}

	assert.Equal(t, 1, original.Forwards[0].LocalPort)
	assert.Equal(t, 2024, original.LastUsed.Year())
}

func TestForward_Validate(t *testing.T) {
	assert.NoError(t, NewForward(Local, 1, 65535, "").Validate())
	assert.True(t, errors.Is(NewForward(Local, 0, 80, "").Validate(), ErrInvalidPort))
	assert.True(t, errors.Is(NewForward(Remote, 80, 70000, "").Validate(), ErrInvalidPort))
	assert.True(t, errors.Is(NewForward("sideways", 80, 80, "").Validate(), ErrUnknownDirection))
}

func TestForward_String(t *testing.T) {
	assert.Equal(t, "L: localhost:8080 -> db:5432", NewForward(Local, 8080, 5432, "db").String())
	assert.Equal(t, "R: localhost:3000 -> localhost:4000", NewForward(Remote, 4000, 3000, "").String())
}

func TestTimestamp_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
}
