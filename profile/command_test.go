package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noKeys(string) bool { return false }

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		expected []string
	}{
		{
			name:     "defaults",
			profile:  Profile{Host: "example.com", User: "bob", Port: 22},
			expected: []string{"ssh", "bob@example.com"},
		},
		{
			name:     "custom port",
			profile:  Profile{Host: "example.com", User: "bob", Port: 2222},
			expected: []string{"ssh", "-p", "2222", "bob@example.com"},
		},
		{
			name: "local forward",
			profile: Profile{Host: "example.com", User: "bob", Port: 22, Forwards: []Forward{
				NewForward(Local, 8080, 80, "localhost"),
			}},
			expected: []string{"ssh", "-L", "8080:localhost:80", "bob@example.com"},
		},
		{
			name: "remote forward",
			profile: Profile{Host: "example.com", User: "bob", Port: 22, Forwards: []Forward{
				NewForward(Remote, 3000, 3000, "localhost"),
			}},
			expected: []string{"ssh", "-R", "3000:localhost:3000", "bob@example.com"},
		},
		{
			name: "remote forward lists remote port first",
			profile: Profile{Host: "example.com", User: "bob", Port: 22, Forwards: []Forward{
				NewForward(Remote, 3000, 9000, "10.0.0.5"),
			}},
			expected: []string{"ssh", "-R", "9000:10.0.0.5:3000", "bob@example.com"},
		},
		{
			name: "missing key is dropped",
			profile: Profile{Host: "example.com", User: "bob", Port: 22,
				Key: "/definitely/not/here/id_rsa"},
			expected: []string{"ssh", "bob@example.com"},
		},
		{
			name: "duplicate forwards are kept",
			profile: Profile{Host: "h", User: "u", Port: 22, Forwards: []Forward{
				NewForward(Local, 5432, 5432, "db"),
				NewForward(Local, 5432, 5432, "db"),
			}},
			expected: []string{"ssh", "-L", "5432:db:5432", "-L", "5432:db:5432", "u@h"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, buildCommand(test.profile, noKeys))
		})
	}
}

func TestBuildCommand_KeyExists(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	assert.NoError(t, os.WriteFile(keyPath, []byte("key"), 0600))

	p := Profile{Host: "example.com", User: "bob", Port: 2222, Key: keyPath}
	assert.Equal(t,
		[]string{"ssh", "-p", "2222", "-i", keyPath, "bob@example.com"},
		BuildCommand(p),
	)

	// existence is checked when the command is built, not when it was saved
	assert.NoError(t, os.Remove(keyPath))
	assert.Equal(t, []string{"ssh", "-p", "2222", "bob@example.com"}, BuildCommand(p))
}

func TestBuildCommand_Deterministic(t *testing.T) {
	p := Profile{Host: "example.com", User: "bob", Port: 2200, Key: "~/nope", Forwards: []Forward{
		NewForward(Local, 1, 2, ""),
		NewForward(Remote, 3, 4, "x"),
	}}
	first := BuildCommand(p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildCommand(p))
	}
	assert.NotContains(t, first, "-i")
}

func TestBuildCommand_ForwardOrder(t *testing.T) {
	p := Profile{Host: "h", User: "u", Port: 22}
	var expected []string
	for i := 1; i <= 20; i++ {
		direction := Local
		if i%3 == 0 {
			direction = Remote
		}
		fwd := NewForward(direction, 1000+i, 2000+i, "")
		p.Forwards = append(p.Forwards, fwd)

		flag := "-L"
		if direction == Remote {
			flag = "-R"
		}
		expected = append(expected, flag, fwd.Spec())
	}

	cmd := buildCommand(p, noKeys)
	assert.Equal(t, "ssh", cmd[0])
	assert.Equal(t, "u@h", cmd[len(cmd)-1])
	assert.Equal(t, expected, cmd[1:len(cmd)-1])
}

func TestBuildCommand_UnknownDirectionIsRemote(t *testing.T) {
	var p Profile
	data := []byte(`{"host": "h", "user": "u", "forwards": [{"type": "Remote", "local_port": 3000, "remote_port": 4000}]}`)
	assert.NoError(t, json.Unmarshal(data, &p))

	assert.Equal(t, []string{"ssh", "-R", "4000:localhost:3000", "u@h"}, buildCommand(p, noKeys))
	assert.Equal(t, "R: localhost:4000 -> localhost:3000", p.Forwards[0].String())
}
