package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPort is the SSH port assumed when a profile does not name one.
const DefaultPort = 22

// DefaultRemoteHost is the forward target used when none is given.
const DefaultRemoteHost = "localhost"

var (
	ErrMalformedDestination = errors.New("connection must be in format: user@host")
	ErrInvalidPort          = errors.New("port must be between 1 and 65535")
	ErrUnknownDirection     = errors.New("forward type must be local or remote")
)

// Profile is a named, persisted SSH connection definition. The name is the key
// it is stored under and is not part of the serialized record.
type Profile struct {
	Host     string     `json:"host"`
	User     string     `json:"user"`
	Port     int        `json:"port"`
	Key      string     `json:"key,omitempty"`
	Forwards []Forward  `json:"forwards"`
	Created  Timestamp  `json:"created"`
	LastUsed *Timestamp `json:"last_used"`
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	decoded := plain{Port: DefaultPort}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Forwards == nil {
		decoded.Forwards = []Forward{}
	}
	*p = Profile(decoded)
	return nil
}

func (p Profile) MarshalJSON() ([]byte, error) {
	type plain Profile
	out := plain(p)
	if out.Forwards == nil {
		out.Forwards = []Forward{}
	}
	return json.Marshal(out)
}

// Destination is the trailing user@host token handed to the client.
func (p Profile) Destination() string {
	return fmt.Sprintf("%s@%s", p.User, p.Host)
}

// Address is Destination with the port appended, for display.
func (p Profile) Address() string {
	return fmt.Sprintf("%s:%d", p.Destination(), p.Port)
}

// Clone returns a deep copy so that a snapshot never aliases the stored record.
func (p Profile) Clone() Profile {
	c := p
	c.Forwards = make([]Forward, len(p.Forwards))
	copy(c.Forwards, p.Forwards)
	if p.LastUsed != nil {
		lastUsed := *p.LastUsed
		c.LastUsed = &lastUsed
	}
	return c
}

// ActiveConnection is an advisory record of a detached launch. It is not a
// handle to the process and says nothing about whether it is still running.
type ActiveConnection struct {
	Name    string    `json:"-"`
	Started Timestamp `json:"started"`
	Profile Profile   `json:"profile"`
}

// ParseDestination splits "user@host" on the first '@'.
func ParseDestination(s string) (user string, host string, err error) {
	user, host, ok := strings.Cut(s, "@")
	if !ok || user == "" || host == "" {
		return "", "", errors.Wrapf(ErrMalformedDestination, "got %q", s)
	}
	return user, host, nil
}
