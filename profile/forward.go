package profile

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

type Direction string

const (
	Local  Direction = "local"
	Remote Direction = "remote"
)

// Forward is a single TCP port-forwarding rule attached to a profile.
type Forward struct {
	Direction  Direction `json:"type"`
	LocalPort  int       `json:"local_port"`
	RemotePort int       `json:"remote_port"`
	RemoteHost string    `json:"remote_host"`
}

// NewForward builds a forward, filling in the default remote host.
func NewForward(direction Direction, localPort, remotePort int, remoteHost string) Forward {
	if remoteHost == "" {
		remoteHost = DefaultRemoteHost
	}
	return Forward{
		Direction:  direction,
		LocalPort:  localPort,
		RemotePort: remotePort,
		RemoteHost: remoteHost,
	}
}

func (f *Forward) UnmarshalJSON(data []byte) error {
	type plain Forward
	decoded := plain{Direction: Local, RemoteHost: DefaultRemoteHost}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*f = Forward(decoded)
	return nil
}

// Validate checks the direction and both ports. Duplicate or colliding
// forwards are allowed.
func (f Forward) Validate() error {
	if f.Direction != Local && f.Direction != Remote {
		return errors.Wrapf(ErrUnknownDirection, "got %q", f.Direction)
	}
	if !validPort(f.LocalPort) {
		return errors.Wrapf(ErrInvalidPort, "local port %d", f.LocalPort)
	}
	if !validPort(f.RemotePort) {
		return errors.Wrapf(ErrInvalidPort, "remote port %d", f.RemotePort)
	}
	return nil
}

// Spec is the value passed to the client's -L or -R flag.
func (f Forward) Spec() string {
	if f.Direction != Local {
		// the client lists the listening (remote) side first for -R
		return fmt.Sprintf("%d:%s:%d", f.RemotePort, f.RemoteHost, f.LocalPort)
	}
	return fmt.Sprintf("%d:%s:%d", f.LocalPort, f.RemoteHost, f.RemotePort)
}

func (f Forward) String() string {
	if f.Direction != Local {
		return fmt.Sprintf("R: %s:%d -> localhost:%d", f.RemoteHost, f.RemotePort, f.LocalPort)
	}
	return fmt.Sprintf("L: localhost:%d -> %s:%d", f.LocalPort, f.RemoteHost, f.RemotePort)
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}
