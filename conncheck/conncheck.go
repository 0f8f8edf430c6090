package conncheck

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

const (
	checkTimeout     = 10 * time.Second
	checkDialTimeout = 5 * time.Second
)

// Result describes the server that answered.
type Result struct {
	Address     string `json:"address"`
	HostKeyType string `json:"host_key_type"`
	Fingerprint string `json:"fingerprint"`
}

// Check dials host:port and runs an SSH handshake without credentials. The
// server counts as reachable once it has presented a host key, so a rejected
// authentication is not an error.
func Check(ctx context.Context, host string, port int, user string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	address := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{Timeout: checkDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return Result{}, errors.Wrap(err, "dial error")
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	var hostKey ssh.PublicKey
	config := &ssh.ClientConfig{
		User: user,
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			hostKey = key
			return nil
		},
		Timeout: checkDialTimeout,
	}

	c := make(chan error, 1)
	go func() {
		clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
		if err == nil {
			go ssh.DiscardRequests(reqs)
			go func() {
				for ch := range chans {
					_ = ch.Reject(ssh.Prohibited, "")
				}
			}()
			_ = clientConn.Close()
		}
		c <- err
	}()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case err := <-c:
		if hostKey == nil {
			if err == nil {
				err = errors.New("server did not present a host key")
			}
			return Result{}, errors.Wrap(err, "ssh handshake failed")
		}
	}

	return Result{
		Address:     address,
		HostKeyType: hostKey.Type(),
		Fingerprint: ssh.FingerprintSHA256(hostKey),
	}, nil
}
