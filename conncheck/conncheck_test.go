package conncheck

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/gliderlabs/ssh"
	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSSHServer(t *testing.T) int {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &ssh.Server{
		Handler: func(s ssh.Session) {},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			return false
		},
	}
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(func() { _ = server.Close() })

	_, portStr, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestCheck_Reachable(t *testing.T) {
	port := startSSHServer(t)

	result, err := Check(context.Background(), "127.0.0.1", port, "bob")
	require.NoError(t, err)
	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), result.Address)
	assert.NotEmpty(t, result.HostKeyType)
	assert.True(t, strings.HasPrefix(result.Fingerprint, "SHA256:"))
}

func TestCheck_Unreachable(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	_, err = Check(context.Background(), "127.0.0.1", port, "bob")
	assert.Error(t, err)
}

func TestCheck_NotSSH(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		_ = conn.Close()
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	_, err = Check(context.Background(), "127.0.0.1", port, "bob")
	assert.Error(t, err)
}
