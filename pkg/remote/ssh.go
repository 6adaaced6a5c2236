// Package remote provides the transport to the managed VPN host: one-shot
// command execution and whole-file transfer over SSH. Every call dials a
// fresh connection and releases it before returning; there is no pooling
// and no retry.
package remote

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/yourusername/xvp-go/pkg/utils"
)

// DefaultTimeout matches the extended handshake timeout the panel has
// always used for slow residential links.
const DefaultTimeout = 45 * time.Second

// Config holds the SSH credentials for the managed host.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

func (c Config) addr() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c Config) clientConfig() *ssh.ClientConfig {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            []ssh.AuthMethod{ssh.Password(c.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
}

// Runner executes one shell script on the remote host and returns its
// combined stdout+stderr text.
type Runner interface {
	Run(ctx context.Context, script string) (string, error)
}

// SSHRunner is the production Runner. Each Run call opens a connection,
// runs exactly one command in one session and closes everything down,
// on error paths included.
type SSHRunner struct {
	cfg Config
}

func NewSSHRunner(cfg Config) *SSHRunner {
	return &SSHRunner{cfg: cfg}
}

func dialSSH(cfg Config) (*ssh.Client, error) {
	client, err := ssh.Dial("tcp", cfg.addr(), cfg.clientConfig())
	if err != nil {
		return nil, utils.NewConnectionError(cfg.addr(), err)
	}
	return client, nil
}

// Run executes script remotely. Stdout and stderr are captured into one
// buffer in arrival order; a non-zero exit yields a command error that
// still carries the captured output, since diagnosing remote shell
// failures needs the raw text.
func (r *SSHRunner) Run(ctx context.Context, script string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", utils.NewConnectionError(r.cfg.addr(), err)
	}

	client, err := dialSSH(r.cfg)
	if err != nil {
		return "", err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", utils.NewConnectionError(r.cfg.addr(), err)
	}
	defer session.Close()

	var out []byte
	var runErr error
	done := make(chan struct{})
	go func() {
		out, runErr = session.CombinedOutput(script)
		close(done)
	}()

	select {
	case <-ctx.Done():
		// Tearing down the connection unblocks the session goroutine.
		client.Close()
		<-done
		return "", utils.NewConnectionError(r.cfg.addr(), ctx.Err())
	case <-done:
	}

	output := string(out)
	if runErr != nil {
		var exitErr *ssh.ExitError
		if errors.As(runErr, &exitErr) {
			return output, utils.NewCommandError(output, runErr)
		}
		return output, utils.NewConnectionError(r.cfg.addr(), runErr)
	}
	return output, nil
}
