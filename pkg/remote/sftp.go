package remote

import (
	"context"
	"io"
	"os"

	"github.com/pkg/sftp"

	"github.com/yourusername/xvp-go/pkg/utils"
)

// FileStore reads and overwrites whole remote files. Writes are
// last-writer-wins: there is no compare-and-swap on the remote side, so
// two concurrent writers silently lose one change. Callers that need
// read-modify-write consistency must serialize above this layer.
type FileStore interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
}

// SFTPStore is the production FileStore using the SFTP subsystem of a
// per-call SSH connection.
type SFTPStore struct {
	cfg Config
}

func NewSFTPStore(cfg Config) *SFTPStore {
	return &SFTPStore{cfg: cfg}
}

func (s *SFTPStore) open(ctx context.Context) (*sftp.Client, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, utils.NewConnectionError(s.cfg.addr(), err)
	}

	conn, err := dialSSH(s.cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, utils.NewConnectionError(s.cfg.addr(), err)
	}

	cleanup := func() {
		client.Close()
		conn.Close()
	}
	return client, cleanup, nil
}

func (s *SFTPStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	client, cleanup, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	f, err := client.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (s *SFTPStore) WriteFile(ctx context.Context, path string, data []byte) error {
	client, cleanup, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := client.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
