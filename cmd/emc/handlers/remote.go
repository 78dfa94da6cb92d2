package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/payload"
	"github.com/imamik/emc/internal/platform/ssh"
	"github.com/imamik/emc/internal/util/netutil"
)

const sshPort = 22

// remote is the subset of the SSH client the handlers use.
type remote interface {
	Execute(ctx context.Context, command string) (string, error)
	Run(ctx context.Context, command string, stdin io.Reader, stdout, stderr io.Writer) (int, error)
	Download(ctx context.Context, remotePath string, w io.Writer) (int64, error)
	Interactive(ctx context.Context, command string, stdin *os.File, stdout, stderr io.Writer) (int, error)
}

// newRemote is replaced in tests.
var newRemote = func(cfg *ssh.Config) (remote, error) {
	return ssh.NewClient(cfg)
}

// Replaced in tests.
var (
	now        = time.Now
	waitForSSH = netutil.WaitForPort
)

// connect makes sure the server has an address and opens an SSH client
// with the key stored for it.
func (s *session) connect(ctx context.Context, name string) (remote, error) {
	if err := s.requireToken(); err != nil {
		return nil, err
	}
	addr, rec, err := s.manager.EnsureAddress(ctx, name)
	if err != nil {
		return nil, err
	}
	if !s.globals.DryRun {
		if err := waitForSSH(ctx, addr, sshPort, s.cfg.SSH.ReadyTimeout); err != nil {
			return nil, fmt.Errorf("ssh on %s is not reachable: %w", name, err)
		}
	}
	s.log.Debugw("connecting", "server", name, "address", addr)
	return newRemote(&ssh.Config{
		Host:       addr,
		Port:       sshPort,
		User:       s.cfg.SSH.User,
		PrivateKey: rec.KeyPair.Private,
	})
}

// SSH opens an interactive shell on the server.
func SSH(ctx context.Context, g Globals, name string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	r, err := s.connect(ctx, name)
	if err != nil {
		return err
	}
	return remoteStatus(r.Interactive(ctx, "", os.Stdin, stdout, stderr))
}

// Exec runs a command on the server with the local streams attached.
func Exec(ctx context.Context, g Globals, name string, args []string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	r, err := s.connect(ctx, name)
	if err != nil {
		return err
	}
	return remoteStatus(r.Run(ctx, strings.Join(args, " "), os.Stdin, stdout, stderr))
}

// Game service actions.
const (
	MCStatus  = "status"
	MCStart   = "start"
	MCStop    = "stop"
	MCRestart = "restart"
	MCConsole = "console"
	MCSave    = "save"
)

// MC controls the game service.
func MC(ctx context.Context, g Globals, name, action string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	r, err := s.connect(ctx, name)
	if err != nil {
		return err
	}

	switch action {
	case MCStatus:
		return remoteStatus(r.Run(ctx, "systemctl status --no-pager "+payload.ServiceName, nil, stdout, stderr))
	case MCStart, MCStop, MCRestart:
		return remoteStatus(r.Run(ctx, "systemctl "+action+" "+payload.ServiceName, nil, stdout, stderr))
	case MCConsole:
		fmt.Fprintln(stderr, "attached to the game console, detach with Ctrl-P Ctrl-Q")
		return remoteStatus(r.Interactive(ctx, "docker attach "+payload.ContainerName, os.Stdin, stdout, stderr))
	case MCSave:
		path, err := s.saveWorld(ctx, r, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "world saved to %s\n", path)
		return nil
	default:
		return errs.New(errs.Internal, "unknown game action %q", action)
	}
}

// saveWorld stops the service so the unit archives the world, downloads
// the archive and starts the service again. The service is restarted even
// when the download fails.
func (s *session) saveWorld(ctx context.Context, r remote, name string) (path string, err error) {
	if _, err := r.Execute(ctx, "systemctl stop "+payload.ServiceName); err != nil {
		return "", fmt.Errorf("failed to stop %s: %w", payload.ServiceName, err)
	}
	defer func() {
		if _, startErr := r.Execute(ctx, "systemctl start "+payload.ServiceName); startErr != nil {
			s.log.Warnw("failed to restart game service", "server", name, "error", startErr)
			if err == nil {
				err = fmt.Errorf("world saved but %s did not start: %w", payload.ServiceName, startErr)
			}
		}
	}()

	if err := os.MkdirAll(s.paths.Worlds, 0o750); err != nil {
		return "", fmt.Errorf("failed to create worlds directory: %w", err)
	}
	path = filepath.Join(s.paths.Worlds, fmt.Sprintf("%s-%s.tar.gz", name, now().UTC().Format("20060102T150405Z")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := r.Download(ctx, payload.WorldArchive, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	s.log.Infow("world downloaded", "server", name, "path", path, "bytes", n)
	return path, nil
}
