package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/platform/ssh"
)

func withRemote(t *testing.T, r *fakeRemote) *ssh.Config {
	t.Helper()
	got := &ssh.Config{}
	newRemote = func(cfg *ssh.Config) (remote, error) {
		*got = *cfg
		return r, nil
	}
	return got
}

func TestExec(t *testing.T) {
	e := setup(t)
	e.seedServer(t, "box1", "203.0.113.5")
	r := &fakeRemote{}
	cfg := withRemote(t, r)

	require.NoError(t, Exec(ctx, Globals{}, "box1", []string{"uptime", "-p"}))

	assert.Equal(t, []string{"uptime -p"}, r.commands)
	assert.Equal(t, "203.0.113.5", cfg.Host)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, []byte("private"), cfg.PrivateKey)
	assert.Equal(t, "ran uptime -p\n", e.out.String())
}

func TestExec_WaitsForSSH(t *testing.T) {
	e := setup(t)
	e.seedServer(t, "box1", "203.0.113.5")
	var waited string
	waitForSSH = func(_ context.Context, ip string, port int, timeout time.Duration) error {
		waited = fmt.Sprintf("%s:%d", ip, port)
		assert.Equal(t, 2*time.Minute, timeout)
		return errors.New("timeout waiting for 203.0.113.5:22")
	}
	newRemote = func(*ssh.Config) (remote, error) {
		t.Fatal("no connection expected")
		return nil, nil
	}

	err := Exec(ctx, Globals{}, "box1", []string{"uptime"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ssh on box1 is not reachable")
	assert.Equal(t, "203.0.113.5:22", waited)
}

func TestExec_RemoteStatusBecomesExitCode(t *testing.T) {
	e := setup(t)
	e.seedServer(t, "box1", "203.0.113.5")
	withRemote(t, &fakeRemote{status: 3})

	err := Exec(ctx, Globals{}, "box1", []string{"false"})

	var remoteErr *RemoteExitError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 3, ExitCode(err))
}

func TestExec_UnknownServer(t *testing.T) {
	setup(t)
	newRemote = func(*ssh.Config) (remote, error) {
		t.Fatal("no connection expected")
		return nil, nil
	}

	err := Exec(ctx, Globals{}, "ghost", []string{"true"})

	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestSSH(t *testing.T) {
	e := setup(t)
	e.seedServer(t, "box1", "203.0.113.5")
	r := &fakeRemote{}
	withRemote(t, r)

	require.NoError(t, SSH(ctx, Globals{}, "box1"))
	assert.Equal(t, []string{"interactive "}, r.commands)
}

func TestMC_ServiceActions(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{MCStatus, "systemctl status --no-pager minecraft-server"},
		{MCStart, "systemctl start minecraft-server"},
		{MCStop, "systemctl stop minecraft-server"},
		{MCRestart, "systemctl restart minecraft-server"},
		{MCConsole, "interactive docker attach mc"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			e := setup(t)
			e.seedServer(t, "box1", "203.0.113.5")
			r := &fakeRemote{}
			withRemote(t, r)

			require.NoError(t, MC(ctx, Globals{}, "box1", tt.action))
			assert.Equal(t, []string{tt.want}, r.commands)
		})
	}
}

func TestMC_Save(t *testing.T) {
	e := setup(t)
	e.seedServer(t, "box1", "203.0.113.5")
	now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	r := &fakeRemote{download: []byte("world-archive")}
	withRemote(t, r)

	require.NoError(t, MC(ctx, Globals{}, "box1", MCSave))

	assert.Equal(t, []string{
		"systemctl stop minecraft-server",
		"download /tmp/minecraft_world.tar.gz",
		"systemctl start minecraft-server",
	}, r.commands)

	path := filepath.Join(e.paths.Worlds, "box1-20261018T090000Z.tar.gz")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "world-archive", string(data))
	assert.Contains(t, e.out.String(), path)
}

func TestMC_SaveAbortsWhenStopFails(t *testing.T) {
	e := setup(t)
	e.seedServer(t, "box1", "203.0.113.5")
	r := &fakeRemote{execErr: map[string]error{"systemctl stop minecraft-server": errors.New("boom")}}
	withRemote(t, r)

	err := MC(ctx, Globals{}, "box1", MCSave)

	require.Error(t, err)
	assert.Equal(t, []string{"systemctl stop minecraft-server"}, r.commands)
}

func TestMC_UnknownAction(t *testing.T) {
	e := setup(t)
	e.seedServer(t, "box1", "203.0.113.5")
	withRemote(t, &fakeRemote{})

	assert.Error(t, MC(ctx, Globals{}, "box1", "dance"))
}
