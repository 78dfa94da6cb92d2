package handlers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/imamik/emc/internal/config"
	"github.com/imamik/emc/internal/metrics"
	"github.com/imamik/emc/internal/platform/hcloud"
	"github.com/imamik/emc/internal/pricing"
	"github.com/imamik/emc/internal/provision"
	"github.com/imamik/emc/internal/registry"
	"github.com/imamik/emc/internal/util/keygen"
)

var ctx = context.Background()

// env is an isolated handler environment. Tests using it must not run in
// parallel because the factory variables are package globals.
type env struct {
	paths  config.Paths
	cfg    *config.Config
	out    *bytes.Buffer
	errOut *bytes.Buffer
	client *hcloud.MockClient
}

type mockFactory struct {
	client *hcloud.MockClient
}

func (f mockFactory) ForRegion(string) hcloud.Client { return f.client }

func setup(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		paths: config.Paths{
			Config:   filepath.Join(dir, "config.yaml"),
			Registry: filepath.Join(dir, "data", "emc.json"),
			Worlds:   filepath.Join(dir, "data", "worlds"),
			Log:      filepath.Join(dir, "state", "emc.log"),
		},
		cfg:    config.Default(),
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		client: &hcloud.MockClient{},
	}
	e.cfg.HCloudToken = "test-token"
	e.cfg.Address.Interval = time.Millisecond

	origPaths, origLoad, origLogger := defaultPaths, loadConfig, newLogger
	origFactory, origPrices, origInteractive := newHCloudFactory, fetchPrices, isInteractive
	origConfirm, origRemote, origStdout, origStderr := askConfirm, newRemote, stdout, stderr
	origObjects, origCheck, origNow, origWait := newObjectStore, checkDNS, now, waitForSSH
	t.Cleanup(func() {
		defaultPaths, loadConfig, newLogger = origPaths, origLoad, origLogger
		newHCloudFactory, fetchPrices, isInteractive = origFactory, origPrices, origInteractive
		askConfirm, newRemote, stdout, stderr = origConfirm, origRemote, origStdout, origStderr
		newObjectStore, checkDNS, now, waitForSSH = origObjects, origCheck, origNow, origWait
	})

	defaultPaths = func() config.Paths { return e.paths }
	loadConfig = func(string) (*config.Config, error) {
		cfg := *e.cfg
		return &cfg, nil
	}
	newLogger = func(config.Paths, bool) (*zap.SugaredLogger, func()) {
		return zaptest.NewLogger(t).Sugar(), func() {}
	}
	newHCloudFactory = func(*config.Config, *zap.SugaredLogger, *metrics.Recorder) provision.ClientFactory {
		return mockFactory{client: e.client}
	}
	fetchPrices = func(context.Context, string) (*pricing.Prices, bool) {
		return pricing.DefaultPrices(), false
	}
	isInteractive = func() bool { return false }
	waitForSSH = func(context.Context, string, int, time.Duration) error { return nil }
	askConfirm = func(context.Context, string) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}
	stdout = e.out
	stderr = e.errOut
	return e
}

func (e *env) load(t *testing.T) *registry.Document {
	t.Helper()
	doc, err := registry.NewFileStore(e.paths.Registry).Load()
	require.NoError(t, err)
	return doc
}

func (e *env) seed(t *testing.T, mutate func(doc *registry.Document)) {
	t.Helper()
	store := registry.NewFileStore(e.paths.Registry)
	doc, err := store.Load()
	require.NoError(t, err)
	mutate(doc)
	require.NoError(t, store.Save(doc))
}

// seedServer adds a server with a known address.
func (e *env) seedServer(t *testing.T, name, addr string) {
	t.Helper()
	e.seed(t, func(doc *registry.Document) {
		rec := &registry.ServerRecord{
			Region:         "fsn1",
			InstanceHandle: "42",
			KeyPair:        keygen.KeyPair{Private: []byte("private"), Public: []byte("public")},
			KeyName:        "emcdev-key",
		}
		if addr != "" {
			rec.LastKnownAddress = &addr
		}
		require.NoError(t, doc.AddServer(name, rec))
	})
}

// fakeRemote records commands instead of running them.
type fakeRemote struct {
	commands []string
	status   int
	download []byte
	execErr  map[string]error
}

func (f *fakeRemote) Execute(_ context.Context, command string) (string, error) {
	f.commands = append(f.commands, command)
	return "", f.execErr[command]
}

func (f *fakeRemote) Run(_ context.Context, command string, _ io.Reader, stdout, _ io.Writer) (int, error) {
	f.commands = append(f.commands, command)
	_, _ = io.WriteString(stdout, "ran "+command+"\n")
	return f.status, nil
}

func (f *fakeRemote) Download(_ context.Context, remotePath string, w io.Writer) (int64, error) {
	f.commands = append(f.commands, "download "+remotePath)
	n, err := w.Write(f.download)
	return int64(n), err
}

func (f *fakeRemote) Interactive(_ context.Context, command string, _ *os.File, _, _ io.Writer) (int, error) {
	f.commands = append(f.commands, "interactive "+command)
	return f.status, nil
}
