package hcloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/emc/internal/config"
	"github.com/imamik/emc/internal/metrics"
	"github.com/imamik/emc/internal/util/netutil"
)

// testServer creates an httptest server that can be used to mock Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

// newTestServer creates a new test server for mocking the Hetzner Cloud API.
func newTestServer() *testServer {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	return &testServer{
		server: server,
		mux:    mux,
	}
}

// close shuts down the test server.
func (ts *testServer) close() {
	ts.server.Close()
}

// client returns an hcloud.Client configured to use the test server.
func (ts *testServer) client() *hcloud.Client {
	return hcloud.NewClient(
		hcloud.WithToken("test-token"),
		hcloud.WithEndpoint(ts.server.URL),
	)
}

// realClient returns a RealClient configured to use the test server.
func (ts *testServer) realClient(opts ...ClientOption) *RealClient {
	opts = append([]ClientOption{
		WithHCloudClient(ts.client()),
		WithTimeouts(config.TestTimeouts()),
	}, opts...)
	return NewRealClient("test-token", opts...)
}

// handleFunc registers a handler for a specific path.
func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func strPtr(s string) *string { return &s }

// handleCatalog registers the lookups CreateServer performs before POST /servers.
func (ts *testServer) handleCatalog(t *testing.T) {
	t.Helper()
	ts.handleFunc("/server_types", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cx32", r.URL.Query().Get("name"))
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{{ID: 7, Name: "cx32", Architecture: "x86"}},
		})
	})
	ts.handleFunc("/images", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "docker-ce", r.URL.Query().Get("name"))
		assert.Equal(t, "x86", r.URL.Query().Get("architecture"))
		jsonResponse(w, http.StatusOK, schema.ImageListResponse{
			Images: []schema.Image{{ID: 10, Name: strPtr("docker-ce"), Type: "app", Architecture: "x86", Status: "available"}},
		})
	})
	ts.handleFunc("/locations", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.LocationListResponse{
			Locations: []schema.Location{{ID: 1, Name: "fsn1"}},
		})
	})
	ts.handleFunc("/ssh_keys", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, schema.SSHKeyListResponse{
			SSHKeys: []schema.SSHKey{{ID: 55, Name: r.URL.Query().Get("name")}},
		})
	})
}

func TestRealClient_CreateServer_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()
	ts.handleCatalog(t)

	var captured struct {
		Name      string `json:"name"`
		UserData  string `json:"user_data"`
		Firewalls []struct {
			Firewall int64 `json:"firewall"`
		} `json:"firewalls"`
		SSHKeys []int64 `json:"ssh_keys"`
	}
	ts.handleFunc("/servers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		jsonResponse(w, http.StatusCreated, schema.ServerCreateResponse{
			Server: schema.Server{ID: 4711, Name: captured.Name},
			Action: schema.Action{ID: 1, Status: "success"},
		})
	})
	ts.handleFunc("/actions", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ActionListResponse{
			Actions: []schema.Action{{ID: 1, Status: "success", Progress: 100}},
		})
	})

	rec := metrics.New()
	client := ts.realClient(WithMetrics(rec))

	id, err := client.CreateServer(context.Background(), ServerCreateOpts{
		Name:       "emc-box1",
		Image:      "docker-ce",
		ServerType: "cx32",
		Location:   "fsn1",
		SSHKeys:    []string{"emc0.1.0-key"},
		Firewalls:  []int64{99},
		UserData:   "#cloud-config\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "4711", id)
	assert.Equal(t, "emc-box1", captured.Name)
	assert.Equal(t, "#cloud-config\n", captured.UserData)
	require.Len(t, captured.Firewalls, 1)
	assert.Equal(t, int64(99), captured.Firewalls[0].Firewall)
	assert.Equal(t, []int64{55}, captured.SSHKeys)
}

func TestRealClient_CreateServer_UnknownServerType(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("/server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{ServerTypes: []schema.ServerType{}})
	})
	ts.handleFunc("/servers", func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("server must not be created")
	})

	_, err := ts.realClient().CreateServer(context.Background(), ServerCreateOpts{
		Name: "x", Image: "docker-ce", ServerType: "cx999",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server type not found: cx999")
}

func TestRealClient_CreateServer_RejectedIsNotRetried(t *testing.T) {
	ts := newTestServer()
	defer ts.close()
	ts.handleCatalog(t)

	var posts atomic.Int32
	ts.handleFunc("/servers", func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
		jsonResponse(w, http.StatusUnprocessableEntity, schema.ErrorResponse{
			Error: schema.Error{Code: "invalid_input", Message: "invalid user data"},
		})
	})

	_, err := ts.realClient().CreateServer(context.Background(), ServerCreateOpts{
		Name: "x", Image: "docker-ce", ServerType: "cx32", Location: "fsn1",
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), posts.Load())
}

func TestRealClient_GetServer_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("/servers/123", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{
			Server: schema.Server{
				ID:   123,
				Name: "emc-box1",
				PublicNet: schema.ServerPublicNet{
					IPv4: schema.ServerPublicNetIPv4{IP: "203.0.113.42"},
					IPv6: schema.ServerPublicNetIPv6{IP: "2001:db8:1::/64"},
				},
			},
		})
	})
	ts.handleFunc("/servers/404", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusNotFound, schema.ErrorResponse{
			Error: schema.Error{Code: "not_found", Message: "server not found"},
		})
	})

	client := ts.realClient()
	ctx := context.Background()

	t.Run("server found", func(t *testing.T) {
		server, err := client.GetServer(ctx, "123")
		require.NoError(t, err)
		require.NotNil(t, server)
		assert.Equal(t, []string{"203.0.113.42", "2001:db8:1::1"}, ServerAddresses(server))
	})

	t.Run("server not found", func(t *testing.T) {
		server, err := client.GetServer(ctx, "404")
		require.NoError(t, err)
		assert.Nil(t, server)
	})
}

func TestRealClient_DeleteServer_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var deleted atomic.Bool
	ts.handleFunc("/servers/789", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			jsonResponse(w, http.StatusOK, schema.ServerGetResponse{
				Server: schema.Server{ID: 789, Name: "emc-box1"},
			})
		case http.MethodDelete:
			deleted.Store(true)
			jsonResponse(w, http.StatusOK, schema.ServerDeleteResponse{
				Action: schema.Action{ID: 1, Status: "success"},
			})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	require.NoError(t, ts.realClient().DeleteServer(context.Background(), "789"))
	assert.True(t, deleted.Load())
}

func TestRealClient_ServerByID_SkipsNameLookup(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var nameLookups atomic.Int32
	ts.handleFunc("/servers", func(w http.ResponseWriter, _ *http.Request) {
		nameLookups.Add(1)
		jsonResponse(w, http.StatusOK, schema.ServerListResponse{Servers: []schema.Server{}})
	})
	ts.handleFunc("/servers/404", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusNotFound, schema.ErrorResponse{
			Error: schema.Error{Code: "not_found", Message: "server not found"},
		})
	})

	client := ts.realClient()
	ctx := context.Background()

	server, err := client.GetServer(ctx, "404")
	require.NoError(t, err)
	assert.Nil(t, server)

	require.NoError(t, client.DeleteServer(ctx, "404"))
	assert.Zero(t, nameLookups.Load())
}

func TestRealClient_CreateSSHKey_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("/ssh_keys", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		jsonResponse(w, http.StatusCreated, schema.SSHKeyCreateResponse{
			SSHKey: schema.SSHKey{
				ID:          1001,
				Name:        "emc0.1.0-test",
				Fingerprint: "aa:bb:cc:dd:ee:ff",
				PublicKey:   "ssh-rsa AAAA...",
			},
		})
	})

	keyID, err := ts.realClient().CreateSSHKey(context.Background(), "emc0.1.0-test", "ssh-rsa AAAA...", nil)
	require.NoError(t, err)
	assert.Equal(t, "1001", keyID)
}

func TestRealClient_DeleteSSHKey_Missing(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("/ssh_keys", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.SSHKeyListResponse{SSHKeys: []schema.SSHKey{}})
	})

	assert.NoError(t, ts.realClient().DeleteSSHKey(context.Background(), "gone"))
}

func TestRealClient_EnsureFirewall_ReusesExisting(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var creates atomic.Int32
	ts.handleFunc("/firewalls", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			creates.Add(1)
			http.Error(w, "unexpected create", http.StatusBadRequest)
			return
		}
		jsonResponse(w, http.StatusOK, schema.FirewallListResponse{
			Firewalls: []schema.Firewall{{ID: 31, Name: r.URL.Query().Get("name")}},
		})
	})

	rules := FirewallRules([]netutil.Port{{Protocol: netutil.TCP, Number: 22}})
	fw, err := ts.realClient().EnsureFirewall(context.Background(), "emc-tcp22", rules, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(31), fw.ID)
	assert.Zero(t, creates.Load())
}

func TestRealClient_EnsureFirewall_CreatesMissing(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var body struct {
		Name  string `json:"name"`
		Rules []struct {
			Protocol string `json:"protocol"`
			Port     string `json:"port"`
		} `json:"rules"`
	}
	ts.handleFunc("/firewalls", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			jsonResponse(w, http.StatusCreated, schema.FirewallCreateResponse{
				Firewall: schema.Firewall{ID: 32, Name: body.Name},
			})
			return
		}
		jsonResponse(w, http.StatusOK, schema.FirewallListResponse{Firewalls: []schema.Firewall{}})
	})

	rules := FirewallRules([]netutil.Port{
		{Protocol: netutil.UDP, Number: 25565},
		{Protocol: netutil.TCP, Number: 22},
	})
	fw, err := ts.realClient().EnsureFirewall(context.Background(), "emc-tcp22-udp25565", rules, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(32), fw.ID)
	assert.Equal(t, "emc-tcp22-udp25565", body.Name)
	require.Len(t, body.Rules, 2)
	assert.Equal(t, "tcp", body.Rules[0].Protocol)
	assert.Equal(t, "22", body.Rules[0].Port)
	assert.Equal(t, "udp", body.Rules[1].Protocol)
}

func TestRealClient_GetImage_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("/images", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("architecture") != "arm" {
			jsonResponse(w, http.StatusOK, schema.ImageListResponse{Images: []schema.Image{}})
			return
		}
		jsonResponse(w, http.StatusOK, schema.ImageListResponse{
			Images: []schema.Image{{ID: 11, Name: strPtr("docker-ce"), Architecture: "arm", Status: "available"}},
		})
	})

	client := ts.realClient()

	img, err := client.GetImage(context.Background(), "docker-ce", hcloud.ArchitectureARM)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, int64(11), img.ID)

	img, err = client.GetImage(context.Background(), "docker-ce", hcloud.ArchitectureX86)
	require.NoError(t, err)
	assert.Nil(t, img)
}
