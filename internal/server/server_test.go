package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/sonicctl/internal/auth"
	"github.com/danmuck/sonicctl/internal/config"
	"github.com/danmuck/sonicctl/internal/intfname"
	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
	"github.com/danmuck/sonicctl/internal/testutil/restconftest"
	"github.com/danmuck/sonicctl/internal/testutil/testlog"
)

type fakeConnector struct {
	dev *restconftest.Device
}

func (f fakeConnector) Connect(name string) (resources.Target, error) {
	if name != "leaf1" {
		return resources.Target{}, fmt.Errorf("%w: %q", config.ErrUnknownDevice, name)
	}
	client, err := restconf.NewClient(restconf.Config{Address: f.dev.URL, Timeout: 5 * time.Second})
	if err != nil {
		return resources.Target{}, err
	}
	return resources.Target{Device: name, Transport: client, Naming: intfname.Native}, nil
}

func (f fakeConnector) Devices() []string { return []string{"leaf1"} }

func newTestServer(t *testing.T, registry *resources.Registry) (*Server, *restconftest.Device) {
	t.Helper()
	dev := restconftest.New(t)
	srv := New(registry, fakeConnector{dev: dev}, Options{Validator: auth.StaticToken{Token: "t0k"}})
	srv.RegisterRoutes()
	return srv, dev
}

func do(srv *Server, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authed {
		req.Header.Set("Authorization", "Bearer t0k")
	}
	rr := httptest.NewRecorder()
	srv.HTTPRouter().ServeHTTP(rr, req)
	return rr
}

func TestHealthIsPublic(t *testing.T) {
	testlog.Start(t)
	srv, _ := newTestServer(t, resources.Default())

	rr := do(srv, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(srv, http.MethodGet, "/v1/resources", "", false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListResourcesAndDevices(t *testing.T) {
	testlog.Start(t)
	srv, _ := newTestServer(t, resources.Default())

	rr := do(srv, http.MethodGet, "/v1/resources", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Resources []resources.Metadata `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Resources, 2)
	assert.Equal(t, "dhcp_relay", body.Resources[0].ID)

	rr = do(srv, http.MethodGet, "/v1/devices", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"devices":["leaf1"]}`, rr.Body.String())
}

func TestRunDocument(t *testing.T) {
	testlog.Start(t)
	srv, dev := newTestServer(t, resources.Default())

	doc := "config:\n  - name: Ethernet0\n    ipv4:\n      server_addresses:\n        - address: 1.1.1.1\n"
	rr := do(srv, http.MethodPost, "/v1/devices/leaf1/resources/dhcp_relay", doc, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out struct {
		Resource string `json:"resource"`
		State    string `json:"state"`
		Result   struct {
			Changed bool `json:"changed"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "dhcp_relay", out.Resource)
	assert.Equal(t, "merged", out.State)
	assert.True(t, out.Result.Changed)
	assert.Len(t, dev.Edits(), 1)
}

func TestRunErrorMapping(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		name   string
		path   string
		body   string
		fail   bool
		status int
	}{
		{name: "unknown resource", path: "/v1/devices/leaf1/resources/bgp", body: "{}", status: http.StatusNotFound},
		{name: "unknown device", path: "/v1/devices/spine9/resources/vlans", body: "{}", status: http.StatusNotFound},
		{name: "invalid document", path: "/v1/devices/leaf1/resources/vlans", body: `{"config":[{"vlan_id":0}]}`, status: http.StatusBadRequest},
		{name: "bad check mode", path: "/v1/devices/leaf1/resources/vlans?check_mode=maybe", body: "{}", status: http.StatusBadRequest},
		{name: "not implemented", path: "/v1/devices/leaf1/resources/dhcp_relay", body: `{"state":"overridden"}`, status: http.StatusNotImplemented},
		{name: "transport failure", path: "/v1/devices/leaf1/resources/vlans", body: `{"config":[{"vlan_id":10}]}`, fail: true, status: http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, dev := newTestServer(t, resources.Default())
			if tc.fail {
				dev.FailEdit(0, http.StatusBadRequest, "vlan rejected")
			}
			rr := do(srv, http.MethodPost, tc.path, tc.body, true)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
			if tc.fail {
				assert.Contains(t, rr.Body.String(), `"msg":"vlan rejected"`)
				assert.Contains(t, rr.Body.String(), `"code":400`)
			}
		})
	}
}

type blockingResource struct {
	started chan struct{}
	release chan struct{}
}

func (b blockingResource) Metadata() resources.Metadata {
	return resources.Metadata{ID: "slow", Name: "slow", Description: "blocks", States: []state.State{state.Merged}}
}

func (b blockingResource) Execute(ctx context.Context, target resources.Target, doc []byte, checkMode bool) (resources.Outcome, error) {
	close(b.started)
	<-b.release
	return resources.Outcome{Resource: "slow", State: state.Merged}, nil
}

func TestConcurrentRunIsRejected(t *testing.T) {
	testlog.Start(t)
	slow := blockingResource{started: make(chan struct{}), release: make(chan struct{})}
	reg := resources.NewRegistry()
	require.NoError(t, reg.Register(slow))
	srv, _ := newTestServer(t, reg)

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- do(srv, http.MethodPost, "/v1/devices/leaf1/resources/slow", "{}", true)
	}()
	<-slow.started

	rr := do(srv, http.MethodPost, "/v1/devices/leaf1/resources/slow", "{}", true)
	assert.Equal(t, http.StatusConflict, rr.Code)

	close(slow.release)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestNormalizeOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:3000"}, normalizeOrigins(nil))
	assert.Equal(t, []string{"https://ops"}, normalizeOrigins([]string{"https://ops"}))
}
