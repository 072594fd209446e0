package dhcprelay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/sonicctl/internal/dhcprelay"
	"github.com/danmuck/sonicctl/internal/intfname"
	"github.com/danmuck/sonicctl/internal/module"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
	"github.com/danmuck/sonicctl/internal/testutil/restconftest"
	"github.com/danmuck/sonicctl/internal/testutil/testlog"
)

const v4Tree = "data/openconfig-relay-agent:relay-agent/dhcp"

func newClient(t *testing.T, dev *restconftest.Device) *restconf.Client {
	t.Helper()
	client, err := restconf.NewClient(restconf.Config{Address: dev.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestRunMergedAgainstDevice(t *testing.T) {
	testlog.Start(t)

	dev := restconftest.New(t)
	client := newClient(t, dev)

	res, err := module.Run[dhcprelay.Config](context.Background(), dhcprelay.New(intfname.Standard), client, module.Params[dhcprelay.Config]{
		State: state.Merged,
		Config: []dhcprelay.Config{{
			Name: "eth1/1",
			IPv4: &dhcprelay.AddressFamily{
				ServerAddresses: []dhcprelay.ServerAddress{{Address: "10.0.0.1"}},
				PolicyAction:    "append",
			},
		}},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Before)

	edits := dev.Edits()
	require.Len(t, edits, 2)
	base := "data/openconfig-relay-agent:relay-agent/dhcp/interfaces/interface=Eth1%2F1"
	assert.Equal(t, base+"/config/helper-address", edits[0].Path)
	assert.Equal(t, []any{"10.0.0.1"}, edits[0].Data["openconfig-relay-agent:helper-address"])
	assert.Equal(t, base+"/config/openconfig-relay-agent-ext:policy-action", edits[1].Path)
	assert.Equal(t, "APPEND", edits[1].Data["openconfig-relay-agent-ext:policy-action"])

	require.Len(t, res.Commands, 1)
	assert.Equal(t, "Eth1/1", res.Commands[0].Name)
}

func TestRunDeletedCheckMode(t *testing.T) {
	testlog.Start(t)

	dev := restconftest.New(t)
	dev.SetTree(v4Tree, `{"openconfig-relay-agent:dhcp":{"interfaces":{"interface":[
		{"id":"Ethernet0","config":{"id":"Ethernet0","helper-address":["1.1.1.1"]}}]}}}`)
	client := newClient(t, dev)

	res, err := module.Run[dhcprelay.Config](context.Background(), dhcprelay.New(intfname.Native), client, module.Params[dhcprelay.Config]{
		State:     state.Deleted,
		CheckMode: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Len(t, res.Requests, 1)
	assert.Len(t, res.Before, 1)
	assert.Nil(t, res.After)
	assert.Empty(t, dev.Edits())
}

func TestRunTransportFailureSurfacesCode(t *testing.T) {
	testlog.Start(t)

	dev := restconftest.New(t)
	dev.FailEdit(0, 400, "Invalid helper address")
	client := newClient(t, dev)

	_, err := module.Run[dhcprelay.Config](context.Background(), dhcprelay.New(intfname.Native), client, module.Params[dhcprelay.Config]{
		State: state.Merged,
		Config: []dhcprelay.Config{{
			Name: "Ethernet0",
			IPv4: &dhcprelay.AddressFamily{ServerAddresses: []dhcprelay.ServerAddress{{Address: "bad"}}, MaxHopCount: 3},
		}},
	})
	var rerr *restconf.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 400, rerr.Code)
	assert.Equal(t, "Invalid helper address", rerr.Message)
	assert.Len(t, dev.Edits(), 1)
}
