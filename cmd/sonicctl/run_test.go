package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/sonicctl/internal/config"
	"github.com/danmuck/sonicctl/internal/intfname"
	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/testutil/restconftest"
	"github.com/danmuck/sonicctl/internal/testutil/testlog"
)

type fleet map[string]*restconftest.Device

func (f fleet) Connect(name string) (resources.Target, error) {
	dev, ok := f[name]
	if !ok {
		return resources.Target{}, fmt.Errorf("%w: %q", config.ErrUnknownDevice, name)
	}
	client, err := restconf.NewClient(restconf.Config{Address: dev.URL, Timeout: 5 * time.Second})
	if err != nil {
		return resources.Target{}, err
	}
	return resources.Target{Device: name, Transport: client, Naming: intfname.Native}, nil
}

func (f fleet) Devices() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

const vlanDoc = "config:\n  - vlan_id: 10\n    description: users\n"

func TestRunResourceAllDevices(t *testing.T) {
	testlog.Start(t)
	devs := fleet{"leaf1": restconftest.New(t), "leaf2": restconftest.New(t)}

	outcomes, err := runResource(context.Background(), resources.Default(), devs, runOptions{all: true, resource: "vlans"}, []byte(vlanDoc), 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "leaf1", outcomes[0].Device)
	assert.Equal(t, "leaf2", outcomes[1].Device)
	for name, dev := range devs {
		assert.Len(t, dev.Edits(), 1, name)
	}
}

func TestRunResourcePlanDoesNotEdit(t *testing.T) {
	testlog.Start(t)
	devs := fleet{"leaf1": restconftest.New(t)}

	outcomes, err := runResource(context.Background(), resources.Default(), devs, runOptions{devices: []string{"leaf1", "leaf1"}, resource: "vlans", checkMode: true}, []byte(vlanDoc), 1)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Summary.Changed)
	assert.Empty(t, devs["leaf1"].Edits())

	var buf bytes.Buffer
	require.NoError(t, writeOutcomes(&buf, "table", outcomes))
	assert.Contains(t, buf.String(), "Vlan10")

	buf.Reset()
	require.NoError(t, writeOutcomes(&buf, "json", outcomes))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "vlans", decoded[0]["resource"])

	assert.Error(t, writeOutcomes(&buf, "xml", outcomes))
}

func TestRunResourceTargetsValidation(t *testing.T) {
	testlog.Start(t)
	devs := fleet{}

	_, err := runResource(context.Background(), resources.Default(), devs, runOptions{resource: "vlans"}, nil, 1)
	assert.ErrorIs(t, err, errNoDevices)

	_, err = runResource(context.Background(), resources.Default(), devs, runOptions{all: true, resource: "vlans"}, nil, 1)
	assert.ErrorIs(t, err, errNoDevices)

	_, err = runResource(context.Background(), resources.Default(), devs, runOptions{all: true, devices: []string{"leaf1"}, resource: "vlans"}, nil, 1)
	assert.Error(t, err)

	_, err = runResource(context.Background(), resources.Default(), devs, runOptions{devices: []string{"spine9"}, resource: "vlans"}, nil, 1)
	assert.ErrorIs(t, err, config.ErrUnknownDevice)

	_, err = runResource(context.Background(), resources.Default(), devs, runOptions{devices: []string{"leaf1"}, resource: "bgp"}, nil, 1)
	assert.ErrorIs(t, err, resources.ErrUnknownResource)
}
