package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danmuck/sonicctl/internal/module"
	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
)

func TestRequests(t *testing.T) {
	var buf bytes.Buffer
	Requests(&buf, []restconf.Request{
		restconf.Patch("data/a/config/helper-address", "openconfig-relay-agent:helper-address", []string{"1.1.1.1"}),
		restconf.Delete("data/a/config/openconfig-relay-agent-ext:max-hop-count"),
	})
	out := buf.String()
	assert.Contains(t, out, "PATCH")
	assert.Contains(t, out, "DELETE")
	assert.Contains(t, out, `{"openconfig-relay-agent:helper-address":["1.1.1.1"]}`)
	assert.Less(t, strings.Index(out, "PATCH"), strings.Index(out, "DELETE"))
}

func TestOutcomes(t *testing.T) {
	var buf bytes.Buffer
	Outcomes(&buf, []resources.Outcome{{
		Device:    "leaf1",
		Resource:  "dhcp_relay",
		State:     state.Deleted,
		CheckMode: true,
		Summary: module.Summary{
			Changed:  true,
			Requests: []restconf.Request{restconf.Delete("x")},
			Warnings: []string{"dhcp relay ipv4 server address 9.9.9.9 not configured on Ethernet0"},
		},
	}})
	out := buf.String()
	for _, want := range []string{"leaf1", "dhcp_relay", "deleted", "check", "true", "9.9.9.9"} {
		assert.Contains(t, out, want)
	}
}

func TestMetadata(t *testing.T) {
	var buf bytes.Buffer
	Metadata(&buf, resources.Default().ListMetadata())
	out := buf.String()
	assert.Contains(t, out, "dhcp_relay")
	assert.Contains(t, out, "merged,deleted,replaced,overridden")
}
