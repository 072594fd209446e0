package argspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/sonicctl/internal/state"
)

type relayRecord struct {
	Name string `json:"name"`
	IPv4 *struct {
		ServerAddresses []struct {
			Address string `json:"address"`
		} `json:"server_addresses"`
		MaxHopCount int    `json:"max_hop_count"`
		CircuitID   string `json:"circuit_id"`
	} `json:"ipv4"`
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"dhcp_relay", "vlans"}, Names())
}

func TestParseYAMLDefaultsToMerged(t *testing.T) {
	doc, err := Parse("dhcp_relay", []byte(`
config:
  - name: Ethernet0
    ipv4:
      server_addresses:
        - address: 1.1.1.1
      max_hop_count: 5
      circuit_id: "%h:%p"
`))
	require.NoError(t, err)
	assert.Equal(t, state.Merged, doc.State)

	records, err := Decode[relayRecord](doc)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ethernet0", records[0].Name)
	assert.Equal(t, 5, records[0].IPv4.MaxHopCount)
	assert.Equal(t, "1.1.1.1", records[0].IPv4.ServerAddresses[0].Address)
}

func TestParseJSONDeletedWithoutConfig(t *testing.T) {
	doc, err := Parse("dhcp_relay", []byte(`{"state":"deleted"}`))
	require.NoError(t, err)
	assert.Equal(t, state.Deleted, doc.State)

	records, err := Decode[relayRecord](doc)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestParseSentinelAddress(t *testing.T) {
	cases := map[string]string{
		"empty mapping": "        - {}\n",
		"null address":  "        - address:\n",
	}
	for name, entry := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse("dhcp_relay", []byte("state: deleted\nconfig:\n  - name: Ethernet0\n    ipv4:\n      server_addresses:\n"+entry))
			require.NoError(t, err)
			records, err := Decode[relayRecord](doc)
			require.NoError(t, err)
			require.Len(t, records[0].IPv4.ServerAddresses, 1)
			assert.Empty(t, records[0].IPv4.ServerAddresses[0].Address)
		})
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"bad state":        `{"state":"purged"}`,
		"hop count":        `{"config":[{"name":"Ethernet0","ipv4":{"max_hop_count":17}}]}`,
		"policy":           `{"config":[{"name":"Ethernet0","ipv4":{"policy_action":"drop"}}]}`,
		"ipv6 circuit id":  `{"config":[{"name":"Ethernet0","ipv6":{"circuit_id":"%p"}}]}`,
		"missing name":     `{"config":[{"ipv4":{}}]}`,
		"unknown field":    `{"config":[],"extra":1}`,
		"not a document":   `- a`,
		"malformed syntax": "config: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("dhcp_relay", []byte(raw))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestParseVlans(t *testing.T) {
	_, err := Parse("vlans", []byte(`{"config":[{"vlan_id":4095}]}`))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	doc, err := Parse("vlans", []byte("state: overridden\nconfig:\n  - vlan_id: 10\n    description: users\n"))
	require.NoError(t, err)
	assert.Equal(t, state.Overridden, doc.State)
}

func TestParseUnknownSchema(t *testing.T) {
	_, err := Parse("bgp", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownSchema)
}

func TestParseEmptyDocument(t *testing.T) {
	doc, err := Parse("vlans", nil)
	require.NoError(t, err)
	assert.Equal(t, state.Merged, doc.State)
}
