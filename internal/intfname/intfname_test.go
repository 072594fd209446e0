package intfname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNative(t *testing.T) {
	tests := map[string]string{
		"Ethernet0":       "Ethernet0",
		"ethernet0":       "Ethernet0",
		"eth 8":           "Ethernet8",
		"e12":             "Ethernet12",
		"po10":            "PortChannel10",
		"Port-Channel 20": "PortChannel20",
		"vlan100":         "Vlan100",
		"lo0":             "Loopback0",
		"mgmt0":           "Management0",
		"Unknown5":        "Unknown5",
		"  ":              "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Normalize(in, Native))
		})
	}
}

func TestNormalizeStandard(t *testing.T) {
	assert.Equal(t, "Eth1/1", Normalize("ethernet1/1", Standard))
	assert.Equal(t, "Eth1/2", Normalize("Eth1/2", Standard))
	assert.Equal(t, "PortChannel5", Normalize("po5", Standard))
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, mode := range []Mode{Native, Standard} {
		for _, in := range []string{"eth0", "Eth1/1", "po 3", "Vlan10", "lo1", "weird"} {
			once := Normalize(in, mode)
			assert.Equal(t, once, Normalize(once, mode), "mode=%s in=%q", mode, in)
		}
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Native, m)

	m, err = ParseMode("Standard")
	require.NoError(t, err)
	assert.Equal(t, Standard, m)

	_, err = ParseMode("alias")
	require.Error(t, err)
}
