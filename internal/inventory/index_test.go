package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMACPolicy(t *testing.T) {
	tests := []struct {
		input     string
		expected  MACPolicy
		expectErr bool
	}{
		{"", MACNormalized, false},
		{"normalized", MACNormalized, false},
		{"EXACT", MACExact, false},
		{" exact ", MACExact, false},
		{"fuzzy", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMACPolicy(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIndex_Normalized(t *testing.T) {
	doc, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)

	idx := NewIndex(doc, MACNormalized)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, MACNormalized, idx.Policy())

	tests := []struct {
		mac      string
		expected string
		found    bool
	}{
		{"AA:BB:CC:DD:EE:01", "web01", true},
		{"aa:bb:cc:dd:ee:01", "web01", true},
		{"aa-bb-cc-dd-ee-01", "web01", true},
		{"aa:bb-cc:dd-ee:01", "web01", true},
		{"aa:bb:cc:dd:ee:02", "db01", true},
		{"AA-BB-CC-DD-EE-03", "db01", true},
		{"aa:bb:cc:dd:ee:04", "", false},
		{"aa:bb:cc:dd:ee", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mac, func(t *testing.T) {
			host, ok := idx.Resolve(tt.mac)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, host.Name)
			}
		})
	}
}

func TestIndex_Exact(t *testing.T) {
	doc, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)

	idx := NewIndex(doc, MACExact)

	host, ok := idx.Resolve("AA:BB:CC:DD:EE:01")
	require.True(t, ok)
	assert.Equal(t, "web01", host.Name)

	_, ok = idx.Resolve("aa:bb:cc:dd:ee:01")
	assert.False(t, ok)

	host, ok = idx.Resolve("aa-bb-cc-dd-ee-02")
	require.True(t, ok)
	assert.Equal(t, "db01", host.Name)

	_, ok = idx.Resolve("aa:bb:cc:dd:ee:02")
	assert.False(t, ok)
}

func TestIndex_Entries(t *testing.T) {
	doc, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)

	entries := NewIndex(doc, "").Entries()
	assert.Equal(t, []Entry{
		{MAC: "AA:BB:CC:DD:EE:01", Hostname: "web01", Interface: "eth0"},
		{MAC: "aa-bb-cc-dd-ee-02", Hostname: "db01", Interface: "eth0"},
		{MAC: "aa:bb:cc:dd:ee:03", Hostname: "db01", Interface: "eth1"},
	}, entries)
}

func TestIndex_DuplicateFirstWins(t *testing.T) {
	doc, err := Parse([]byte(`
hosts:
  first:
    interfaces:
      eth0: {mac: "aa:bb:cc:dd:ee:ff"}
  second:
    interfaces:
      eth0: {mac: "AA-BB-CC-DD-EE-FF"}
`))
	require.NoError(t, err)

	t.Run("normalized", func(t *testing.T) {
		idx := NewIndex(doc, MACNormalized)
		host, ok := idx.Resolve("aa:bb:cc:dd:ee:ff")
		require.True(t, ok)
		assert.Equal(t, "first", host.Name)
		assert.Equal(t, 1, idx.Len())

		conflicts := idx.Conflicts()
		require.Len(t, conflicts, 1)
		assert.Equal(t, "second", conflicts[0].Hostname)
		assert.Equal(t, "first", conflicts[0].Winner.Hostname)
	})

	t.Run("exact keeps both", func(t *testing.T) {
		idx := NewIndex(doc, MACExact)
		assert.Equal(t, 2, idx.Len())
		assert.Empty(t, idx.Conflicts())

		host, ok := idx.Resolve("AA-BB-CC-DD-EE-FF")
		require.True(t, ok)
		assert.Equal(t, "second", host.Name)
	})
}

func TestIndex_Empty(t *testing.T) {
	doc, err := Parse([]byte("hosts: {}\n"))
	require.NoError(t, err)

	idx := NewIndex(doc, MACNormalized)
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Resolve("aa:bb:cc:dd:ee:ff")
	assert.False(t, ok)
}
