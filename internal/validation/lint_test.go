package validation

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"evalgo.org/hostconf/models"
)

func authorizedKey(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " alice@laptop"
}

func TestLint_Clean(t *testing.T) {
	doc := &models.Document{Hosts: models.HostList{
		{
			Name:    "web01",
			RunCmds: []string{"echo 'hello world'"},
			Users: models.UserList{
				{Name: "alice", PrimaryGroup: "alice", SSHKeys: []string{authorizedKey(t)}},
			},
			Interfaces: models.InterfaceList{
				{Name: "eth0", MAC: "aa:bb:cc:dd:ee:ff", Addresses: []string{"10.0.0.5/24"}},
			},
		},
	}}

	assert.Empty(t, Lint(doc, nil))
}

func TestLint_Findings(t *testing.T) {
	doc := &models.Document{Hosts: models.HostList{
		{
			Name:    "web01",
			RunCmds: []string{"echo ok", "echo 'unterminated"},
			Users: models.UserList{
				{Name: "alice", PrimaryGroup: "alice", SSHKeys: []string{"not a key"}},
			},
			Interfaces: models.InterfaceList{
				{Name: "eth0", MAC: "AA:BB:CC:DD:EE:FF", Addresses: []string{"10.0.0.5/24"}},
			},
		},
		{
			Name: "web02",
			Interfaces: models.InterfaceList{
				{Name: "eth0", MAC: "aa-bb-cc-dd-ee-ff"},
			},
		},
	}}

	warnings := Lint(doc, nil)
	fields := make([]string, len(warnings))
	for i, w := range warnings {
		fields[i] = w.Field
	}

	assert.ElementsMatch(t, []string{
		"hosts.web01.run_cmds[1]",
		"hosts.web01.users.alice.ssh_keys[0]",
		"hosts.web02.interfaces.eth0.mac",
		"hosts.web02.interfaces.eth0.addresses",
	}, fields)

	for _, w := range warnings {
		if w.Field == "hosts.web02.interfaces.eth0.mac" {
			assert.Contains(t, w.Message, "web01.eth0")
		}
	}
}

func TestLint_DuplicateMACFollowsKey(t *testing.T) {
	doc := &models.Document{Hosts: models.HostList{
		{
			Name: "web01",
			Interfaces: models.InterfaceList{
				{Name: "eth0", MAC: "AA:BB:CC:DD:EE:FF", Addresses: []string{"10.0.0.5/24"}},
			},
		},
		{
			Name: "web02",
			Interfaces: models.InterfaceList{
				{Name: "eth0", MAC: "aa:bb:cc:dd:ee:ff", Addresses: []string{"10.0.0.6/24"}},
				{Name: "eth1", MAC: "AA:BB:CC:DD:EE:FF", Addresses: []string{"10.0.0.7/24"}},
			},
		},
	}}

	tests := []struct {
		name       string
		key        func(string) string
		wantFields []string
	}{
		{
			name: "normalized",
			key:  nil,
			wantFields: []string{
				"hosts.web02.interfaces.eth0.mac",
				"hosts.web02.interfaces.eth1.mac",
			},
		},
		{
			name:       "exact",
			key:        func(mac string) string { return mac },
			wantFields: []string{"hosts.web02.interfaces.eth1.mac"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := Lint(doc, tt.key)
			fields := make([]string, len(warnings))
			for i, w := range warnings {
				fields[i] = w.Field
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
