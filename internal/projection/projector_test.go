package projection

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"evalgo.org/hostconf/models"
)

func decodeHost(t *testing.T, name, src string) *models.Host {
	t.Helper()
	var h models.Host
	require.NoError(t, yaml.Unmarshal([]byte(src), &h))
	h.Name = name
	return &h
}

const fullHost = `
install: ubuntu-24.04
install_to: /dev/sda
config: web
nameserver: 10.0.0.53
root_pw: "$6$salt$hash"
run_cmds: ["apt-get update", "reboot"]
groups: [ops]
is_router: true
users:
  alice:
    primary_group: alice
    groups: [wheel]
    gecos: Alice
    shell: /bin/bash
    ssh_keys: ["ssh-ed25519 AAAA alice"]
    sudo: true
    lock_passwd: false
    uid: 1000
  bob:
    primary_group: bob
interfaces:
  eth0:
    mac: "aa:bb:cc:dd:ee:ff"
    addresses: ["10.0.0.5/24"]
    routes:
      - {to: default, via: 10.0.0.1, metric: 100}
  eth1:
    mac: "aa:bb:cc:dd:ee:00"
`

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("vendor-data")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestProject_OSConfig(t *testing.T) {
	view, err := Project(KindOSConfig, decodeHost(t, "web01", fullHost), Options{})
	require.NoError(t, err)
	assert.Equal(t, OSConfigView{Install: "ubuntu-24.04", InstallTo: "/dev/sda", Config: "web"}, view)
	assert.Equal(t, KindOSConfig, view.Kind())
}

func TestProject_NetworkConfig(t *testing.T) {
	view, err := Project(KindNetworkConfig, decodeHost(t, "web01", fullHost), Options{})
	require.NoError(t, err)

	nc := view.(NetworkConfigView)
	require.Len(t, nc.Interfaces, 2)
	assert.Equal(t, "eth0", nc.Interfaces[0].Name)
	assert.Equal(t, []RouteView{{To: "default", Via: "10.0.0.1", Metric: "100"}}, nc.Interfaces[0].Routes)
	assert.Equal(t, "eth1", nc.Interfaces[1].Name)
	assert.NotNil(t, nc.Interfaces[1].Addresses)
	assert.Empty(t, nc.Interfaces[1].Addresses)
	assert.NotNil(t, nc.Interfaces[1].Routes)
}

func TestProject_UserData(t *testing.T) {
	host := decodeHost(t, "web01", fullHost)

	view, err := Project(KindUserData, host, Options{})
	require.NoError(t, err)

	ud := view.(UserDataView)
	assert.Equal(t, "web01", ud.Hostname)
	assert.Equal(t, []string{"ops"}, ud.Groups)
	assert.Equal(t, []string{"apt-get update", "reboot"}, ud.RunCmds)
	require.NotNil(t, ud.RootPW)
	assert.Equal(t, "$6$salt$hash", *ud.RootPW)
	assert.False(t, ud.IsRouter, "is_router stays hidden by default")

	require.Len(t, ud.Users, 2)
	assert.Equal(t, UserView{
		Name:         "alice",
		PrimaryGroup: "alice",
		Groups:       []string{"wheel"},
		Gecos:        "Alice",
		Shell:        "/bin/bash",
		SSHKeys:      []string{"ssh-ed25519 AAAA alice"},
		Sudo:         true,
		LockPasswd:   false,
		UID:          1000,
		HasUID:       true,
	}, ud.Users[0])

	bob := ud.Users[1]
	assert.Equal(t, "bob", bob.Name)
	assert.True(t, bob.LockPasswd)
	assert.False(t, bob.Sudo)
	assert.False(t, bob.HasUID)
	assert.Equal(t, []string{}, bob.Groups)
	assert.Equal(t, []string{}, bob.SSHKeys)

	view, err = Project(KindUserData, host, Options{ExposeIsRouter: true})
	require.NoError(t, err)
	assert.True(t, view.(UserDataView).IsRouter)
}

func TestProject_EmptyDefaults(t *testing.T) {
	host := &models.Host{Name: "bare"}

	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			view, err := Project(kind, host, Options{})
			require.NoError(t, err)
			assert.Equal(t, kind, view.Kind())
		})
	}

	view, _ := Project(KindUserData, host, Options{})
	ud := view.(UserDataView)
	assert.Equal(t, []UserView{}, ud.Users)
	assert.Equal(t, []string{}, ud.Groups)
	assert.Equal(t, []string{}, ud.RunCmds)
	assert.Nil(t, ud.RootPW)

	view, _ = Project(KindNetworkConfig, host, Options{})
	assert.Equal(t, []InterfaceView{}, view.(NetworkConfigView).Interfaces)

	view, _ = Project(KindOSConfig, host, Options{})
	assert.Equal(t, OSConfigView{}, view)
}

func TestProject_MetaData(t *testing.T) {
	host := &models.Host{Name: "web01"}

	a, err := Project(KindMetaData, host, Options{})
	require.NoError(t, err)
	b, err := Project(KindMetaData, host, Options{})
	require.NoError(t, err)

	idA := a.(MetaDataView).InstanceID
	idB := b.(MetaDataView).InstanceID
	assert.NotEqual(t, idA, idB)

	parsed, err := uuid.Parse(idA)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())

	fixed, err := Project(KindMetaData, host, Options{NewInstanceID: func() string { return "iid-1" }})
	require.NoError(t, err)
	assert.Equal(t, MetaDataView{Hostname: "web01", InstanceID: "iid-1"}, fixed)
}

func TestProject_Unattend(t *testing.T) {
	view, err := Project(KindUnattend, decodeHost(t, "win01", fullHost), Options{ExposeIsRouter: true})
	require.NoError(t, err)

	u := view.(UnattendView)
	assert.Equal(t, KindUnattend, u.Kind())
	assert.Equal(t, "win01", u.Hostname)
	assert.True(t, u.IsRouter)
	assert.Len(t, u.Users, 2)
	assert.Len(t, u.Interfaces, 2)
}

func TestProject_DoesNotAliasRecord(t *testing.T) {
	host := decodeHost(t, "web01", fullHost)

	view, err := Project(KindUserData, host, Options{})
	require.NoError(t, err)
	ud := view.(UserDataView)
	ud.Groups[0] = "changed"
	*ud.RootPW = "changed"

	assert.Equal(t, "ops", host.Groups[0])
	assert.Equal(t, "$6$salt$hash", *host.RootPW)
}

func TestProject_Errors(t *testing.T) {
	_, err := Project("vendor-data", &models.Host{}, Options{})
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = Project(KindOSConfig, nil, Options{})
	assert.Error(t, err)
}
