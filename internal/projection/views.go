package projection

// View is the input of a template. Every concrete view is one of the
// *View types in this package.
type View interface {
	Kind() Kind
}

// OSConfigView feeds the osconfig template.
type OSConfigView struct {
	Install   string `json:"install"`
	InstallTo string `json:"install_to"`
	Config    string `json:"config"`
}

func (OSConfigView) Kind() Kind { return KindOSConfig }

// RouteView is a static route. Metric is empty when unset.
type RouteView struct {
	To     string `json:"to"`
	Via    string `json:"via"`
	Metric string `json:"metric"`
}

// InterfaceView is one network interface.
type InterfaceView struct {
	Name      string      `json:"name"`
	MAC       string      `json:"mac"`
	Addresses []string    `json:"addresses"`
	Routes    []RouteView `json:"routes"`
}

// NetworkConfigView feeds the network-config template.
type NetworkConfigView struct {
	Interfaces []InterfaceView `json:"interfaces"`
}

func (NetworkConfigView) Kind() Kind { return KindNetworkConfig }

// UserView is one local account.
type UserView struct {
	Name         string   `json:"name"`
	PrimaryGroup string   `json:"primary_group"`
	Groups       []string `json:"groups"`
	Gecos        string   `json:"gecos"`
	Shell        string   `json:"shell"`
	SSHKeys      []string `json:"ssh_keys"`
	Sudo         bool     `json:"sudo"`
	LockPasswd   bool     `json:"lock_passwd"`

	// UID is meaningful only when HasUID is set
	UID    int  `json:"uid"`
	HasUID bool `json:"has_uid"`
}

// UserDataView feeds the user-data template.
type UserDataView struct {
	Hostname string     `json:"hostname"`
	Users    []UserView `json:"users"`
	Groups   []string   `json:"groups"`

	// RootPW is nil when the record has no root_pw
	RootPW  *string  `json:"root_pw"`
	RunCmds []string `json:"run_cmds"`

	// IsRouter is always false unless Options.ExposeIsRouter is set
	IsRouter bool `json:"is_router"`
}

func (UserDataView) Kind() Kind { return KindUserData }

// MetaDataView feeds the meta-data template.
type MetaDataView struct {
	Hostname   string `json:"hostname"`
	InstanceID string `json:"instance_id"`
}

func (MetaDataView) Kind() Kind { return KindMetaData }

// UnattendView feeds the unattend template: the user-data fields plus the
// interfaces.
type UnattendView struct {
	UserDataView
	Interfaces []InterfaceView `json:"interfaces"`
}

func (UnattendView) Kind() Kind { return KindUnattend }
