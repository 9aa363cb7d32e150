package projection

import (
	"fmt"

	"github.com/google/uuid"

	"evalgo.org/hostconf/models"
)

// Options tunes projection.
type Options struct {
	// ExposeIsRouter copies the record's is_router flag into user-data and
	// unattend views
	ExposeIsRouter bool

	// NewInstanceID generates meta-data instance ids (default: random UUIDv4)
	NewInstanceID func() string
}

// Project builds the view of host for kind. It has no side effects apart from
// drawing a new instance id for meta-data.
func Project(kind Kind, host *models.Host, opts Options) (View, error) {
	if host == nil {
		return nil, fmt.Errorf("project %s: nil host", kind)
	}

	switch kind {
	case KindOSConfig:
		return OSConfigView{
			Install:   host.Install,
			InstallTo: host.InstallTo,
			Config:    host.Config,
		}, nil

	case KindNetworkConfig:
		return NetworkConfigView{Interfaces: interfaces(host.Interfaces)}, nil

	case KindUserData:
		return userData(host, opts), nil

	case KindMetaData:
		newID := opts.NewInstanceID
		if newID == nil {
			newID = uuid.NewString
		}
		return MetaDataView{Hostname: host.Name, InstanceID: newID()}, nil

	case KindUnattend:
		return UnattendView{
			UserDataView: userData(host, opts),
			Interfaces:   interfaces(host.Interfaces),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func userData(host *models.Host, opts Options) UserDataView {
	v := UserDataView{
		Hostname: host.Name,
		Users:    make([]UserView, 0, len(host.Users)),
		Groups:   copyStrings(host.Groups),
		RunCmds:  copyStrings(host.RunCmds),
		IsRouter: opts.ExposeIsRouter && host.IsRouter,
	}
	if host.RootPW != nil {
		pw := *host.RootPW
		v.RootPW = &pw
	}
	for _, u := range host.Users {
		v.Users = append(v.Users, user(u))
	}
	return v
}

func user(u *models.User) UserView {
	v := UserView{
		Name:         u.Name,
		PrimaryGroup: u.PrimaryGroup,
		Groups:       copyStrings(u.Groups),
		Gecos:        u.Gecos,
		Shell:        u.Shell,
		SSHKeys:      copyStrings(u.SSHKeys),
		LockPasswd:   true,
	}
	if u.Sudo != nil {
		v.Sudo = *u.Sudo
	}
	if u.LockPasswd != nil {
		v.LockPasswd = *u.LockPasswd
	}
	if u.UID != nil {
		v.UID = *u.UID
		v.HasUID = true
	}
	return v
}

func interfaces(list models.InterfaceList) []InterfaceView {
	out := make([]InterfaceView, 0, len(list))
	for _, iface := range list {
		routes := make([]RouteView, 0, len(iface.Routes))
		for _, r := range iface.Routes {
			routes = append(routes, RouteView{To: r.To, Via: r.Via, Metric: r.Metric.String()})
		}
		out = append(out, InterfaceView{
			Name:      iface.Name,
			MAC:       iface.MAC,
			Addresses: copyStrings(iface.Addresses),
			Routes:    routes,
		})
	}
	return out
}

// copyStrings copies s, turning nil into an empty slice.
func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
