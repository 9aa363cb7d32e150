package models

import "gopkg.in/yaml.v3"

// User is a local account declared for a host.
type User struct {
	// Name is the username (the mapping key, not a YAML field)
	Name string `yaml:"-"`

	// PrimaryGroup is the login group of the account (required)
	PrimaryGroup string `yaml:"primary_group"`

	// Groups are supplementary groups, in order
	Groups []string `yaml:"groups,omitempty"`

	// Gecos is the user's full name or comment field
	Gecos string `yaml:"gecos,omitempty"`

	// Shell is the login shell
	Shell string `yaml:"shell,omitempty"`

	// SSHKeys are authorized public keys, in order
	SSHKeys []string `yaml:"ssh_keys,omitempty"`

	// Sudo grants passwordless sudo when true
	Sudo *bool `yaml:"sudo,omitempty"`

	// LockPasswd disables password login when true
	LockPasswd *bool `yaml:"lock_passwd,omitempty"`

	// UID pins the numeric user id
	UID *int `yaml:"uid,omitempty"`
}

// UserList is the ordered form of a host's `users` mapping.
type UserList []*User

// UnmarshalYAML decodes the username → user mapping keeping document order.
func (l *UserList) UnmarshalYAML(value *yaml.Node) error {
	users, err := decodeNamed(value, func(u *User, name string) { u.Name = name })
	if err != nil {
		return err
	}
	*l = users
	return nil
}
