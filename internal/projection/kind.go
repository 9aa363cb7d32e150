// Package projection turns a host record into the view model for one output
// kind.
//
// A view carries exactly the fields its kind documents, with every optional
// field the record omits filled in as an explicit empty value. Templates can
// therefore range and test fields without guarding against nil.
package projection

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned for a kind outside the supported set.
var ErrUnknownKind = errors.New("unknown output kind")

// Kind names an output format.
type Kind string

const (
	KindOSConfig      Kind = "osconfig"
	KindNetworkConfig Kind = "network-config"
	KindUserData      Kind = "user-data"
	KindMetaData      Kind = "meta-data"
	KindUnattend      Kind = "unattend"
)

// Kinds returns every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindOSConfig, KindNetworkConfig, KindUserData, KindMetaData, KindUnattend}
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}
