package validation

import (
	"fmt"

	shellquote "github.com/kballard/go-shellquote"
	"golang.org/x/crypto/ssh"

	"evalgo.org/hostconf/models"
)

// Warning is a non-fatal finding about a schema-valid document.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Lint reports problems that do not stop the server from starting but
// probably produce a wrong provisioning result:
//   - a MAC address declared on more than one interface (the first one wins)
//   - ssh_keys entries that are not valid authorized_keys lines
//   - run_cmds entries with unbalanced shell quoting
//   - interfaces without addresses
//
// macKey maps a MAC to the key lookups compare, so duplicates are judged the
// way the index judges them. A nil macKey compares normalized MACs.
func Lint(doc *models.Document, macKey func(string) string) []Warning {
	if macKey == nil {
		macKey = models.NormalizeMAC
	}
	var warnings []Warning

	type owner struct{ host, iface string }
	seen := make(map[string]owner)

	for _, host := range doc.Hosts {
		hostPath := join("hosts", host.Name)

		for i, cmd := range host.RunCmds {
			if _, err := shellquote.Split(cmd); err != nil {
				warnings = append(warnings, Warning{
					Field:   fmt.Sprintf("%s.run_cmds[%d]", hostPath, i),
					Message: fmt.Sprintf("command does not parse as shell words: %v", err),
				})
			}
		}

		for _, user := range host.Users {
			for i, key := range user.SSHKeys {
				if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
					warnings = append(warnings, Warning{
						Field:   fmt.Sprintf("%s.users.%s.ssh_keys[%d]", hostPath, user.Name, i),
						Message: fmt.Sprintf("not an authorized key: %v", err),
					})
				}
			}
		}

		for _, iface := range host.Interfaces {
			ifacePath := join(hostPath, "interfaces."+iface.Name)
			key := macKey(iface.MAC)
			if prev, dup := seen[key]; dup {
				warnings = append(warnings, Warning{
					Field: ifacePath + ".mac",
					Message: fmt.Sprintf("MAC %s is already declared on %s.%s; lookups resolve to %s",
						iface.MAC, prev.host, prev.iface, prev.host),
				})
			} else {
				seen[key] = owner{host: host.Name, iface: iface.Name}
			}

			if len(iface.Addresses) == 0 {
				warnings = append(warnings, Warning{
					Field:   ifacePath + ".addresses",
					Message: "interface has no addresses",
				})
			}
		}
	}

	return warnings
}
