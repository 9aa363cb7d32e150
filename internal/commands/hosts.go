package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"evalgo.org/hostconf/internal/inventory"
)

var hostsFormat string

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List the hosts and MAC addresses of the inventory",
	Long: `List every interface of the inventory with the MAC it is served by.

Interfaces that repeat an earlier MAC are listed separately; lookups for that
MAC resolve to the first interface declaring it.

Examples:
  hostconf hosts
  hostconf hosts --format json`,
	Args: cobra.NoArgs,
	RunE: runHosts,
}

func init() {
	hostsCmd.Flags().StringVarP(&hostsFormat, "format", "f", "table", "output format (table, json)")
}

type hostsOutput struct {
	Policy    inventory.MACPolicy  `json:"mac_policy"`
	Entries   []hostsEntry         `json:"interfaces"`
	Conflicts []inventory.Conflict `json:"conflicts"`
}

type hostsEntry struct {
	inventory.Entry
	Addresses []string `json:"addresses"`
}

func runHosts(cmd *cobra.Command, args []string) error {
	doc, err := inventory.Load(cfg.Inventory.Path)
	if err != nil {
		return err
	}
	policy, err := inventory.ParseMACPolicy(cfg.Inventory.MACPolicy)
	if err != nil {
		return err
	}
	idx := inventory.NewIndex(doc, policy)

	result := hostsOutput{
		Policy:    idx.Policy(),
		Entries:   []hostsEntry{},
		Conflicts: idx.Conflicts(),
	}
	for _, e := range idx.Entries() {
		entry := hostsEntry{Entry: e, Addresses: []string{}}
		if host, ok := doc.Host(e.Hostname); ok {
			if iface, ok := host.Interfaces.Get(e.Interface); ok && len(iface.Addresses) > 0 {
				entry.Addresses = iface.Addresses
			}
		}
		result.Entries = append(result.Entries, entry)
	}

	out := cmd.OutOrStdout()

	switch hostsFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)

	case "table", "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "HOST\tINTERFACE\tMAC\tADDRESSES")
		for _, e := range result.Entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Hostname, e.Interface, e.MAC, strings.Join(e.Addresses, ","))
		}
		w.Flush()
		fmt.Fprintf(out, "\nTotal: %d hosts, %d MACs (%s)\n", len(doc.Hosts), len(result.Entries), result.Policy)

		if len(result.Conflicts) > 0 {
			fmt.Fprintf(out, "\nDuplicate MACs (first declaration wins):\n")
			for _, c := range result.Conflicts {
				fmt.Fprintf(out, "  - %s.%s %s shadowed by %s.%s\n",
					c.Hostname, c.Interface, c.MAC, c.Winner.Hostname, c.Winner.Interface)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format: %s (use 'table' or 'json')", hostsFormat)
	}
}
