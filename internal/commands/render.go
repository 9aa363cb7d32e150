package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"evalgo.org/hostconf/internal/projection"
	"evalgo.org/hostconf/internal/provision"
)

var renderTemplate string

var renderCmd = &cobra.Command{
	Use:   "render <kind> <mac>",
	Short: "Render a provisioning document without starting the server",
	Long: `Render the document the server would return for a MAC address.

Kinds: osconfig, network-config, user-data, meta-data, unattend, and the raw
fields install, install_to and config.

With --template the file is rendered against the unattend view of the host,
as a PUT /unattend/<mac> request would be.

Examples:
  hostconf render user-data aa:bb:cc:dd:ee:ff
  hostconf render osconfig AA-BB-CC-DD-EE-FF
  hostconf render unattend aa:bb:cc:dd:ee:ff --template custom.xml.tmpl`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "render a custom template file against the unattend view")
}

func runRender(cmd *cobra.Command, args []string) error {
	name, mac := args[0], args[1]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, _, err := loadService(cfg, func(opts *provision.Options) {
		opts.AllowCustomTemplates = renderTemplate != ""
	})
	if err != nil {
		return err
	}

	var res *provision.Result
	switch {
	case renderTemplate != "":
		body, err := os.ReadFile(renderTemplate)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		res, err = svc.LookupCustom(ctx, mac, body)
		if err != nil {
			return err
		}

	case slices.Contains(provision.RawFields, name):
		res, err = svc.Field(ctx, name, mac)
		if err != nil {
			return err
		}

	default:
		kind, err := projection.ParseKind(name)
		if err != nil {
			return fmt.Errorf("%w (use one of %s)", err, strings.Join(kindNames(), ", "))
		}
		res, err = svc.Lookup(ctx, kind, mac)
		if err != nil {
			return err
		}
	}

	_, err = cmd.OutOrStdout().Write(res.Body)
	return err
}

func kindNames() []string {
	names := make([]string, 0, len(projection.Kinds())+len(provision.RawFields))
	for _, k := range projection.Kinds() {
		names = append(names, k.String())
	}
	return append(names, provision.RawFields...)
}
