package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"evalgo.org/hostconf/internal/inventory"
	"evalgo.org/hostconf/internal/validation"
)

// ErrLintWarnings is returned by validate --strict when the inventory has
// lint findings.
var ErrLintWarnings = errors.New("inventory has lint warnings")

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate an inventory file",
	Long: `Validate an inventory against the hostconf schema and report lint warnings.

Every schema violation is reported with the dotted path of the offending
field. Lint warnings (duplicate MACs under the configured mac_policy, invalid
SSH keys, run_cmds that do not parse as shell words, interfaces without
addresses) do not fail validation unless --strict is given.

Examples:
  hostconf validate
  hostconf validate hosts.yml
  hostconf validate hosts.yml --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "treat lint warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	filename := cfg.Inventory.Path
	if len(args) == 1 {
		filename = args[0]
	}
	out := cmd.OutOrStdout()

	doc, err := inventory.Load(filename)
	if err != nil {
		var schemaErr *validation.SchemaError
		if !errors.As(err, &schemaErr) {
			return err
		}

		fmt.Fprintf(out, "✗ %s: validation failed:\n", filename)
		for _, e := range schemaErr.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
		return fmt.Errorf("%s: %w (%d errors)", filename, validation.ErrSchemaViolation, len(schemaErr.Errors))
	}

	fmt.Fprintf(out, "✓ %s is valid (%d hosts, %d interfaces)\n", filename, len(doc.Hosts), doc.InterfaceCount())

	policy, err := inventory.ParseMACPolicy(cfg.Inventory.MACPolicy)
	if err != nil {
		return err
	}
	warnings := validation.Lint(doc, policy.Key)
	if len(warnings) == 0 {
		return nil
	}

	fmt.Fprintf(out, "⚠ %d warnings:\n", len(warnings))
	for _, w := range warnings {
		fmt.Fprintf(out, "  - %s\n", w)
	}

	if validateStrict {
		return fmt.Errorf("%s: %w", filename, ErrLintWarnings)
	}
	return nil
}
