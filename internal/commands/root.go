package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"evalgo.org/hostconf/internal/config"
	"evalgo.org/hostconf/internal/inventory"
	"evalgo.org/hostconf/internal/render"
	"evalgo.org/hostconf/internal/validation"
	"evalgo.org/hostconf/internal/version"
)

// Process exit codes.
const (
	ExitOK             = 0
	ExitError          = 1
	ExitConfigNotFound = 2
	ExitSchema         = 3
	ExitTemplate       = 4
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hostconf",
	Short: "Host provisioning configuration server",
	Long: `hostconf serves per-host provisioning documents (cloud-init user-data,
meta-data and network-config, osconfig shell fragments and Windows unattend
files) rendered from a single YAML inventory, keyed by the MAC address of the
requesting machine.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version.Get().Version
	return rootCmd.Execute()
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, inventory.ErrConfigNotFound):
		return ExitConfigNotFound
	case errors.Is(err, validation.ErrSchemaViolation):
		return ExitSchema
	case errors.Is(err, render.ErrTemplateMissing), errors.Is(err, render.ErrRender):
		return ExitTemplate
	default:
		return ExitError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

// loadConfig loads the configuration before every command. Flags win over
// the file and the environment.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Fprintf(out, "\nDetails:\n")
			fmt.Fprintf(out, "  Version:    %s\n", info.Version)
			fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  Built:      %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
