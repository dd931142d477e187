package cmd

import (
	"fmt"
	"os"

	"github.com/kernel/extkill/internal/config"
	"github.com/kernel/extkill/internal/firefox"
	"github.com/kernel/extkill/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	cfg    = config.New()
	logger = pterm.DefaultLogger.WithWriter(os.Stderr).WithLevel(pterm.LogLevelWarn)
)

var rootCmd = &cobra.Command{
	Use:   "extkill",
	Short: "Find and remove installed Firefox extensions",
	Long: `extkill lists the Firefox extensions installed on this machine and removes
them from disk or from the Windows registry.

Extensions are discovered in the per-user extensions folder, every profile's
extensions folder, the Firefox installation's extensions folder and the three
registry keys Firefox reads extension pointers from.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Root returns the extkill root command.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("appdata", "", "Roaming application data folder (default $APPDATA)")
	pf.String("program-files", "", "Program Files folder holding Mozilla Firefox (default $PROGRAMFILES(X86) or $PROGRAMFILES)")
	pf.Bool("no-registry", false, "Skip the registry sources")
	pf.String("env-file", "", "Load environment variables from this file (default .env if present)")
	pf.String("config", "", fmt.Sprintf("Config file (default %s)", config.FilePath()))
	pf.Bool("debug", false, "Print scan and removal diagnostics")

	for key, flag := range map[string]string{
		config.KeyAppData:      "appdata",
		config.KeyProgramFiles: "program-files",
		config.KeyNoRegistry:   "no-registry",
		config.KeyDebug:        "debug",
	} {
		if err := cfg.BindFlag(rootCmd, key, flag); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
}

func setupCommand(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	configFile, _ := cmd.Flags().GetString("config")
	if err := cfg.Load(envFile, configFile); err != nil {
		return err
	}

	if cfg.Debug() {
		pterm.EnableDebugMessages()
		logger = logger.WithLevel(pterm.LogLevelDebug)
	}
	if used := cfg.FileUsed(); used != "" {
		pterm.Debug.Printf("Using config file %s\n", used)
	}
	return nil
}

// newEngine scans the machine using the resolved configuration.
func newEngine() (*firefox.Engine, error) {
	opts := firefox.Options{Roots: cfg.Roots(), Logger: logger}
	if !cfg.NoRegistry() {
		opts.Registry = firefox.SystemRegistry()
	}

	engine, err := firefox.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for extensions: %w", err)
	}

	roots := engine.Roots()
	pterm.Debug.Printf("User extensions: %s\n", util.OrDash(roots.UserExtensionsDir()))
	pterm.Debug.Printf("Profiles: %s\n", util.OrDash(roots.ProfilesDir()))
	pterm.Debug.Printf("Machine extensions: %s\n", util.OrDash(roots.MachineExtensionsDir()))
	return engine, nil
}
