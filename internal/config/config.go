// Package config resolves extkill settings from flags, the environment, an
// optional .env file and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kernel/extkill/internal/firefox"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "EXTKILL"
	fileName  = "config"
	fileType  = "yaml"
)

// Keys understood by the config file and the EXTKILL_* environment variables.
const (
	KeyAppData      = "appdata"
	KeyProgramFiles = "program_files"
	KeyNoRegistry   = "no_registry"
	KeyBackupDir    = "backup_dir"
	KeyDebug        = "debug"
)

// Config is a resolved set of settings. Precedence is flag, environment,
// config file, default.
type Config struct {
	v        *viper.Viper
	fileUsed string
}

// New returns an empty Config. Call Load before reading values.
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// Dir returns the default config directory (~/.config/extkill).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "extkill")
	}
	return filepath.Join(home, ".config", "extkill")
}

// FilePath returns the default config file path.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Load reads envFile into the process environment and then configFile.
// Empty arguments mean ".env" in the working directory and FilePath(), and
// either may be missing. Explicitly named files must exist.
func (c *Config) Load(envFile, configFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	path := configFile
	if path == "" {
		path = FilePath()
	}
	c.v.SetConfigFile(path)
	c.v.SetConfigType(fileType)
	if err := c.v.ReadInConfig(); err != nil {
		if configFile == "" && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	c.fileUsed = path
	return nil
}

// BindFlag binds the persistent or local flag named flag on cmd to key.
func (c *Config) BindFlag(cmd *cobra.Command, key, flag string) error {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	if f == nil {
		return fmt.Errorf("unknown flag %q", flag)
	}
	return c.v.BindPFlag(key, f)
}

// Roots returns the configured environment roots. Any root left empty falls
// back to the process environment.
func (c *Config) Roots() firefox.Roots {
	env := firefox.RootsFromEnv()
	roots := firefox.Roots{
		AppData:      c.v.GetString(KeyAppData),
		ProgramFiles: c.v.GetString(KeyProgramFiles),
	}
	if roots.AppData == "" {
		roots.AppData = env.AppData
	}
	if roots.ProgramFiles == "" {
		roots.ProgramFiles = env.ProgramFiles
	}
	return roots
}

// NoRegistry disables the three registry sources.
func (c *Config) NoRegistry() bool {
	return c.v.GetBool(KeyNoRegistry)
}

func (c *Config) BackupDir() string {
	return c.v.GetString(KeyBackupDir)
}

func (c *Config) Debug() bool {
	return c.v.GetBool(KeyDebug)
}

// FileUsed reports the config file that was read, or "" if none was.
func (c *Config) FileUsed() string {
	return c.fileUsed
}
