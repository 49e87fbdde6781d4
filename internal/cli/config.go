package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dictation/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in $XDG_CONFIG_HOME/dictation/config.yaml
(~/.config/dictation/config.yaml), or the file given with --config.
Every key can be overridden with a DICTATION_ environment variable,
e.g. DICTATION_GRID_WINDOW_LEN for grid.window_len.

Supported keys:
  ` + strings.Join(config.Keys(), "\n  "),
		Example: `  dictation config set grid.window_len 5
  dictation config set output_dir ~/dictation/drafts
  dictation config get silence.noise_db
  dictation config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

The value is checked against the full configuration before it is saved.
For output_dir, the directory is created if it doesn't exist.`,
		Example: `  dictation config set silence.min_gap 0.4
  dictation config set transcribe.provider local`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the resolved value of a key.

Prints the value to stdout, or nothing if it is empty.`,
		Example: `  dictation config get grid.window_len`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List every key with its resolved value and its source
(default, file, or environment variable).`,
		Example: `  dictation config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	store, err := env.ConfigLoader.Load(env.ConfigPath)
	if err != nil {
		return err
	}

	if key == config.KeyOutputDir {
		value = config.ExpandPath(value)
		if err := config.EnsureOutputDir(value); err != nil {
			return fmt.Errorf("invalid output_dir: %w", err)
		}
	}

	if err := store.Set(key, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(env.Stderr, "Set %s = %s (%s)\n", key, value, store.Path())
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	store, err := env.ConfigLoader.Load(env.ConfigPath)
	if err != nil {
		return err
	}

	value, err := store.Get(key)
	if err != nil {
		return err
	}

	if value != "" {
		_, _ = fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	store, err := env.ConfigLoader.Load(env.ConfigPath)
	if err != nil {
		return err
	}

	for _, e := range store.List() {
		if e.Source == "default" {
			_, _ = fmt.Fprintf(env.Stdout, "%s=%s\n", e.Key, e.Value)
			continue
		}
		_, _ = fmt.Fprintf(env.Stdout, "%s=%s (%s)\n", e.Key, e.Value, e.Source)
	}
	_, _ = fmt.Fprintf(env.Stderr, "Config file: %s\n", store.Path())
	return nil
}
