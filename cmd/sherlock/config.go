package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/sherlock/pkg/sherlock/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the sherlock config file",
	Long: `Inspect and edit the sherlock config file.

The file is looked up as --config, then $XDG_CONFIG_HOME/sherlock/config.yaml,
then ~/.config/sherlock/config.yaml. SHERLOCK_* environment variables
override it, for example SHERLOCK_MAX_DEPTH=5 or SHERLOCK_CACHE_ENABLED=false.`,
	// A broken file is reported but must stay editable.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bootstrap(cmd, args); err != nil {
			printWarning("%v", err)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := appConfig
		if cfg == nil {
			var err error
			if cfg, err = config.LoadFile(cfgFile); err != nil {
				return err
			}
		}
		return writeEffectiveConfig(cmd, cfg)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $VISUAL or $EDITOR",
	Long:  `Open the config file in $VISUAL, $EDITOR or vi, creating the default file first when there is none.`,
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		if cfgFile == "" {
			if err := config.WriteDefault(); err != nil {
				return err
			}
		}
		return edit(path)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the commented default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.ConfigFile()
		if err != nil {
			return err
		}
		existed := fileExists(path)
		if err := config.WriteDefault(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if existed {
			printInfo(out, "Config file already exists: %s", path)
			printInfo(out, "Use 'sherlock config edit' to modify it.")
			return nil
		}
		printInfo(out, "Created default config file: %s", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		if !fileExists(path) {
			printVerbose("%s does not exist, defaults apply", path)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configEditCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configFilePath returns --config when given, else the default location.
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigFile()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// writeEffectiveConfig prints cfg as YAML under a comment naming its source.
func writeEffectiveConfig(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	path, err := configFilePath()
	if err != nil {
		return err
	}
	source := path
	if !fileExists(path) {
		source = "(none, using defaults)"
	}
	fmt.Fprintf(out, "# Config file: %s\n", source)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return enc.Close()
}

// edit runs the user's editor on path attached to the terminal.
func edit(path string) error {
	editor := "vi"
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			editor = v
			break
		}
	}
	printVerbose("opening %s with %s", path, editor)

	c := exec.Command(editor, path)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("running %s: %w", editor, err)
	}
	return nil
}
