package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrelay/internal/adapters/driven/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change settings",
	Long: `View or change settings stored in ~/.docrelay/config.toml.

Environment variables (GOOGLE_CLIENT_ID, FIXED_RECIPIENT_EMAIL, ...) take
precedence over the file.

Known keys:
  ` + strings.Join(config.Keys, "\n  "),
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long:  `Change a setting. Secrets may be omitted from the command line and entered at the prompt.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return unavailable("config store")
		}
		cmd.Println(configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return unavailable("config store")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		return errors.Newf("%s is not set", args[0])
	}
	cmd.Println(displayValue(args[0], val))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return unavailable("config store")
	}

	key := args[0]
	if !knownKey(key) {
		return errors.WithHint(errors.Newf("unknown setting %q", key), "see `docrelay config --help` for known keys")
	}

	var raw string
	if len(args) == 2 {
		raw = args[1]
	} else {
		raw = newPrompter(cmd.OutOrStdout()).secret(key)
	}
	if raw == "" {
		return errors.New("value cannot be empty; use `docrelay config unset` to remove a setting")
	}

	value, err := parseValue(key, raw)
	if err != nil {
		return err
	}
	if err := configStore.Set(key, value); err != nil {
		return errors.Wrap(err, "saving setting")
	}
	cmd.Printf("%s = %s\n", key, displayValue(key, value))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return unavailable("config store")
	}
	if err := configStore.Unset(args[0]); err != nil {
		return errors.Wrap(err, "removing setting")
	}
	cmd.Printf("%s removed\n", args[0])
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return unavailable("config store")
	}

	keys := configStore.Keys()
	if len(keys) == 0 {
		cmd.Printf("No settings in %s\n", configStore.Path())
		return nil
	}
	for _, k := range keys {
		val, _ := configStore.Get(k)
		cmd.Printf("%s = %s\n", k, displayValue(k, val))
	}
	return nil
}

func knownKey(key string) bool {
	for _, k := range config.Keys {
		if k == key {
			return true
		}
	}
	return false
}

func parseValue(key, raw string) (any, error) {
	switch key {
	case config.KeyStageTimeout:
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, errors.Newf("%s must be a positive number of seconds", key)
		}
		return n, nil
	case config.KeyAuthMode:
		switch config.AuthMode(raw) {
		case config.AuthModeBrowser, config.AuthModeConsole, config.AuthModeNone:
			return raw, nil
		}
		return nil, errors.Newf("%s must be browser, console or none", key)
	default:
		return raw, nil
	}
}

func displayValue(key string, val any) string {
	s := fmt.Sprint(val)
	if key == config.KeyClientSecret {
		return maskSecret(s)
	}
	return s
}
