package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
	boosthttp "github.com/0xcro3dile/boost-go/internal/infrastructure/http"
)

var showSecrets bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and write persisted settings",
	Long: fmt.Sprintf(`Reads and writes the settings database directly.

Known keys:
  %s    API key for the openai backend
  %s  replaces the default system prompt preamble
  %s          model identifier sent with every request
  %s  menu bar visibility for UI front ends

A running daemon picks up changes made through its API; changes made here
apply on its next start.`, ports.SettingAPIKey, ports.SettingSystemPrompt, ports.SettingModel, ports.SettingShowMenuBar),
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cfg, true)
		if err != nil {
			return err
		}
		defer store.Close()

		value, ok, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("setting %q is not set", args[0])
		}
		if args[0] == ports.SettingAPIKey && !showSecrets {
			value = boosthttp.MaskSecret(value)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cfg, true)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Set(cmd.Context(), args[0], args[1])
	},
}

var settingsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove one setting so the config file value applies again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cfg, true)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Delete(cmd.Context(), args[0])
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all settings as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cfg, true)
		if err != nil {
			return err
		}
		defer store.Close()

		all, err := store.All(cmd.Context())
		if err != nil {
			return err
		}
		if key, ok := all[ports.SettingAPIKey]; ok && !showSecrets {
			all[ports.SettingAPIKey] = boosthttp.MaskSecret(key)
		}
		if len(all) == 0 {
			return nil
		}
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(all)
	},
}

func init() {
	settingsCmd.PersistentFlags().BoolVar(&showSecrets, "show-secrets", false, "Print the API key unmasked")
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsDeleteCmd, settingsListCmd)
	rootCmd.AddCommand(settingsCmd)
}
