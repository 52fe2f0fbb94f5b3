package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show the effective configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{{Title: "Key"}, {Title: "Value"}, {Title: "Source"}})
		for _, key := range config.Keys() {
			v, err := cfg.Get(key)
			if err != nil {
				return err
			}
			source := "file"
			if cfg.FromEnv(key) {
				source = "env"
			}
			t.AddRow(ui.Row{key, v, source})
		}
		fmt.Println(ui.StyleTitle.Render("Configuration"))
		fmt.Print(t.Render())
		for network, urls := range cfg.CustomRPCs {
			for _, u := range urls {
				fmt.Println(ui.Meta(fmt.Sprintf("custom rpc  %s  %s", network, u)))
			}
		}
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print one value",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Validate and store a value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		pinned := cfg.FromEnv(key)
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s = %s", key, value)))
		if pinned {
			fmt.Println(ui.Warn("An environment variable overrides this key for now."))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd)
}
