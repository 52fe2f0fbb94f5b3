package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/dapp"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Choose the network the keystore wallet connects to",
	Long: `The keystore wallet reads and signs through the configured network. The mood
contract lives on Sepolia; on any other network mood commands switch back and
ask you to re-run.`,
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{{Title: "Name"}, {Title: "Display"}, {Title: "Chain ID"}, {Title: "Hex"}, {Title: "Currency"}, {Title: ""}})
		for _, c := range chain.NewRegistry().All() {
			var mark string
			switch {
			case c.Name == cfg.Network:
				mark = "current"
			case c.HexID() == dapp.TargetChainID:
				mark = "mood contract"
			}
			t.AddRow(ui.Row{c.Name, c.DisplayName, strconv.FormatInt(c.ChainID, 10), c.HexID(), c.NativeCurrency, mark})
		}
		fmt.Print(t.Render())
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			var items []ui.PickerItem
			for _, c := range reg.All() {
				items = append(items, ui.PickerItem{
					Label:    c.Name,
					SubLabel: c.DisplayName + "  " + c.HexID(),
					Value:    c.Name,
					Current:  c.Name == cfg.Network,
				})
			}
			picked, err := ui.PickItem("Network", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		pinned := cfg.FromEnv(config.KeyNetwork)
		if err := cfg.Set(config.KeyNetwork, name); err != nil {
			return fmt.Errorf("%w (see `w3mood network list`)", err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		c, _ := reg.GetByName(name)
		fmt.Println(ui.Success("Network set to " + ui.ChainName(c.DisplayName)))
		if c.HexID() != dapp.TargetChainID {
			fmt.Println(ui.Warn("The mood contract is on Sepolia; mood commands will ask to switch back."))
		}
		if pinned {
			fmt.Println(ui.Warn("W3MOOD_NETWORK is set and still takes precedence."))
		}
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
