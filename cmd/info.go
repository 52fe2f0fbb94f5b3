package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/contract"
	"github.com/Mohsinsiddi/w3mood/internal/dapp"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the contract, its methods and the local setup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mood, err := contract.NewMood()
		if err != nil {
			return err
		}
		sepolia, err := chain.NewRegistry().GetByHexID(dapp.TargetChainID)
		if err != nil {
			return err
		}

		fmt.Println(ui.Banner(Version))
		fmt.Println(ui.KeyValueBlock("Contract", [][2]string{
			{"Address", ui.Addr(mood.Address().Hex())},
			{"Network", ui.ChainName(sepolia.DisplayName) + " " + ui.Meta(dapp.TargetChainID)},
			{"Explorer", sepolia.AddressURL(mood.Address().Hex())},
		}))

		t := ui.NewTable([]ui.Column{{Title: "Method"}, {Title: "Selector"}, {Title: "Kind"}, {Title: "Returns"}})
		for _, m := range mood.Methods() {
			kind := "write"
			if m.IsReadFunction() {
				kind = "read"
			}
			t.AddRow(ui.Row{m.Signature(), m.Selector(), kind, m.OutputTypes()})
		}
		fmt.Println()
		fmt.Print(t.Render())
		fmt.Println()

		setup := [][2]string{
			{"Provider", cfg.Provider},
			{"Network", cfg.Network},
		}
		switch cfg.Provider {
		case config.ProviderRPC:
			setup = append(setup, [2]string{"Wallet RPC", valueOr(cfg.WalletRPC, "(not set)")})
		default:
			setup = append(setup, [2]string{"Wallet", walletSummary()})
		}
		setup = append(setup,
			[2]string{"RPC algorithm", cfg.RPCAlgorithm},
			[2]string{"Config dir", cfg.Dir()},
			[2]string{"Log file", cfg.LogPath()},
		)
		fmt.Println(ui.KeyValueBlock("Setup", setup))
		return nil
	},
}

func walletSummary() string {
	mgr, err := newWalletManager(false)
	if err != nil {
		return "(unavailable)"
	}
	w, err := mgr.Resolve(cfg.DefaultWallet)
	if err != nil {
		return "(none)"
	}
	state := "locked"
	switch {
	case !w.CanSign():
		state = "watch-only"
	case newSessionCache().Unlocked(w):
		state = "unlocked"
	}
	return fmt.Sprintf("%s  %s  (%s)", w.Name, ui.TruncateAddr(w.Address), state)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
