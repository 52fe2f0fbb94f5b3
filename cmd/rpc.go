package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/rpc"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage the node endpoints the keystore wallet uses",
}

// rpcNetwork resolves an optional network argument, defaulting to the
// configured one.
func rpcNetwork(args []string) (*chain.Chain, error) {
	name := cfg.Network
	if len(args) > 0 {
		name = args[0]
	}
	c, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w", name, err)
	}
	return c, nil
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <url> [network]",
	Short: "Add a custom endpoint; custom endpoints are tried first",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rpcNetwork(args[1:])
		if err != nil {
			return err
		}
		if err := cfg.AddRPC(c.Name, args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(c.Name), args[0])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <url> [network]",
	Short: "Remove a custom endpoint",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rpcNetwork(args[1:])
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(c.Name, args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", c.Name, args[0])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List endpoints in the order they are considered",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rpcNetwork(args)
		if err != nil {
			return err
		}
		t := ui.NewTable([]ui.Column{{Title: "URL"}, {Title: "Source"}})
		for _, u := range cfg.GetRPCs(c.Name) {
			t.AddRow(ui.Row{u, "custom"})
		}
		for _, u := range c.RPCs {
			t.AddRow(ui.Row{u, "built-in"})
		}
		fmt.Println(ui.StyleTitle.Render("RPCs for " + c.DisplayName))
		fmt.Print(t.Render())
		fmt.Println(ui.Meta("Selection: " + cfg.RPCAlgorithm))
		return nil
	},
}

var rpcBenchCmd = &cobra.Command{
	Use:     "bench [network]",
	Aliases: []string{"benchmark"},
	Short:   "Probe every endpoint and show which one would be picked",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rpcNetwork(args)
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}
		urls := append(append([]string{}, cfg.GetRPCs(c.Name)...), c.RPCs...)

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		s := ui.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Probing %d %s endpoint(s)…", len(urls), c.DisplayName))
		s.Start()
		results := rpc.Benchmark(ctx, urls, rpc.ProbeEVM)
		s.Stop()

		winner, pickErr := rpc.NewPicker(algo).Pick(results)

		t := ui.NewTable([]ui.Column{{Title: "URL"}, {Title: "Latency"}, {Title: "Block"}, {Title: "Status"}})
		for _, r := range results {
			latency, block, status := "-", "-", "down"
			if r.Healthy() {
				latency = fmt.Sprintf("%dms", r.Latency.Milliseconds())
				block = fmt.Sprintf("%d", r.BlockNumber)
				status = "healthy"
			}
			if winner != nil && r.URL == winner.URL {
				status += " ★"
			}
			t.AddRow(ui.Row{r.URL, latency, block, status})
		}
		fmt.Print(t.Render())

		if pickErr != nil {
			fmt.Println(ui.Err(pickErr.Error()))
			return errReported
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s picks %s", algo, winner.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:       "algorithm <fastest|round-robin|failover>",
	Short:     "Set how an endpoint is picked",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(rpc.AlgorithmFastest), string(rpc.AlgorithmRoundRobin), string(rpc.AlgorithmFailover)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(config.KeyRPCAlgorithm, args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC algorithm set to %q", args[0])))
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchCmd, rpcAlgorithmCmd)
}
