package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/dapp"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

var (
	moodWait          bool
	moodPollInterval  time.Duration
	moodWatchInterval time.Duration
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Check the wallet is present, unlocked and on Sepolia",
	Long: `Run the wallet checks every mood command starts with:

  1. a wallet is configured and reachable
  2. it has an unlocked account
  3. it is on Sepolia (0xaa36a7); otherwise a switch is requested and
     the command must be re-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		d := newLineDisplay(os.Stdout)
		defer d.Close()
		s, closeFn, err := connect(ctx, dapp.NewController(d, log))
		if err != nil {
			return err
		}
		defer closeFn()

		fmt.Println(ui.Meta("Chain: " + s.ChainID() + "   Contract: " + s.Contract().Address().Hex()))
		return nil
	},
}

var moodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Read or set the mood stored on-chain",
}

var moodGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current mood",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		d := newLineDisplay(os.Stdout)
		defer d.Close()
		ctrl := dapp.NewController(d, log)
		_, closeFn, err := connect(ctx, ctrl)
		if err != nil {
			return err
		}
		defer closeFn()

		if _, err := ctrl.GetMood(ctx); err != nil && !errors.Is(err, dapp.ErrEmptyMood) {
			return errReported
		}
		return nil
	},
}

var moodSetCmd = &cobra.Command{
	Use:   "set <mood...>",
	Short: "Store a new mood",
	Long: `Send setMood with the given text. Words are joined with single spaces and
the result is trimmed; blank input is rejected before anything is sent.

The command returns once the wallet accepted the transaction. Use --wait to
block until it is mined.`,
	Example: `  w3mood mood set happy
  w3mood mood set "ready for the weekend" --wait`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		d := newLineDisplay(os.Stdout)
		defer d.Close()
		ctrl := dapp.NewController(d, log)
		s, closeFn, err := connect(ctx, ctrl)
		if err != nil {
			return err
		}
		defer closeFn()

		hash, err := ctrl.SetMood(ctx, strings.Join(args, " "), dapp.SetOptions{
			Wait:         moodWait,
			PollInterval: moodPollInterval,
		})
		if hash != (common.Hash{}) {
			printTxLink(s, hash.Hex())
		}
		if err != nil {
			return errReported
		}
		return nil
	},
}

var moodWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the mood live",
	Long: `Poll getMood and list every change until you quit.

Keyboard controls:
  ↑↓ / j k   scroll
  q          quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		d := newLineDisplay(os.Stdout)
		ctrl := dapp.NewController(d, log)
		s, closeFn, err := connect(ctx, ctrl)
		d.Close()
		if err != nil {
			return err
		}
		defer closeFn()

		prog := tea.NewProgram(ui.NewWatchModel(s.Account().Hex(), cfg.Network, moodWatchInterval))
		go func() {
			err := s.Watch(ctx, moodWatchInterval, dapp.WatchHandler{
				OnChange: func(mood string) {
					prog.Send(ui.MoodChangeMsg{Mood: mood, At: time.Now()})
				},
				OnPoll: func(polls int, err error) {
					status := ui.WatchStatusMsg{Polls: polls}
					if err != nil {
						log.Warn().Err(err).Int("poll", polls).Msg("watch read failed")
						status.ErrMsg = dapp.Message(err)
					}
					prog.Send(status)
				},
			})
			log.Debug().Err(err).Msg("watch stopped")
		}()

		_, err = prog.Run()
		cancel()
		return err
	},
}

// printTxLink shows the transaction hash, with an explorer link when the
// connected chain has one.
func printTxLink(s *dapp.Session, hash string) {
	fmt.Println(ui.Meta("tx: ") + ui.Addr(hash))
	c, err := chain.NewRegistry().GetByHexID(s.ChainID())
	if err != nil {
		return
	}
	if url := c.TxURL(hash); url != "" {
		fmt.Println(ui.Hint(url))
	}
}

func init() {
	moodSetCmd.Flags().BoolVar(&moodWait, "wait", false, "wait until the transaction is mined")
	moodSetCmd.Flags().DurationVar(&moodPollInterval, "interval", dapp.DefaultPollInterval, "receipt polling interval with --wait")
	moodWatchCmd.Flags().DurationVar(&moodWatchInterval, "interval", 5*time.Second, "polling interval")
	moodCmd.AddCommand(moodGetCmd, moodSetCmd, moodWatchCmd)
}
