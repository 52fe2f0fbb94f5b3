package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
	"github.com/Mohsinsiddi/w3mood/internal/wallet"
)

var (
	walletKeyFlag   string
	walletWatchFlag string
	walletUnlockAll bool
	walletLockAll   bool
	walletYes       bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keystore wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Import a private key, or add a watch-only address",
	Long: `Import a signing wallet. The private key goes to the OS keychain (or an
encrypted file under the config dir when no keychain is available); only the
address is written to wallets.json.

Without --key the key is read from the terminal without echo, or from stdin
when it is piped.`,
	Example: `  w3mood wallet add alice
  echo $KEY | w3mood wallet add ci
  w3mood wallet add bob --watch 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		if walletWatchFlag != "" {
			mgr, err := newWalletManager(false)
			if err != nil {
				return err
			}
			if err := mgr.AddWatchOnly(name, walletWatchFlag); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Println(ui.Hint("Watch-only wallets cannot set a mood."))
			return nil
		}

		hexKey := walletKeyFlag
		if hexKey == "" {
			var err error
			hexKey, err = readSecret(os.Stdin, fmt.Sprintf("Private key for %q: ", name))
			if err != nil {
				return err
			}
		}

		mgr, err := newWalletManager(true)
		if err != nil {
			return err
		}
		if err := mgr.AddWithKey(name, hexKey); err != nil {
			return err
		}
		w, _ := mgr.Get(name)
		fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		printNextSteps(name)
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Create a new signing wallet",
	Long: `Generate a fresh keypair and store the private key in the keychain.

Fund the address with Sepolia ETH before setting a mood.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(true)
		if err != nil {
			return err
		}
		w, err := mgr.Generate(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q created: %s", w.Name, ui.Addr(w.Address))))
		printNextSteps(w.Name)
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets yet."))
			fmt.Println(ui.Hint("Import one with: w3mood wallet add <name>"))
			return nil
		}

		session := newSessionCache()
		def, _ := mgr.Resolve(cfg.DefaultWallet)
		t := ui.NewTable([]ui.Column{{Title: "Name"}, {Title: "Address"}, {Title: "Type"}, {Title: "State"}, {Title: "Default"}})
		for _, w := range wallets {
			mark := ""
			if def != nil && def.Name == w.Name {
				mark = "✓"
			}
			t.AddRow(ui.Row{w.Name, w.Address, w.Type, walletState(w, session), mark})
		}
		fmt.Print(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s)", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Choose the wallet mood commands connect with",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			name, err = pickWallet(mgr, "Use wallet", func(*wallet.Wallet) bool { return true })
			if err != nil || name == "" {
				return err
			}
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		pinned := cfg.FromEnv(config.KeyDefaultWallet)
		if err := cfg.Set(config.KeyDefaultWallet, name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		if pinned {
			fmt.Println(ui.Warn("W3MOOD_WALLET is set and still takes precedence."))
		}
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !walletYes && !ui.ConfirmDanger(os.Stdin, os.Stdout, fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		mgr, err := newWalletManager(true)
		if err != nil {
			return err
		}
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if w.KeyRef != "" {
			if err := newSessionCache().Remove(w.KeyRef); err != nil {
				return err
			}
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet keys so mood commands can sign",
	Long: `Read private keys from the keychain once and cache them in a 0600 session
file. A keystore wallet counts as unlocked while its key is cached.

  w3mood wallet unlock          # pick from a list
  w3mood wallet unlock alice
  w3mood wallet unlock --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(true)
		if err != nil {
			return err
		}

		var names []string
		switch {
		case len(args) == 1:
			names = args
		case walletUnlockAll:
			wallets, err := mgr.List()
			if err != nil {
				return err
			}
			for _, w := range wallets {
				if w.CanSign() {
					names = append(names, w.Name)
				}
			}
		default:
			name, err := pickWallet(mgr, "Unlock wallet", (*wallet.Wallet).CanSign)
			if err != nil || name == "" {
				return err
			}
			names = []string{name}
		}
		if len(names) == 0 {
			fmt.Println(ui.Info("No signing wallets found."))
			return nil
		}

		session := newSessionCache()
		var failed int
		for _, name := range names {
			if _, err := mgr.Unlock(name, session); err != nil {
				log.Warn().Err(err).Str("wallet", name).Msg("unlock failed")
				fmt.Println(ui.Err(fmt.Sprintf("%-16s %v", name, err)))
				failed++
				continue
			}
			log.Info().Str("wallet", name).Msg("wallet unlocked")
			fmt.Println(ui.Success(fmt.Sprintf("%-16s unlocked", name)))
		}
		if failed > 0 {
			return errReported
		}
		fmt.Println(ui.Hint("Lock again with: w3mood wallet lock"))
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock [name]",
	Short: "Drop cached keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := newSessionCache()
		if len(args) == 0 || walletLockAll {
			if !session.Active() {
				fmt.Println(ui.Meta("No unlocked wallets."))
				return nil
			}
			if err := session.Clear(); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			fmt.Println(ui.Success("All wallets locked."))
			return nil
		}

		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		w, err := mgr.Get(args[0])
		if err != nil {
			return err
		}
		if !w.CanSign() {
			return fmt.Errorf("%w: %s", wallet.ErrWatchOnly, w.Name)
		}
		if err := session.Remove(w.KeyRef); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q locked.", w.Name)))
		return nil
	},
}

func walletState(w *wallet.Wallet, session *wallet.SessionCache) string {
	switch {
	case !w.CanSign():
		return "-"
	case session.Unlocked(w):
		return "unlocked"
	default:
		return "locked"
	}
}

// pickWallet shows the wallets accepted by keep and returns the chosen name,
// or "" when cancelled.
func pickWallet(mgr *wallet.Manager, title string, keep func(*wallet.Wallet) bool) (string, error) {
	wallets, err := mgr.List()
	if err != nil {
		return "", err
	}
	def, _ := mgr.Resolve(cfg.DefaultWallet)
	session := newSessionCache()

	var items []ui.PickerItem
	for _, w := range wallets {
		if !keep(w) {
			continue
		}
		items = append(items, ui.PickerItem{
			Label:    w.Name,
			SubLabel: ui.TruncateAddr(w.Address) + "  " + walletState(w, session),
			Value:    w.Name,
			Current:  def != nil && def.Name == w.Name,
		})
	}
	name, err := ui.PickItem(title, items)
	if errors.Is(err, ui.ErrNothingToPick) {
		return "", fmt.Errorf("%w: add one with `w3mood wallet add <name>`", wallet.ErrWalletNotFound)
	}
	if err == nil && name == "" {
		fmt.Println(ui.Meta("Cancelled."))
	}
	return name, err
}

func printNextSteps(name string) {
	fmt.Println(ui.Hint("Make it the default: w3mood wallet use " + name))
	fmt.Println(ui.Hint("Unlock it to sign:   w3mood wallet unlock " + name))
}

// readSecret reads one line without echo from a terminal, or plainly from a
// pipe.
func readSecret(in *os.File, prompt string) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading key: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%w: empty input", wallet.ErrInvalidKey)
	}
	return line, nil
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (visible in shell history; prefer the prompt)")
	walletAddCmd.Flags().StringVar(&walletWatchFlag, "watch", "", "add a watch-only address instead of a key")
	walletAddCmd.MarkFlagsMutuallyExclusive("key", "watch")
	walletRemoveCmd.Flags().BoolVarP(&walletYes, "yes", "y", false, "skip the confirmation")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock every signing wallet")
	walletLockCmd.Flags().BoolVar(&walletLockAll, "all", false, "lock every wallet (default without a name)")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletUseCmd,
		walletRemoveCmd, walletUnlockCmd, walletLockCmd)
}
