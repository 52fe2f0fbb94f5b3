package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/logger"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3mood/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	log     = logger.Nop()
	verbose bool
	timeout time.Duration

	closeLog = func() error { return nil }
)

// errReported marks a failure whose message was already shown to the user.
var errReported = errors.New("reported")

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3mood",
	Short: "Read and set your mood on Sepolia",
	Long: `w3mood connects a wallet to the mood contract on Sepolia and lets you
read the stored mood or set a new one.

The wallet is either a local keystore wallet (default) or an external wallet
exposing JSON-RPC (provider = rpc, wallet_rpc = <url>).

  w3mood wallet add alice        # import a private key
  w3mood wallet unlock alice     # cache it for this session
  w3mood mood set "feeling great"
  w3mood mood get
  w3mood app                     # interactive page`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		l, closeFn, err := logger.Open(logger.Options{
			File:    cfg.LogPath(),
			Console: verbose,
			Level:   logLevel(),
		})
		if err != nil {
			return err
		}
		log, closeLog = l, closeFn
		log.Debug().Str("command", cmd.CommandPath()).Str("config", cfg.Dir()).Msg("starting")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownLog()
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	shutdownLog() //nolint:errcheck
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		}
		os.Exit(1)
	}
}

// shutdownLog closes the log file once; later calls do nothing.
func shutdownLog() error {
	closeFn := closeLog
	closeLog = func() error { return nil }
	return closeFn()
}

func logLevel() string {
	if verbose {
		return "debug"
	}
	return cfg.LogLevel
}

// commandContext bounds a one-shot command by --timeout; zero waits forever.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $W3MOOD_CONFIG_DIR or ~/.w3mood)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 = wait for the wallet indefinitely)")

	rootCmd.AddCommand(
		connectCmd,
		moodCmd,
		appCmd,
		infoCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
	)
}
